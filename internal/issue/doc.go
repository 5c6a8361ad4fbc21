// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors with remediation hints, and a
// catalog of markdown guidance rendered with glamour for the failures
// cauldron users run into most.
package issue
