// SPDX-License-Identifier: MPL-2.0

// Package testutil holds fixtures shared by cauldron tests: an isolated
// home directory, files written with their parents, and throwaway bare git
// remotes.
package testutil
