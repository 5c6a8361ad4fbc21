// SPDX-License-Identifier: MPL-2.0

// Package release orchestrates changes to a Cauldron: it resolves the native
// dependencies of the MiniApps targeted by a release and commits the result
// through a store transaction.
package release
