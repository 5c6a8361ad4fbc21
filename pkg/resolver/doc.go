// SPDX-License-Identifier: MPL-2.0

// Package resolver computes the native dependency set of a container from
// the dependencies its MiniApps declare.
//
// ResolveAcrossModules groups declarations by dependency identity and
// reports identities declared with more than one version as conflicts.
// RetainHighestVersions merges a resolved set into the set already
// recorded for a version, never lowering a version or dropping an
// identity. Whether conflicts are fatal is the caller's decision; see
// Resolution.Enforce.
package resolver
