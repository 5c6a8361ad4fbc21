// SPDX-License-Identifier: MPL-2.0

// Package cauldron models the Cauldron document: the release state of every
// native application, platform and version, together with its container
// (MiniApps, native dependencies, JS API implementations) and metadata.
//
// The document is persisted as cauldron.json at the root of a git working
// copy; yarn lock blobs live beside it under yarnlocks/. Older documents are
// upgraded in place by an ordered chain of migrations before they are
// validated against the embedded CUE schema and decoded.
//
// Every mutator enforces the document invariants: identities are unique
// within a version, and the container of a released version is frozen.
package cauldron
