// SPDX-License-Identifier: MPL-2.0

// Package identity parses and normalizes the identity strings used across the
// cauldron: native dependencies, native application descriptors and MiniApp
// package paths.
//
// # Grammar
//
//   - Dependency: [@scope/]name[@version]
//   - Descriptor: name[:platform[:version]]
//   - Package path: a Dependency (npm origin) or a git URL with an optional
//     "#ref" suffix (git origin)
//
// All forms are case-sensitive and round-trip through their Parse function and
// String method. Every value in this package is immutable after construction.
package identity
