// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates JSON and CUE data against embedded CUE schemas.
//
// Two entry points share the same compile-and-unify flow:
//
//   - Validate checks data against a schema definition and returns the
//     unified value. The Cauldron document codec uses it, then decodes the
//     JSON itself because the document carries interface-typed fields.
//   - ParseAndDecode additionally decodes the unified value into a Go struct.
//     The configuration loader uses it.
//
// Errors carry the offending path in JSON-path notation, for example
// "nativeApps[0].platforms[1].name: conflicting values".
package cueutil
