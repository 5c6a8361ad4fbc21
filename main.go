// SPDX-License-Identifier: MPL-2.0

// Cauldron is a git-backed, schema-versioned store of native application
// releases, with a native dependency resolver for MiniApps.
package main

import cmd "github.com/ernfleet/cauldron/cmd/cauldron"

func main() {
	cmd.Execute()
}
