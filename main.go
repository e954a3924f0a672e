// SPDX-License-Identifier: MPL-2.0

// skillhub is a registry and installer for Markdown skill packages.
package main

import (
	cmd "github.com/skillhub/skillhub/cmd/skillhub"
)

func main() {
	cmd.Execute()
}
