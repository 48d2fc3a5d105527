// SPDX-License-Identifier: Apache-2.0

// Command appointment-mcp serves the appointment tools over MCP and offers
// the same pipeline on the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
