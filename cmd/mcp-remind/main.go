// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"fmt"
	"os"
)

// buildVersion is set at build time via -ldflags "-X main.buildVersion=<version>"
var buildVersion = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
