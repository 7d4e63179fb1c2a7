// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

// Command till is the point-of-sale operator tool.
package main

import (
	"fmt"
	"os"

	"github.com/tillworks/till/cmd/till/commands"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
