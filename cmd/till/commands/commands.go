// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete till CLI command tree.
package commands

import (
	"fmt"

	"github.com/tillworks/till/cmd/till/cli"
	"github.com/tillworks/till/lib/version"
)

// Root builds and returns the complete till CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "till",
		Description: `till: point-of-sale operator tool.

Authenticate against a till server, record sales, and review orders,
bills, and expenses from the terminal.`,
		Subcommands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			customersCommand(),
			productsCommand(),
			sellCommand(),
			ordersCommand(),
			expenseCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("till %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
