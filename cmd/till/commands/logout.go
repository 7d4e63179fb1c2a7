// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tillworks/till/cmd/till/cli"
)

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Summary: "End the session and discard the saved token",
		Description: `Log out from the till server and remove the saved session.

The server is notified on a best-effort basis; the local token and
profile are removed even when the server is unreachable.`,
		Usage: "till logout",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := client.Logout(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: server logout failed: %v\n", err)
			}
			if err := cli.RemoveProfile(); err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, "Logged out")
			return nil
		},
	}
}
