// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/tillworks/till/cmd/till/cli"
)

// whoamiParams holds the parameters for the whoami command.
type whoamiParams struct {
	cli.OutputConfig
	Verify bool `flag:"verify" desc:"verify the session against the server"`
}

// whoamiOutput is the structured output for the whoami command.
type whoamiOutput struct {
	Email       string `json:"email" yaml:"email"`
	Name        string `json:"name" yaml:"name"`
	UserID      string `json:"user_id" yaml:"user_id"`
	Server      string `json:"server" yaml:"server"`
	SessionFile string `json:"session_file" yaml:"session_file"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

func whoamiCommand() *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the current operator identity",
		Description: `Display the currently logged-in operator identity.

Shows the account email, server URL, and session file path from the
saved profile (created by "till login").

With --verify, the saved token is checked against the server to
confirm the session is still valid. Without --verify, only local
files are read (no network access).`,
		Usage: "till whoami [flags]",
		Examples: []cli.Example{
			{
				Description: "Show current identity",
				Command:     "till whoami",
			},
			{
				Description: "Verify the session is still valid",
				Command:     "till whoami --verify",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("whoami", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			profile, err := cli.LoadProfile()
			if errors.Is(err, cli.ErrNoProfile) {
				fmt.Println("Not logged in (run 'till login')")
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}

			output := whoamiOutput{
				Email:       profile.Email,
				Name:        profile.Name,
				UserID:      profile.UserID,
				Server:      profile.ServerURL,
				SessionFile: cli.SessionFilePath(),
			}

			if params.Verify {
				client, _, err := cli.Connect()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if _, err := client.Me(ctx); err != nil {
					output.Status = fmt.Sprintf("invalid: %v", err)
				} else {
					output.Status = "valid"
				}
			}

			if done, err := params.Emit(output); done {
				return err
			}

			fmt.Printf("Email:    %s\n", output.Email)
			fmt.Printf("Name:     %s\n", output.Name)
			fmt.Printf("Server:   %s\n", output.Server)
			fmt.Printf("Session:  %s\n", output.SessionFile)
			if output.Status != "" {
				fmt.Printf("Status:   %s\n", output.Status)
			}
			return nil
		},
	}
}
