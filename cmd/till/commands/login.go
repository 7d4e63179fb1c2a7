// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tillworks/till/cmd/till/cli"
	"github.com/tillworks/till/pos"
)

// loginParams holds the parameters for the login command.
type loginParams struct {
	Server       string `flag:"server" desc:"till server URL (default: config server_url)"`
	PasswordFile string `flag:"password-file" desc:"path to a file containing the password; omit to prompt interactively"`
}

func loginCommand() *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate and save the session",
		Description: `Log in to a till server and save the session locally.

After login, other commands use the saved session transparently.
The session token is stored at ~/.config/till/session.json (or
$TILL_SESSION_FILE if set) with mode 0600. The server URL and account
identity are saved next to it, so subsequent commands know which
server the session belongs to.

The password can be provided via --password-file or prompted
interactively with echo disabled.`,
		Usage: "till login <email> [flags]",
		Examples: []cli.Example{
			{
				Description: "Log in interactively (prompts for password)",
				Command:     "till login owner@shop.example",
			},
			{
				Description: "Log in against an explicit server",
				Command:     "till login owner@shop.example --server http://192.168.1.20:5000",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("login", &params)
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("email is required\n\nUsage: till login <email> [flags]")
			}
			email := args[0]
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument: %s", args[1])
			}

			password, err := readPassword(params.PasswordFile)
			if err != nil {
				return err
			}

			config, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			serverURL := params.Server
			if serverURL == "" {
				serverURL = config.ServerURL
			}

			store, err := pos.NewFileStore(cli.SessionFilePath())
			if err != nil {
				return err
			}
			client, err := pos.NewClient(pos.Config{
				BaseURL:     serverURL,
				Credentials: store,
				Logger:      cli.NewCommandLogger(),
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := client.Login(ctx, email, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			// Verify the session and capture the account identity
			// before saving the profile.
			user, err := client.Me(ctx)
			if err != nil {
				return fmt.Errorf("session verification failed: %w", err)
			}

			profile := &cli.Profile{
				ServerURL: serverURL,
				Email:     user.Email,
				UserID:    user.ID,
				Name:      user.Name,
			}
			if err := cli.SaveProfile(profile); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Logged in as %s (%s)\n", user.Name, user.Email)
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", cli.SessionFilePath())
			return nil
		},
	}
}

// readPassword reads the login password. With a file path, reads the
// file and strips trailing newlines (common with echo pipelines).
// Otherwise prompts on the terminal with echo disabled.
func readPassword(passwordFile string) (string, error) {
	if passwordFile != "" && passwordFile != "-" {
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", passwordFile, err)
		}
		for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
			data = data[:len(data)-1]
		}
		if len(data) == 0 {
			return "", fmt.Errorf("file %s is empty", passwordFile)
		}
		return string(data), nil
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", fmt.Errorf("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passwordBytes), nil
}
