// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/tillworks/till/cmd/till/cli"
	"github.com/tillworks/till/pos"
)

func expenseCommand() *cli.Command {
	return &cli.Command{
		Name:    "expense",
		Summary: "Track the day's cash book",
		Subcommands: []*cli.Command{
			expenseListCommand(),
			expenseAddCommand(),
			expenseDeleteCommand(),
		},
	}
}

type expenseListParams struct {
	cli.OutputConfig
}

func expenseListCommand() *cli.Command {
	var params expenseListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List today's transactions",
		Usage:   "till expense list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("expense list", &params)
		},
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

			transactions, err := client.TodayTransactions(ctx)
			if err != nil {
				return err
			}

			if done, err := params.Emit(transactions); done {
				return err
			}

			var total float64
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tTYPE\tDESCRIPTION\tAMOUNT")
			for _, transaction := range transactions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n",
					transaction.ID,
					transaction.CreatedAt.Local().Format("15:04"),
					transaction.Type, transaction.Description, transaction.Amount)
				total += transaction.Amount
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nTotal: %.2f\n", total)
			return nil
		},
	}
}

type expenseAddParams struct {
	Type string `flag:"type" default:"expense" desc:"transaction type (expense or income)"`
}

func expenseAddCommand() *cli.Command {
	var params expenseAddParams

	return &cli.Command{
		Name:    "add",
		Summary: "Record a transaction",
		Usage:   "till expense add <amount> <description...> [flags]",
		Examples: []cli.Example{
			{
				Command: "till expense add 40 ice for the drinks fridge",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("expense add", &params)
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("amount and description are required\n\nUsage: till expense add <amount> <description...>")
			}

			var amount float64
			if _, err := fmt.Sscanf(args[0], "%f", &amount); err != nil {
				return fmt.Errorf("bad amount %q", args[0])
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			err = client.CreateTransaction(ctx, pos.NewTransaction{
				Type:        params.Type,
				Description: strings.Join(args[1:], " "),
				Amount:      amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Recorded %s of %.2f\n", params.Type, amount)
			return nil
		},
	}
}

func expenseDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a transaction",
		Usage:   "till expense delete <transaction-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("transaction ID is required\n\nUsage: till expense delete <transaction-id>")
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := client.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Deleted transaction %s\n", args[0])
			return nil
		},
	}
}
