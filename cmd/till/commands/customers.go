// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/tillworks/till/cmd/till/cli"
	"github.com/tillworks/till/pos"
)

func customersCommand() *cli.Command {
	return &cli.Command{
		Name:    "customers",
		Summary: "Manage the customer book",
		Subcommands: []*cli.Command{
			customersListCommand(),
			customersAddCommand(),
			customersEditCommand(),
			customersDeleteCommand(),
		},
	}
}

type customersListParams struct {
	cli.OutputConfig
}

func customersListCommand() *cli.Command {
	var params customersListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List all customers",
		Usage:   "till customers list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("customers list", &params)
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

			customers, err := client.Customers(ctx)
			if err != nil {
				return err
			}

			if done, err := params.Emit(customers); done {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tADDRESS\tOUTSTANDING")
			for _, customer := range customers {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n",
					customer.ID, customer.Name, customer.Contact, customer.Address, customer.Udhar)
			}
			return tw.Flush()
		},
	}
}

type customerFormParams struct {
	Name    string `flag:"name" desc:"customer name"`
	Contact string `flag:"contact" desc:"phone or other contact"`
	Address string `flag:"address" desc:"street address"`
}

func customersAddCommand() *cli.Command {
	var params customerFormParams

	return &cli.Command{
		Name:    "add",
		Summary: "Add a customer",
		Usage:   "till customers add --name <name> [flags]",
		Examples: []cli.Example{
			{
				Command: `till customers add --name "Asha Patel" --contact 0401234567`,
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("customers add", &params)
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

			err = client.AddCustomer(ctx, pos.NewCustomer{
				Name:    params.Name,
				Contact: params.Contact,
				Address: params.Address,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Added customer %s\n", params.Name)
			return nil
		},
	}
}

func customersEditCommand() *cli.Command {
	var params customerFormParams

	return &cli.Command{
		Name:    "edit",
		Summary: "Edit a customer",
		Usage:   "till customers edit <customer-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("customers edit", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("customer ID is required\n\nUsage: till customers edit <customer-id> [flags]")
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			err = client.EditCustomer(ctx, args[0], pos.NewCustomer{
				Name:    params.Name,
				Contact: params.Contact,
				Address: params.Address,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Updated customer %s\n", args[0])
			return nil
		},
	}
}

func customersDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a customer",
		Usage:   "till customers delete <customer-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("customer ID is required\n\nUsage: till customers delete <customer-id>")
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := client.DeleteCustomer(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Deleted customer %s\n", args[0])
			return nil
		},
	}
}
