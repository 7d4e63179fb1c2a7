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
)

type productsListParams struct {
	cli.OutputConfig
	Search string `flag:"search,s" desc:"filter by product name"`
}

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:        "products",
		Summary:     "Browse the product catalogue",
		Subcommands: []*cli.Command{productsListCommand()},
	}
}

func productsListCommand() *cli.Command {
	var params productsListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List sellable products",
		Usage:   "till products list [flags]",
		Examples: []cli.Example{
			{
				Description: "Search by name",
				Command:     "till products list --search rice",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("products list", &params)
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

			products, err := client.Products(ctx)
			if err != nil {
				return err
			}

			if params.Search != "" {
				needle := strings.ToLower(params.Search)
				filtered := products[:0]
				for _, product := range products {
					if strings.Contains(strings.ToLower(product.Name), needle) {
						filtered = append(filtered, product)
					}
				}
				products = filtered
			}

			if done, err := params.Emit(products); done {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tDISCOUNT\tSTOCK")
			for _, product := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%d\n",
					product.ID, product.Name, product.Category,
					product.Price, product.Discount, product.StockQty)
			}
			return tw.Flush()
		},
	}
}
