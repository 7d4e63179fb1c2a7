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

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/tillworks/till/billing"
	"github.com/tillworks/till/cmd/till/cli"
	"github.com/tillworks/till/pos"
)

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:    "orders",
		Summary: "Review orders and bills",
		Subcommands: []*cli.Command{
			ordersListCommand(),
			ordersShowCommand(),
			ordersDeleteCommand(),
		},
	}
}

type ordersListParams struct {
	cli.OutputConfig
	Completed bool   `flag:"completed" desc:"show billed orders instead of open ones"`
	Search    string `flag:"search,s" desc:"filter by customer name"`
	Date      string `flag:"date" desc:"filter by bill date (YYYY-MM-DD)"`
	Sort      string `flag:"sort" default:"desc" desc:"sort by bill date: asc or desc"`
	Page      int    `flag:"page" default:"1" desc:"page number"`
	PageSize  int    `flag:"page-size" desc:"records per page (default: config page_size)"`
}

func ordersListCommand() *cli.Command {
	var params ordersListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List your orders with customer details",
		Description: `List your orders, joined with the customer each order belongs to.

Only orders created by the logged-in account are shown. By default
open (unbilled) orders are listed; --completed switches to billed
ones. Orders whose customer record cannot be fetched are omitted.`,
		Usage: "till orders list [flags]",
		Examples: []cli.Example{
			{
				Description: "Open orders, newest first",
				Command:     "till orders list",
			},
			{
				Description: "Billed orders for one customer name",
				Command:     "till orders list --completed --search asha",
			},
			{
				Description: "Bills from a specific day",
				Command:     "till orders list --completed --date 2026-08-14",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("orders list", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			direction := billing.Desc
			switch params.Sort {
			case "asc":
				direction = billing.Asc
			case "desc", "":
			default:
				return fmt.Errorf("unknown sort order %q (want asc or desc)", params.Sort)
			}

			profile, err := cli.LoadProfile()
			if err != nil {
				return err
			}
			client, config, err := cli.Connect()
			if err != nil {
				return err
			}

			aggregator, err := billing.New(billing.Config{
				Client:      client,
				Concurrency: config.LookupConcurrency,
				Logger:      cli.NewCommandLogger(),
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			records, err := aggregator.Refresh(ctx, profile.UserID, params.Completed)
			if err != nil {
				return err
			}

			if params.Search != "" {
				records = records.Filter(params.Search)
			}
			if params.Date != "" {
				records = records.FilterByDate(params.Date)
			}
			records = records.Sort(direction)

			pageSize := params.PageSize
			if pageSize < 1 {
				pageSize = config.PageSize
			}
			page, totalPages := records.Paginate(pageSize, params.Page)

			if done, err := params.Emit(page); done {
				return err
			}

			if len(page) == 0 {
				fmt.Println("No orders.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tDATE\tCUSTOMER\tCONTACT\tVALUE\tOUTSTANDING")
			for _, record := range page {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
					record.OrderID,
					record.BillDate.Local().Format("2006-01-02 15:04"),
					record.Name, record.Contact,
					record.OrderValue, record.Outstanding)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nPage %d of %d\n", params.Page, totalPages)
			return nil
		},
	}
}

type ordersShowParams struct {
	cli.OutputConfig
}

func ordersShowCommand() *cli.Command {
	var params ordersShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show one order as a bill card",
		Usage:   "till orders show <order-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("orders show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("order ID is required\n\nUsage: till orders show <order-id>")
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			order, err := client.Order(ctx, args[0])
			if err != nil {
				return err
			}

			var customer *pos.Customer
			if order.CustomerID != "" {
				// The card renders without the customer if the
				// lookup fails, same as the list view's fail-soft
				// join.
				customer, _ = client.Customer(ctx, order.CustomerID)
			}

			if done, err := params.Emit(order); done {
				return err
			}

			fmt.Println(renderBillCard(order, customer))
			return nil
		},
	}
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	cardFaintStyle = lipgloss.NewStyle().Faint(true)
)

// renderBillCard renders an order as a boxed bill. customer may be nil.
func renderBillCard(order *pos.Order, customer *pos.Customer) string {
	var body strings.Builder

	title := "Open order " + order.ID
	if order.Completed() {
		title = "Bill " + order.Bill
	}
	body.WriteString(cardTitleStyle.Render(title))
	body.WriteString("\n")
	body.WriteString(cardFaintStyle.Render(order.UpdatedAt.Local().Format("2006-01-02 15:04")))
	body.WriteString("\n\n")

	if customer != nil {
		body.WriteString(fmt.Sprintf("%s\n", customer.Name))
		if customer.Contact != "" {
			body.WriteString(fmt.Sprintf("%s\n", customer.Contact))
		}
		if customer.Address != "" {
			body.WriteString(fmt.Sprintf("%s\n", customer.Address))
		}
		body.WriteString("\n")
	}

	var total float64
	for _, line := range order.Cart {
		lineValue := line.Product.Price * float64(line.Qty)
		total += lineValue
		body.WriteString(fmt.Sprintf("%3d x %-24s %10.2f\n", line.Qty, line.Product.Name, lineValue))
	}
	body.WriteString(fmt.Sprintf("%-30s %10.2f", "Total", total))

	if customer != nil && customer.Udhar != 0 {
		body.WriteString(fmt.Sprintf("\n%-30s %10.2f", "Outstanding", customer.Udhar))
	}

	return cardStyle.Render(body.String())
}

func ordersDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete an order",
		Usage:   "till orders delete <order-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("order ID is required\n\nUsage: till orders delete <order-id>")
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := client.DeleteOrder(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Deleted order %s\n", args[0])
			return nil
		},
	}
}
