// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tillworks/till/cart"
	"github.com/tillworks/till/cmd/till/cli"
	"github.com/tillworks/till/pos"
)

func sellCommand() *cli.Command {
	return &cli.Command{
		Name:    "sell",
		Summary: "Record a sale interactively",
		Description: `Open an interactive sale for a customer.

The sale is a session against the server: the first "add" opens an
order, further adds and removes update it, and "checkout" finalizes
it into a bill. Quitting before checkout leaves the open order on the
server; it appears under "till orders list" and can be deleted there.

Session commands:

  add <product-id> <qty>       add (or top up) a product
  remove <product-id>          remove a product entirely
  show                         show the cart and running totals
  checkout <payment> [note]    finalize the sale into a bill
  quit                         leave without finalizing`,
		Usage: "till sell <customer-id>",
		Examples: []cli.Example{
			{
				Command: "till sell 64a1f0c2",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("customer ID is required\n\nUsage: till sell <customer-id>")
			}

			client, _, err := cli.Connect()
			if err != nil {
				return err
			}
			return runSale(client, args[0], os.Stdin)
		},
	}
}

// runSale drives one interactive sale session. The reader is injected
// so tests can script the session.
func runSale(client *pos.Client, customerID string, input io.Reader) error {
	ctx := context.Background()

	lookupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	products, err := client.Products(lookupCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("loading products: %w", err)
	}
	productNames := make(map[string]string, len(products))
	for _, product := range products {
		productNames[product.ID] = product.Name
	}

	session := cart.NewSession(client, customerID)

	fmt.Printf("Sale for customer %s. Type 'add <product-id> <qty>', 'show', 'checkout <payment>', or 'quit'.\n", customerID)

	scanner := bufio.NewScanner(input)
	for {
		fmt.Print("sell> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "add":
			if len(fields) != 3 {
				fmt.Println("usage: add <product-id> <qty>")
				continue
			}
			qty, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Printf("bad quantity %q\n", fields[2])
				continue
			}
			if err := session.AddItem(ctx, fields[1], qty); err != nil {
				fmt.Printf("add failed: %v\n", err)
				continue
			}
			printCart(session, products, productNames)

		case "remove":
			if len(fields) != 2 {
				fmt.Println("usage: remove <product-id>")
				continue
			}
			if err := session.RemoveItem(ctx, fields[1]); err != nil {
				fmt.Printf("remove failed: %v\n", err)
				continue
			}
			printCart(session, products, productNames)

		case "show":
			printCart(session, products, productNames)

		case "checkout":
			if len(fields) < 2 {
				fmt.Println("usage: checkout <payment> [note]")
				continue
			}
			payment, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				fmt.Printf("bad payment %q\n", fields[1])
				continue
			}
			note := strings.Join(fields[2:], " ")
			if err := session.Finalize(ctx, payment, note); err != nil {
				fmt.Printf("checkout failed: %v\n", err)
				continue
			}
			fmt.Printf("Sale complete. Order %s billed.\n", session.OrderID())
			return nil

		case "quit", "exit":
			if session.State() == cart.Building {
				fmt.Printf("Leaving open order %s on the server.\n", session.OrderID())
			}
			return nil

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
	return scanner.Err()
}

// printCart renders the session contents with running totals.
func printCart(session *cart.Session, products []pos.Product, productNames map[string]string) {
	items := session.Items()
	if len(items) == 0 {
		fmt.Println("(cart is empty)")
		return
	}
	for productID, qty := range items {
		name := productNames[productID]
		if name == "" {
			name = productID
		}
		fmt.Printf("  %3d x %s\n", qty, name)
	}
	bill, discount := session.Totals(products)
	fmt.Printf("  total %.2f (discount %.2f)\n", bill, discount)
}
