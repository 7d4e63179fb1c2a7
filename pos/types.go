// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import "time"

// User is the authenticated account as reported by GET /me.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Customer is a customer record. Udhar is the customer's outstanding
// credit balance.
type Customer struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Contact string  `json:"contact"`
	Address string  `json:"address"`
	Udhar   float64 `json:"udhar"`
}

// NewCustomer is the payload for creating or editing a customer.
type NewCustomer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

// Product is a sellable product. Price and Discount are per unit.
type Product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	StockQty int     `json:"stockQty"`
}

// CartLine is one line of an order's cart. Product is the snapshot
// captured when the line was added: its price is the price the sale
// was made at, not the product's current price.
type CartLine struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// Order is an order as held by the server. Bill is empty until the
// order is finalized; afterwards it carries the bill reference.
// CreatedBy is the ID of the user who opened the order.
type Order struct {
	ID         string     `json:"_id"`
	CreatedBy  string     `json:"createdBy"`
	CustomerID string     `json:"customerId"`
	Cart       []CartLine `json:"cart"`
	Bill       string     `json:"bill"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Completed reports whether the order has been finalized into a bill.
func (o *Order) Completed() bool {
	return o.Bill != ""
}

// PlaceOrderRequest is the payload for finalizing an order.
type PlaceOrderRequest struct {
	BillPayment     float64 `json:"billPayment"`
	CustomerID      string  `json:"customerId"`
	InstructionNote string  `json:"instructionNote"`
}

// Transaction is a cash-book entry (expense or income).
type Transaction struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTransaction is the payload for creating a transaction.
type NewTransaction struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}
