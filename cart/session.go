// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

// Package cart holds the per-sale session state machine. A Session
// accumulates line items for one customer, synchronizing every
// mutation with the server and capturing the server-assigned order
// identity on the first successful add. Item operations are
// serialized per session: the second add's target identity depends on
// the first add's acknowledgment, so unserialized adds could open two
// diverging orders.
package cart

import (
	"context"
	"sync"

	"github.com/tillworks/till/pos"
)

// State is the lifecycle position of a Session.
type State int

const (
	// Empty: no item has been accepted by the server yet; no order
	// identity is assigned.
	Empty State = iota

	// Building: at least one item is saved server-side and the order
	// identity is fixed for the rest of the session.
	Building

	// Committed: the order has been finalized into a bill. The
	// session accepts no further item operations until Reset.
	Committed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Building:
		return "building"
	case Committed:
		return "committed"
	}
	return "unknown"
}

// Session is one in-progress sale for a single customer.
//
// All mutating operations are serialized by an internal mutex held
// across the server round trip. Local state changes only after the
// server acknowledges: a failed call leaves the session exactly as it
// was, and the session stays usable for further attempts.
type Session struct {
	client     *pos.Client
	customerID string

	mu      sync.Mutex
	state   State
	orderID string
	items   map[string]int
	// lines is the server's latest cart snapshot, used to resolve a
	// stable product ID to the positional index the delete-line wire
	// call requires.
	lines []pos.CartLine
}

// NewSession opens a selling session for the given customer.
func NewSession(client *pos.Client, customerID string) *Session {
	return &Session{
		client:     client,
		customerID: customerID,
		items:      make(map[string]int),
	}
}

// AddItem upserts a line item: the quantity replaces any previous
// quantity for the product (adding p1×2 then p1×5 leaves 5, not 7).
// The first successful add captures the server-assigned order
// identity; it never changes afterwards within the session.
func (s *Session) AddItem(ctx context.Context, productID string, qty int) error {
	if productID == "" {
		return pos.Validationf("product ID is required")
	}
	if qty <= 0 {
		return pos.Validationf("quantity must be a positive integer (got %d)", qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Committed {
		return pos.Validationf("session is committed; Reset before selling again")
	}

	order, err := s.client.FillCart(ctx, s.customerID, productID, qty)
	if err != nil {
		return err
	}

	if s.orderID == "" {
		s.orderID = order.ID
	}
	s.state = Building
	s.items[productID] = qty
	s.lines = order.Cart
	return nil
}

// RemoveItem deletes the line for the given product. The wire protocol
// addresses cart lines by positional index, which is fragile under
// concurrent edits; the session addresses lines by product ID and
// resolves the current index from the latest server snapshot at call
// time.
func (s *Session) RemoveItem(ctx context.Context, productID string) error {
	if productID == "" {
		return pos.Validationf("product ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Building {
		return pos.Validationf("no open order to remove items from")
	}
	index := -1
	for i, line := range s.lines {
		if line.Product.ID == productID {
			index = i
			break
		}
	}
	if index < 0 {
		return pos.Validationf("product %s is not in the cart", productID)
	}

	order, err := s.client.RemoveCartLine(ctx, s.orderID, index)
	if err != nil {
		return err
	}

	delete(s.items, productID)
	s.lines = order.Cart
	return nil
}

// Finalize submits the payment and instruction note, turning the draft
// into a billed order, and moves the session to Committed.
//
// Finalize is not internally guarded against re-invocation: calling it
// again after a Reset-less success is a new settlement attempt, and
// avoiding that is the caller's responsibility.
func (s *Session) Finalize(ctx context.Context, payment float64, note string) error {
	if payment < 0 {
		return pos.Validationf("payment must not be negative (got %v)", payment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Building || s.orderID == "" || len(s.items) == 0 {
		return pos.Validationf("finalize requires at least one saved item")
	}

	err := s.client.PlaceOrder(ctx, s.orderID, pos.PlaceOrderRequest{
		BillPayment:     payment,
		CustomerID:      s.customerID,
		InstructionNote: note,
	})
	if err != nil {
		return err
	}

	s.state = Committed
	return nil
}

// Reset returns the session to Empty from any state, discarding the
// local identity and items. Nothing already committed server-side is
// cancelled.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Empty
	s.orderID = ""
	s.items = make(map[string]int)
	s.lines = nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OrderID returns the server-assigned order identity, or "" before the
// first successful add.
func (s *Session) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// CustomerID returns the customer this session sells to.
func (s *Session) CustomerID() string {
	return s.customerID
}

// Items returns a copy of the session's product-to-quantity view.
func (s *Session) Items() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make(map[string]int, len(s.items))
	for id, qty := range s.items {
		items[id] = qty
	}
	return items
}

// Totals computes the running bill and discount for the session's
// items against a product catalog, mirroring what the sale screen
// shows before checkout. Products missing from the catalog contribute
// nothing.
func (s *Session) Totals(products []pos.Product) (bill, discount float64) {
	byID := make(map[string]pos.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, qty := range s.items {
		product, ok := byID[id]
		if !ok {
			continue
		}
		bill += product.Price * float64(qty)
		discount += product.Discount * float64(qty)
	}
	return bill, discount
}
