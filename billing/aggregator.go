// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

// Package billing joins orders with their customers into billing
// records for display and reporting. One Refresh issues a single
// order-collection fetch, filters by owner and completion state, then
// fans out customer lookups under a concurrency cap. Lookup failures
// are isolated per order: the affected order is dropped from the
// result, siblings are unaffected, and the caller only ever sees
// fully-joined records.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tillworks/till/pos"
)

// defaultConcurrency caps the customer-lookup fan-out. The backend is
// small; unbounded parallel lookups could be throttled.
const defaultConcurrency = 8

// Config holds configuration for creating an Aggregator.
type Config struct {
	// Client issues the order and customer fetches. Required.
	Client *pos.Client

	// Concurrency caps in-flight customer lookups during a Refresh.
	// Defaults to 8.
	Concurrency int

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Aggregator builds billing record sets from the remote order and
// customer collections.
type Aggregator struct {
	client      *pos.Client
	concurrency int
	logger      *slog.Logger
}

// New creates an Aggregator from the given configuration.
func New(config Config) (*Aggregator, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("billing: Client is required")
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		client:      config.Client,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// Refresh fetches the order collection once, keeps the orders created
// by ownerID whose completion state matches wantCompleted (true keeps
// billed orders, false keeps open ones), and joins each with its
// customer record. Orders whose customer lookup fails are omitted from
// the result; N orders with M failed lookups yield exactly N-M
// records and no error.
//
// Cancelling ctx abandons the fan-out and returns ctx.Err().
func (a *Aggregator) Refresh(ctx context.Context, ownerID string, wantCompleted bool) (RecordSet, error) {
	orders, err := a.client.Orders(ctx)
	if err != nil {
		return nil, err
	}

	var selected []pos.Order
	for _, order := range orders {
		if order.CreatedBy != ownerID {
			continue
		}
		if order.Completed() != wantCompleted {
			continue
		}
		selected = append(selected, order)
	}

	// Fan out customer lookups, capped by the semaphore. results is
	// index-aligned with selected so record order is stable regardless
	// of lookup completion order.
	results := make([]*Record, len(selected))
	semaphore := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup
	for i, order := range selected {
		wg.Add(1)
		go func(i int, order pos.Order) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			customer, err := a.client.Customer(ctx, order.CustomerID)
			if err != nil {
				a.logger.Debug("customer lookup failed, dropping order from billing view",
					"order", order.ID,
					"customer", order.CustomerID,
					"error", err,
				)
				return
			}
			results[i] = joinRecord(order, customer)
		}(i, order)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make(RecordSet, 0, len(selected))
	for _, record := range results {
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}

// joinRecord builds the client-side join of one order with its
// customer. The order value uses the price snapshot captured on each
// cart line, never a live product lookup.
func joinRecord(order pos.Order, customer *pos.Customer) *Record {
	return &Record{
		OrderID:     order.ID,
		BillRef:     order.Bill,
		BillDate:    order.UpdatedAt,
		CustomerID:  order.CustomerID,
		Name:        customer.Name,
		Contact:     customer.Contact,
		Address:     customer.Address,
		Outstanding: customer.Udhar,
		OrderValue:  orderValue(order.Cart),
		Cart:        order.Cart,
	}
}

func orderValue(lines []pos.CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Product.Price * float64(line.Qty)
	}
	return total
}
