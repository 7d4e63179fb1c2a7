// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// TodayTransactions returns the current day's cash-book entries.
func (c *Client) TodayTransactions(ctx context.Context) ([]Transaction, error) {
	var response struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-today-transactions", nil, &response); err != nil {
		return nil, err
	}
	return response.Transactions, nil
}

// CreateTransaction records a cash-book entry. The description must be
// non-blank and the amount positive; both are rejected before any
// network call.
func (c *Client) CreateTransaction(ctx context.Context, transaction NewTransaction) error {
	if strings.TrimSpace(transaction.Description) == "" {
		return Validationf("transaction description is required")
	}
	if transaction.Amount <= 0 {
		return Validationf("transaction amount must be positive (got %v)", transaction.Amount)
	}
	if transaction.Type == "" {
		transaction.Type = "expense"
	}
	return c.do(ctx, http.MethodPost, "/create-transaction", transaction, nil)
}

// DeleteTransaction removes a cash-book entry.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return Validationf("transaction ID is required")
	}
	return c.do(ctx, http.MethodDelete, "/delete-transaction/"+url.PathEscape(id), nil, nil)
}
