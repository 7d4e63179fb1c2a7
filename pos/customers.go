// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"net/http"
	"net/url"
)

// Customers returns all customer records.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var response struct {
		Customers []Customer `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-customers", nil, &response); err != nil {
		return nil, err
	}
	return response.Customers, nil
}

// Customer returns a single customer record by ID.
func (c *Client) Customer(ctx context.Context, id string) (*Customer, error) {
	if id == "" {
		return nil, Validationf("customer ID is required")
	}
	var response struct {
		Customer Customer `json:"customer"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-customer/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Customer, nil
}

// AddCustomer creates a customer record.
func (c *Client) AddCustomer(ctx context.Context, customer NewCustomer) error {
	if customer.Name == "" || customer.Contact == "" || customer.Address == "" {
		return Validationf("customer name, contact, and address are all required")
	}
	return c.do(ctx, http.MethodPost, "/add-customer", customer, nil)
}

// EditCustomer replaces the named customer's details.
func (c *Client) EditCustomer(ctx context.Context, id string, customer NewCustomer) error {
	if id == "" {
		return Validationf("customer ID is required")
	}
	if customer.Name == "" || customer.Contact == "" || customer.Address == "" {
		return Validationf("customer name, contact, and address are all required")
	}
	return c.do(ctx, http.MethodPut, "/edit-customer/"+url.PathEscape(id), customer, nil)
}

// DeleteCustomer removes a customer record.
func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	if id == "" {
		return Validationf("customer ID is required")
	}
	return c.do(ctx, http.MethodDelete, "/delete-customer/"+url.PathEscape(id), nil, nil)
}
