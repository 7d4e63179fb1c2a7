// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Orders returns the full order collection. Ownership and completion
// filtering happen client-side (see the billing package).
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var response struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-orders", nil, &response); err != nil {
		return nil, err
	}
	return response.Orders, nil
}

// Order returns a single order by ID.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, Validationf("order ID is required")
	}
	var response struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-order/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Order, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	if id == "" {
		return Validationf("order ID is required")
	}
	return c.do(ctx, http.MethodDelete, "/delete-order/"+url.PathEscape(id), nil, nil)
}

// FillCart upserts one line item on the customer's draft order,
// creating the order server-side if none is open. The returned order
// carries the server-assigned identity that later cart operations
// target.
func (c *Client) FillCart(ctx context.Context, customerID, productID string, qty int) (*Order, error) {
	if customerID == "" {
		return nil, Validationf("customer ID is required")
	}
	if productID == "" {
		return nil, Validationf("product ID is required")
	}
	if qty <= 0 {
		return nil, Validationf("quantity must be a positive integer (got %d)", qty)
	}

	request := struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	}{ProductID: productID, Qty: qty}

	var response struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/fill-cart/"+url.PathEscape(customerID), request, &response); err != nil {
		return nil, err
	}
	return &response.Order, nil
}

// RemoveCartLine deletes the cart line at the given position on the
// order. The wire protocol addresses lines by index; prefer the cart
// package's Session.RemoveItem, which resolves a stable product ID to
// the current index.
func (c *Client) RemoveCartLine(ctx context.Context, orderID string, index int) (*Order, error) {
	if orderID == "" {
		return nil, Validationf("order ID is required")
	}
	if index < 0 {
		return nil, Validationf("cart line index must be non-negative (got %d)", index)
	}

	var response struct {
		Order Order `json:"order"`
	}
	path := "/delete-cart/" + url.PathEscape(orderID) + "/" + strconv.Itoa(index)
	if err := c.do(ctx, http.MethodDelete, path, nil, &response); err != nil {
		return nil, err
	}
	return &response.Order, nil
}

// PlaceOrder finalizes an order: submits the payment and instruction
// note and turns the draft into a billed order.
func (c *Client) PlaceOrder(ctx context.Context, orderID string, request PlaceOrderRequest) error {
	if orderID == "" {
		return Validationf("order ID is required")
	}
	if request.BillPayment < 0 {
		return Validationf("bill payment must not be negative (got %v)", request.BillPayment)
	}
	return c.do(ctx, http.MethodPost, "/add-order/"+url.PathEscape(orderID), request, nil)
}
