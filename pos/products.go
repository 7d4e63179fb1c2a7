// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"net/http"
)

// Products returns the product catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var response struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-products", nil, &response); err != nil {
		return nil, err
	}
	return response.Products, nil
}
