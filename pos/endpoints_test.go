// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordingServer captures the method and path of each request and
// responds with the given body.
func recordingServer(t *testing.T, body any) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = append(seen, request.Method+" "+request.URL.Path)
		writeJSON(t, writer, body)
	}))
	return server, &seen
}

func TestEndpoints_MethodsAndPaths(t *testing.T) {
	tests := []struct {
		name string
		body any
		call func(*Client) error
		want string
	}{
		{
			name: "Customers",
			body: map[string]any{"customers": []Customer{}},
			call: func(c *Client) error { _, err := c.Customers(context.Background()); return err },
			want: "GET /get-customers",
		},
		{
			name: "Customer",
			body: map[string]any{"customer": Customer{}},
			call: func(c *Client) error { _, err := c.Customer(context.Background(), "c1"); return err },
			want: "GET /get-customer/c1",
		},
		{
			name: "AddCustomer",
			body: map[string]any{},
			call: func(c *Client) error {
				return c.AddCustomer(context.Background(), NewCustomer{Name: "A", Contact: "1", Address: "X"})
			},
			want: "POST /add-customer",
		},
		{
			name: "EditCustomer",
			body: map[string]any{},
			call: func(c *Client) error {
				return c.EditCustomer(context.Background(), "c1", NewCustomer{Name: "A", Contact: "1", Address: "X"})
			},
			want: "PUT /edit-customer/c1",
		},
		{
			name: "DeleteCustomer",
			body: map[string]any{},
			call: func(c *Client) error { return c.DeleteCustomer(context.Background(), "c1") },
			want: "DELETE /delete-customer/c1",
		},
		{
			name: "Orders",
			body: map[string]any{"orders": []Order{}},
			call: func(c *Client) error { _, err := c.Orders(context.Background()); return err },
			want: "GET /get-orders",
		},
		{
			name: "Order",
			body: map[string]any{"order": Order{}},
			call: func(c *Client) error { _, err := c.Order(context.Background(), "o1"); return err },
			want: "GET /get-order/o1",
		},
		{
			name: "DeleteOrder",
			body: map[string]any{},
			call: func(c *Client) error { return c.DeleteOrder(context.Background(), "o1") },
			want: "DELETE /delete-order/o1",
		},
		{
			name: "FillCart",
			body: map[string]any{"order": Order{ID: "o1"}},
			call: func(c *Client) error {
				_, err := c.FillCart(context.Background(), "c1", "p1", 2)
				return err
			},
			want: "POST /fill-cart/c1",
		},
		{
			name: "RemoveCartLine",
			body: map[string]any{"order": Order{ID: "o1"}},
			call: func(c *Client) error {
				_, err := c.RemoveCartLine(context.Background(), "o1", 0)
				return err
			},
			want: "DELETE /delete-cart/o1/0",
		},
		{
			name: "PlaceOrder",
			body: map[string]any{},
			call: func(c *Client) error {
				return c.PlaceOrder(context.Background(), "o1", PlaceOrderRequest{BillPayment: 100, CustomerID: "c1"})
			},
			want: "POST /add-order/o1",
		},
		{
			name: "TodayTransactions",
			body: map[string]any{"transactions": []Transaction{}},
			call: func(c *Client) error { _, err := c.TodayTransactions(context.Background()); return err },
			want: "GET /get-today-transactions",
		},
		{
			name: "CreateTransaction",
			body: map[string]any{},
			call: func(c *Client) error {
				return c.CreateTransaction(context.Background(), NewTransaction{Description: "chai", Amount: 20})
			},
			want: "POST /create-transaction",
		},
		{
			name: "DeleteTransaction",
			body: map[string]any{},
			call: func(c *Client) error { return c.DeleteTransaction(context.Background(), "t1") },
			want: "DELETE /delete-transaction/t1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server, seen := recordingServer(t, test.body)
			defer server.Close()

			client := newTestClient(t, server, "test-token")
			if err := test.call(client); err != nil {
				t.Fatalf("%s: %v", test.name, err)
			}
			if len(*seen) != 1 || (*seen)[0] != test.want {
				t.Errorf("requests = %v, want [%s]", *seen, test.want)
			}
		})
	}
}

func TestEndpoints_ValidationBeforeNetwork(t *testing.T) {
	// Any network traffic fails the test: validation must reject the
	// input before dispatch.
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
	}))
	defer server.Close()
	client := newTestClient(t, server, "test-token")
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"FillCartZeroQty", func() error { _, err := client.FillCart(ctx, "c1", "p1", 0); return err }},
		{"FillCartNegativeQty", func() error { _, err := client.FillCart(ctx, "c1", "p1", -3); return err }},
		{"FillCartNoCustomer", func() error { _, err := client.FillCart(ctx, "", "p1", 1); return err }},
		{"CustomerNoID", func() error { _, err := client.Customer(ctx, ""); return err }},
		{"AddCustomerMissingFields", func() error { return client.AddCustomer(ctx, NewCustomer{Name: "A"}) }},
		{"PlaceOrderNegativePayment", func() error {
			return client.PlaceOrder(ctx, "o1", PlaceOrderRequest{BillPayment: -1})
		}},
		{"TransactionBlankDescription", func() error {
			return client.CreateTransaction(ctx, NewTransaction{Description: "  ", Amount: 5})
		}},
		{"TransactionZeroAmount", func() error {
			return client.CreateTransaction(ctx, NewTransaction{Description: "chai", Amount: 0})
		}},
		{"LoginNoEmail", func() error { return client.Login(ctx, "", "pw") }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.call(); !IsValidation(err) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestFillCart_SendsWirePayload(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		writeJSON(t, writer, map[string]any{"order": Order{ID: "o1"}})
	}))
	defer server.Close()

	client := newTestClient(t, server, "test-token")
	order, err := client.FillCart(context.Background(), "c1", "p1", 3)
	if err != nil {
		t.Fatalf("FillCart: %v", err)
	}
	if order.ID != "o1" {
		t.Errorf("order ID = %q, want o1", order.ID)
	}
	if payload["productId"] != "p1" || payload["qty"] != float64(3) {
		t.Errorf("payload = %v", payload)
	}
}
