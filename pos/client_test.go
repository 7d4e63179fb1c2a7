// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient creates a Client backed by the given httptest.Server
// with the given token pre-installed (empty for no credential).
func newTestClient(t *testing.T, server *httptest.Server, token string) *Client {
	t.Helper()
	store := NewMemoryStore()
	if token != "" {
		if err := store.Set(token); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	client, err := NewClient(Config{
		BaseURL:     server.URL,
		Credentials: store,
		HTTPClient:  server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, writer http.ResponseWriter, value any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}

func TestClient_AuthHeaderInjection(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedAuth = request.Header.Get("Authorization")
		writeJSON(t, writer, map[string]any{"products": []Product{}})
	}))
	defer server.Close()

	client := newTestClient(t, server, "test-token")
	if _, err := client.Products(context.Background()); err != nil {
		t.Fatalf("Products: %v", err)
	}
	if receivedAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", receivedAuth, "Bearer test-token")
	}
}

func TestClient_NoCredentialProceedsUnauthenticated(t *testing.T) {
	var receivedAuth string
	var sawAuthHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedAuth = request.Header.Get("Authorization")
		_, sawAuthHeader = request.Header["Authorization"]
		writeJSON(t, writer, map[string]any{"products": []Product{}})
	}))
	defer server.Close()

	client := newTestClient(t, server, "")
	if _, err := client.Products(context.Background()); err != nil {
		t.Fatalf("Products: %v", err)
	}
	if sawAuthHeader {
		t.Errorf("unauthenticated request carried Authorization header %q", receivedAuth)
	}
}

func TestClient_RefreshAndRetryOnce(t *testing.T) {
	var refreshCalls, endpointCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			refreshCalls.Add(1)
			writeJSON(t, writer, map[string]string{"accessToken": "fresh-token"})
		case "/get-products":
			endpointCalls.Add(1)
			if request.Header.Get("Authorization") != "Bearer fresh-token" {
				writer.WriteHeader(http.StatusUnauthorized)
				writeJSON(t, writer, map[string]string{"message": "token expired"})
				return
			}
			writeJSON(t, writer, map[string]any{"products": []Product{{ID: "p1"}}})
		default:
			t.Errorf("unexpected path %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")
	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Errorf("Products = %+v, want one product p1", products)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := endpointCalls.Load(); got != 2 {
		t.Errorf("endpoint calls = %d, want 2 (original + retry)", got)
	}

	if token, ok := client.Credentials().Token(); !ok || token != "fresh-token" {
		t.Errorf("stored token = %q, %v; want fresh-token", token, ok)
	}
}

func TestClient_SingleFlightRefresh(t *testing.T) {
	const concurrentRequests = 8

	var refreshCalls, unauthorized atomic.Int32
	refreshGate := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			refreshCalls.Add(1)
			// Hold the refresh open until every request has hit its
			// 401, so all of them must share this one flight.
			<-refreshGate
			writeJSON(t, writer, map[string]string{"accessToken": "fresh-token"})
		case "/get-products":
			if request.Header.Get("Authorization") != "Bearer fresh-token" {
				unauthorized.Add(1)
				writer.WriteHeader(http.StatusUnauthorized)
				writeJSON(t, writer, map[string]string{"message": "token expired"})
				return
			}
			writeJSON(t, writer, map[string]any{"products": []Product{}})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")

	var wg sync.WaitGroup
	errs := make([]error, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Products(context.Background())
		}()
	}

	// Release the refresh only after all requests have been rejected
	// and are waiting on the flight.
	deadline := time.Now().Add(5 * time.Second)
	for unauthorized.Load() < concurrentRequests {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d requests hit 401", unauthorized.Load(), concurrentRequests)
		}
		time.Sleep(time.Millisecond)
	}
	close(refreshGate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
}

func TestClient_SecondUnauthorizedIsTerminal(t *testing.T) {
	var refreshCalls, endpointCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			refreshCalls.Add(1)
			writeJSON(t, writer, map[string]string{"accessToken": "fresh-token"})
		default:
			// The endpoint rejects even the refreshed token.
			endpointCalls.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
			writeJSON(t, writer, map[string]string{"message": "still not allowed"})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")
	_, err := client.Products(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if got := endpointCalls.Load(); got != 2 {
		t.Errorf("endpoint calls = %d, want 2 (never a third attempt)", got)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestClient_RefreshFailureForcesLogout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			writer.WriteHeader(http.StatusForbidden)
			writeJSON(t, writer, map[string]string{"message": "refresh token revoked"})
		default:
			writer.WriteHeader(http.StatusUnauthorized)
			writeJSON(t, writer, map[string]string{"message": "token expired"})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")
	_, err := client.Products(context.Background())
	if !IsRefreshFailure(err) {
		t.Fatalf("err = %v, want RefreshError", err)
	}
	if _, ok := client.Credentials().Token(); ok {
		t.Error("credential store still holds a token after refresh failure")
	}

	// The underlying cause stays reachable through Unwrap.
	var apiError *APIError
	if !errors.As(err, &apiError) || apiError.StatusCode != http.StatusForbidden {
		t.Errorf("unwrapped cause = %v, want 403 APIError", err)
	}
}

func TestClient_RefreshFailureFansOutToAllWaiters(t *testing.T) {
	const concurrentRequests = 4

	var refreshCalls, unauthorized atomic.Int32
	refreshGate := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			refreshCalls.Add(1)
			<-refreshGate
			writer.WriteHeader(http.StatusForbidden)
			writeJSON(t, writer, map[string]string{"message": "refresh token revoked"})
		default:
			unauthorized.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
			writeJSON(t, writer, map[string]string{"message": "token expired"})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")

	var wg sync.WaitGroup
	errs := make([]error, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Products(context.Background())
		}()
	}

	deadline := time.Now().Add(5 * time.Second)
	for unauthorized.Load() < concurrentRequests {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d requests hit 401", unauthorized.Load(), concurrentRequests)
		}
		time.Sleep(time.Millisecond)
	}
	close(refreshGate)
	wg.Wait()

	for i, err := range errs {
		if !IsRefreshFailure(err) {
			t.Errorf("request %d: err = %v, want RefreshError", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
}

func TestClient_RefreshSlotResetsAfterFlight(t *testing.T) {
	// Two sequential expiries must each get their own refresh.
	var refreshCalls atomic.Int32
	currentToken := "token-0"
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch request.URL.Path {
		case "/refresh":
			n := refreshCalls.Add(1)
			currentToken = map[int32]string{1: "token-1", 2: "token-2"}[n]
			writeJSON(t, writer, map[string]string{"accessToken": currentToken})
		default:
			if request.Header.Get("Authorization") != "Bearer "+currentToken {
				writer.WriteHeader(http.StatusUnauthorized)
				writeJSON(t, writer, map[string]string{"message": "token expired"})
				return
			}
			writeJSON(t, writer, map[string]any{"products": []Product{}})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")
	if _, err := client.Products(context.Background()); err != nil {
		t.Fatalf("first Products: %v", err)
	}

	// Invalidate the session again.
	mu.Lock()
	currentToken = "token-2"
	mu.Unlock()
	if _, err := client.Products(context.Background()); err != nil {
		t.Fatalf("second Products: %v", err)
	}

	if got := refreshCalls.Load(); got != 2 {
		t.Errorf("refresh calls = %d, want 2 (one per expiry)", got)
	}
}

func TestClient_WaiterHonorsItsOwnContext(t *testing.T) {
	refreshGate := make(chan struct{})
	refreshStarted := make(chan struct{})
	var startOnce sync.Once

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			startOnce.Do(func() { close(refreshStarted) })
			<-refreshGate
			writeJSON(t, writer, map[string]string{"accessToken": "fresh-token"})
		default:
			writer.WriteHeader(http.StatusUnauthorized)
			writeJSON(t, writer, map[string]string{"message": "token expired"})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "stale-token")

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := client.Products(ctx)
		result <- err
	}()

	<-refreshStarted
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled waiter did not return")
	}
	close(refreshGate)
}

func TestClient_APIErrorParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		writeJSON(t, writer, map[string]string{"message": "customer not found"})
	}))
	defer server.Close()

	client := newTestClient(t, server, "test-token")
	_, err := client.Customer(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want 404 APIError", err)
	}
	var apiError *APIError
	if !errors.As(err, &apiError) || apiError.Message != "customer not found" {
		t.Errorf("message = %v, want %q", err, "customer not found")
	}
}

func TestClient_NonAuthErrorBodyPassedThrough(t *testing.T) {
	// Application-level error bodies on 2xx are not interpreted by the
	// pipeline; the decoded payload is returned unchanged.
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, map[string]any{"products": []Product{}, "message": "nothing in stock"})
	}))
	defer server.Close()

	client := newTestClient(t, server, "test-token")
	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("Products = %+v, want empty", products)
	}
}

func TestClient_LoginBypassesRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/refresh":
			refreshCalls.Add(1)
			writeJSON(t, writer, map[string]string{"accessToken": "fresh-token"})
		case "/login":
			writer.WriteHeader(http.StatusUnauthorized)
			writeJSON(t, writer, map[string]string{"message": "wrong password"})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, "")
	err := client.Login(context.Background(), "owner@example.com", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0 (login must not trigger refresh)", got)
	}
}

func TestClient_LoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/login" || request.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", request.Method, request.URL.Path)
		}
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Errorf("decoding login body: %v", err)
		}
		if body.Email != "owner@example.com" || body.Password != "hunter2" {
			t.Errorf("login body = %+v", body)
		}
		writeJSON(t, writer, map[string]string{"accessToken": "session-token"})
	}))
	defer server.Close()

	client := newTestClient(t, server, "")
	if err := client.Login(context.Background(), "owner@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token, ok := client.Credentials().Token(); !ok || token != "session-token" {
		t.Errorf("stored token = %q, %v; want session-token", token, ok)
	}
}

func TestClient_LogoutClearsCredentialEvenOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
		writeJSON(t, writer, map[string]string{"message": "backend down"})
	}))
	defer server.Close()

	client := newTestClient(t, server, "test-token")
	err := client.Logout(context.Background())
	if err == nil {
		t.Error("expected server error to surface")
	}
	if _, ok := client.Credentials().Token(); ok {
		t.Error("credential survived logout")
	}
}

func TestClient_Me(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/me" {
			t.Errorf("unexpected path %s", request.URL.Path)
		}
		writeJSON(t, writer, map[string]any{
			"user": User{ID: "u1", Name: "Owner", Email: "owner@example.com"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server, "test-token")
	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.ID != "u1" || user.Email != "owner@example.com" {
		t.Errorf("Me = %+v", user)
	}
}
