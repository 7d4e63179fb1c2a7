// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/tillworks/till/lib/clock"
)

// maxResponseSize bounds response body reads: 32 MB. This exists
// solely to prevent a pathological response from exhausting memory;
// legitimate API responses are orders of magnitude smaller.
const maxResponseSize int64 = 32 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests, including any path
	// prefix (e.g., "https://pos.example.com/api/v1"). Required.
	BaseURL string

	// Credentials holds the access token. Defaults to a fresh
	// MemoryStore. Inject a FileStore to share a session across
	// processes, or a test double in tests.
	Credentials CredentialStore

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient. The refresh endpoint authenticates via the
	// HTTP client's cookie jar, so callers that need refresh must
	// configure a jar (or a transport that carries the cookie).
	HTTPClient *http.Client

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a typed POS API client with automatic credential
// attachment, reactive expiry detection, single-flight refresh, and a
// single transparent retry per request.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialStore
	clock       clock.Clock
	logger      *slog.Logger

	// refreshMu guards the single-flight refresh slot. All requests
	// that hit a 401 while a refresh is in flight join it rather than
	// issuing their own.
	refreshMu sync.Mutex
	refresh   *refreshFlight
}

// NewClient creates a POS API client from the given configuration.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("pos: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("pos: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	credentials := config.Credentials
	if credentials == nil {
		credentials = NewMemoryStore()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		httpClient:  httpClient,
		credentials: credentials,
		clock:       clk,
		logger:      logger,
	}, nil
}

// Credentials returns the client's credential store.
func (c *Client) Credentials() CredentialStore {
	return c.credentials
}

// do executes an authenticated API request and decodes the JSON
// response into result (pass nil to discard the body). On a 401 the
// credential is refreshed (single-flight across concurrent callers)
// and the request retried exactly once; a second 401 is returned
// as-is. All other non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	body, err := c.doAttempt(ctx, method, path, requestBody, 0)
	if err != nil {
		return err
	}
	return decode(method, path, body, result)
}

// doBare executes a request without the 401 refresh-and-retry. Used by
// the session endpoints (login, logout) where a 401 means bad
// credentials, not an expired session.
func (c *Client) doBare(ctx context.Context, method, path string, requestBody, result any) error {
	response, err := c.dispatch(ctx, method, path, requestBody)
	if err != nil {
		return err
	}
	body, err := c.readBody(response)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(response.StatusCode, body)
	}
	return decode(method, path, body, result)
}

// doAttempt runs one dispatch of the request. attempt counts how many
// times this request has already been retried after a refresh; the
// counter lives here, on the call stack, so the request value itself
// is never mutated and stays reusable across the retry.
func (c *Client) doAttempt(ctx context.Context, method, path string, requestBody any, attempt int) ([]byte, error) {
	started := c.clock.Now()
	response, err := c.dispatch(ctx, method, path, requestBody)
	if err != nil {
		return nil, err
	}
	body, err := c.readBody(response)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("pos request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"duration", c.clock.Now().Sub(started),
	)

	if response.StatusCode == http.StatusUnauthorized {
		if attempt > 0 {
			// Already retried once after a refresh. Terminal.
			return nil, parseAPIError(response.StatusCode, body)
		}
		if err := c.refreshCredential(ctx); err != nil {
			return nil, err
		}
		// The retry re-reads the store in dispatch and picks up the
		// token the refresh just wrote.
		return c.doAttempt(ctx, method, path, requestBody, attempt+1)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, parseAPIError(response.StatusCode, body)
	}
	return body, nil
}

// dispatch builds and executes one HTTP request, attaching the current
// credential if one is held. A missing credential is not an error at
// this layer; the call proceeds unauthenticated and the server
// rejects it if authentication is required.
func (c *Client) dispatch(ctx context.Context, method, path string, requestBody any) (*http.Response, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("pos: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("pos: creating request: %w", err)
	}

	if token, ok := c.credentials.Token(); ok {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("pos: %s %s: %w", method, path, err)
	}
	return response, nil
}

func (c *Client) readBody(response *http.Response) ([]byte, error) {
	defer response.Body.Close()
	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("pos: reading response body: %w", err)
	}
	return body, nil
}

func decode(method, path string, body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("pos: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// refreshFlight is one in-flight credential refresh. The outcome is
// published by closing done; err must not be read before then.
type refreshFlight struct {
	done chan struct{}
	err  error
}

// refreshCredential joins the in-flight refresh, starting one if none
// is running. All concurrent 401s collapse into a single GET /refresh;
// every caller waits on the same outcome. The refresh itself runs on a
// context detached from the triggering caller, so one torn-down screen
// cannot poison the shared result; each waiter still honors its own
// ctx while waiting.
func (c *Client) refreshCredential(ctx context.Context) error {
	c.refreshMu.Lock()
	flight := c.refresh
	if flight == nil {
		flight = &refreshFlight{done: make(chan struct{})}
		c.refresh = flight
		go c.runRefresh(context.WithoutCancel(ctx), flight)
	}
	c.refreshMu.Unlock()

	select {
	case <-flight.done:
		return flight.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runRefresh performs the refresh call, resolves the flight, and frees
// the slot so a later expiry can trigger a fresh refresh.
func (c *Client) runRefresh(ctx context.Context, flight *refreshFlight) {
	flight.err = c.callRefresh(ctx)

	c.refreshMu.Lock()
	c.refresh = nil
	c.refreshMu.Unlock()

	close(flight.done)
}

// callRefresh issues GET /refresh and installs the new token. Any
// failure (transport, non-2xx, or a malformed body) clears the
// credential store and is reported as a *RefreshError so callers can
// force a logout.
func (c *Client) callRefresh(ctx context.Context) error {
	fail := func(err error) error {
		if clearErr := c.credentials.Clear(); clearErr != nil {
			c.logger.Warn("clearing credentials after failed refresh", "error", clearErr)
		}
		c.logger.Info("credential refresh failed, session ended", "error", err)
		return &RefreshError{Err: err}
	}

	response, err := c.dispatch(ctx, http.MethodGet, "/refresh", nil)
	if err != nil {
		return fail(err)
	}
	body, err := c.readBody(response)
	if err != nil {
		return fail(err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fail(parseAPIError(response.StatusCode, body))
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fail(fmt.Errorf("decoding refresh response: %w", err))
	}
	if result.AccessToken == "" {
		return fail(fmt.Errorf("refresh response carried no access token"))
	}
	if err := c.credentials.Set(result.AccessToken); err != nil {
		return fail(fmt.Errorf("storing refreshed token: %w", err))
	}

	c.logger.Debug("credential refreshed")
	return nil
}

// parseAPIError parses a backend error from a status code and response
// body. The backend returns {"message": ...} bodies; anything else is
// used verbatim.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
	} else {
		apiError.Message = strings.TrimSpace(string(body))
	}
	return apiError
}
