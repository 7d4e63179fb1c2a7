// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the POS backend. The
// backend returns JSON error bodies with a message field; when the
// body is not in that shape the raw body text is used as the message.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *pos.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 { ... }
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the error description from the server.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pos: HTTP %d: %s", e.StatusCode, e.Message)
}

// RefreshError is the terminal failure of a credential refresh. By the
// time a caller sees it, the credential store has already been cleared;
// the only recovery is a fresh login.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("pos: credential refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// ValidationError is caller-supplied bad input, rejected before any
// network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "pos: invalid input: " + e.Message
}

// Validationf constructs a ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a backend 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a backend 401 response. After
// the pipeline's single refresh-and-retry this means the session could
// not be re-established.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusUnauthorized
}

// IsRefreshFailure reports whether err is a terminal refresh failure.
// Callers should treat it as a forced logout.
func IsRefreshFailure(err error) bool {
	var refreshError *RefreshError
	return errors.As(err, &refreshError)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}
