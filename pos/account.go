// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"context"
	"net/http"
)

// Login authenticates with email and password and installs the
// returned access token in the credential store. Login bypasses the
// refresh-and-retry pipeline: a 401 here means the credentials are
// wrong, not that a session expired.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" {
		return Validationf("email is required")
	}
	if password == "" {
		return Validationf("password is required")
	}

	request := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var response struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.doBare(ctx, http.MethodPost, "/login", request, &response); err != nil {
		return err
	}
	if response.AccessToken == "" {
		return &APIError{StatusCode: http.StatusOK, Message: "login response carried no access token"}
	}
	return c.credentials.Set(response.AccessToken)
}

// Logout ends the session. The server call is best effort; the local
// credential is cleared regardless so the process is logged out even
// when the server is unreachable.
func (c *Client) Logout(ctx context.Context) error {
	callErr := c.doBare(ctx, http.MethodPost, "/logout", nil, nil)
	if err := c.credentials.Clear(); err != nil {
		return err
	}
	return callErr
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var response struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, &response); err != nil {
		return nil, err
	}
	return &response.User, nil
}
