// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/tillworks/till/pos"
)

// Connect builds a pos client backed by the saved session token file.
// The server URL comes from the saved profile when one exists (the
// server the operator actually logged in to), falling back to the
// config file's server_url for commands that run before login.
func Connect() (*pos.Client, Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, config, err
	}

	serverURL := config.ServerURL
	if profile, err := LoadProfile(); err == nil && profile.ServerURL != "" {
		serverURL = profile.ServerURL
	}

	store, err := pos.NewFileStore(SessionFilePath())
	if err != nil {
		return nil, config, err
	}

	client, err := pos.NewClient(pos.Config{
		BaseURL:     serverURL,
		Credentials: store,
		Logger:      NewCommandLogger(),
	})
	if err != nil {
		return nil, config, fmt.Errorf("creating client for %s: %w", serverURL, err)
	}
	return client, config, nil
}
