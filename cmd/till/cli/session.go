// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Profile is the operator identity saved by "till login" alongside the
// session token file. The token itself is managed by the pos package's
// file-backed credential store; the profile records which server and
// account the token belongs to, so later commands can report identity
// without a network round trip.
type Profile struct {
	ServerURL string `json:"server_url"`
	Email     string `json:"email"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
}

// ErrNoProfile is returned by LoadProfile when no profile has been
// saved. Commands translate this into a "not logged in" message.
var ErrNoProfile = errors.New("not logged in (run 'till login')")

// SaveProfile writes the profile next to the session token file with
// mode 0600.
func SaveProfile(profile *Profile) error {
	path := ProfileFilePath()

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing profile file %s: %w", path, err)
	}
	return nil
}

// LoadProfile reads the saved profile. Returns [ErrNoProfile] when the
// file does not exist.
func LoadProfile() (*Profile, error) {
	path := ProfileFilePath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("reading profile file %s: %w", path, err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
	}
	return &profile, nil
}

// RemoveProfile deletes the saved profile. A missing file is not an
// error.
func RemoveProfile() error {
	if err := os.Remove(ProfileFilePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing profile file: %w", err)
	}
	return nil
}
