// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package pos

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CredentialStore holds the current access token for a running
// process. Absent at startup, set on successful login or refresh,
// cleared on logout or unrecoverable refresh failure.
//
// Implementations must be safe for concurrent use: a Token call
// racing a Clear must observe either the prior token or absence,
// never a torn value.
type CredentialStore interface {
	// Token returns the current access token, or ok=false when no
	// credential is held.
	Token() (token string, ok bool)

	// Set replaces the current access token.
	Set(token string) error

	// Clear discards the current access token.
	Clear() error
}

// MemoryStore is a process-local CredentialStore.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// sessionFile is the on-disk shape of a persisted credential.
type sessionFile struct {
	AccessToken string `json:"access_token"`
}

// FileStore is a CredentialStore persisted to a single JSON file so
// separate CLI invocations share one session. The file is written with
// mode 0600 (it contains an access token) under a 0700 parent
// directory. The token is cached in memory; the file is read once at
// construction and write-through on Set and Clear.
type FileStore struct {
	path string

	mu    sync.Mutex
	token string
}

// NewFileStore opens a file-backed credential store at path. A missing
// file is not an error; the store starts absent.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("pos: reading session file %s: %w", path, err)
	}

	var session sessionFile
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("pos: parsing session file %s: %w", path, err)
	}
	store.token = session.AccessToken
	return store, nil
}

func (s *FileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionFile{AccessToken: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("pos: marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("pos: creating session directory %s: %w", directory, err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("pos: writing session file %s: %w", s.path, err)
	}

	s.token = token
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pos: removing session file %s: %w", s.path, err)
	}
	return nil
}
