// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tokenstore

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks Store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"

	"github.com/stacklok/toolhive-oauth/client"
)

// ErrNotFound is returned by Load and Delete for keys that are not stored.
var ErrNotFound = errors.New("token not found")

// Store persists tokens by key.
type Store interface {
	Load(key string) (*client.Token, error)
	Save(key string, tok *client.Token) error
	Delete(key string) error
}

// PathIn returns the token file location within dataHome.
func PathIn(dataHome string) string {
	return filepath.Join(dataHome, "toolhive-oauth", "tokens.json")
}

// DefaultPath returns the token file location under the XDG data home.
func DefaultPath() string {
	return PathIn(xdg.DataHome)
}

// FileStore keeps every token in a single JSON file readable only by the
// current user. Writes replace the file atomically.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a FileStore backed by path. The file and its parent
// directory are created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the token stored under key.
func (s *FileStore) Load(key string) (*client.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return nil, err
	}
	tok, ok := tokens[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return tok, nil
}

// Save stores tok under key, replacing any previous token.
func (s *FileStore) Save(key string, tok *client.Token) error {
	if tok == nil {
		return errors.New("token is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	tokens[key] = tok
	return s.write(tokens)
}

// Delete removes the token stored under key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	delete(tokens, key)
	return s.write(tokens)
}

func (s *FileStore) read() (map[string]*client.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*client.Token{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}

	tokens := map[string]*client.Token{}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token store %s: %w", s.path, err)
	}
	return tokens, nil
}

func (s *FileStore) write(tokens map[string]*client.Token) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}
