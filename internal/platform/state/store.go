// Package state persists the client's session across runs: the token
// pair, the signed-in user record and the current organization pointer.
// It is the on-disk counterpart of a browser's local storage.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"cordial/internal/crm"
)

type Data struct {
	Tokens       crm.StoredTokens `json:"tokens,omitempty"`
	User         *crm.User        `json:"user,omitempty"`
	CurrentOrgID string           `json:"current_org_id,omitempty"`
}

// Store reads and writes the state file. All mutations rewrite the whole
// file atomically (write temp, rename), so a crashed run never leaves a
// half-written state behind.
type Store struct {
	path string

	mu     sync.Mutex
	data   Data
	loaded bool
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is ~/.config/cordial/state.json (per os.UserConfigDir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cordial", "state.json"), nil
}

// load reads the file once. A missing file is an empty state, not an
// error.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Tokens implements crm.TokenStore.
func (s *Store) Tokens() (crm.StoredTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return crm.StoredTokens{}, err
	}
	return s.data.Tokens, nil
}

// SetTokens implements crm.TokenStore.
func (s *Store) SetTokens(tokens crm.StoredTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.data.Tokens = tokens
	return s.save()
}

// ClearSession implements crm.TokenStore. It drops every persisted key:
// tokens, user record and the organization pointer.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.data = Data{}
	return s.save()
}

// SetSession stores tokens and user record in one write.
func (s *Store) SetSession(tokens crm.StoredTokens, user *crm.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.data.Tokens = tokens
	s.data.User = user
	return s.save()
}

func (s *Store) User() (*crm.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.data.User, nil
}

func (s *Store) SetUser(user *crm.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.data.User = user
	return s.save()
}

func (s *Store) CurrentOrgID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return ""
	}
	return s.data.CurrentOrgID
}

func (s *Store) SetCurrentOrgID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.data.CurrentOrgID = id
	return s.save()
}
