// Package wallet persists the burner wallet key pair as a small JSON file.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/checkerctl/checkerctl/internal/extract"
)

var (
	// ErrExists is returned by Save when a wallet file is already present
	// and overwriting was not requested.
	ErrExists = errors.New("wallet file already exists")

	// ErrIncomplete is returned when a key pair lacks either half.
	ErrIncomplete = errors.New("wallet is missing a key")
)

// Store reads and writes one wallet file.
type Store struct {
	path string
}

// NewStore returns a Store for the wallet file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the wallet file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the wallet file is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat wallet file: %w", err)
}

// Save writes kp. It refuses to replace an existing file unless overwrite
// is set. The write is atomic: a temp file is written with mode 0600 and
// renamed over the target.
func (s *Store) Save(kp extract.KeyPair, overwrite bool) error {
	if !kp.Valid() {
		return ErrIncomplete
	}
	if !overwrite {
		exists, err := s.Exists()
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrExists, s.path)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create wallet directory: %w", err)
	}

	data, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}
	data = append(data, '\n')

	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp wallet file: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename wallet file: %w", err)
	}
	return nil
}

// Load reads the stored key pair. A file that parses but lacks a key
// yields ErrIncomplete.
func (s *Store) Load() (extract.KeyPair, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return extract.KeyPair{}, fmt.Errorf("failed to read wallet file: %w", err)
	}
	var kp extract.KeyPair
	if err := json.Unmarshal(data, &kp); err != nil {
		return extract.KeyPair{}, fmt.Errorf("failed to parse wallet file: %w", err)
	}
	if !kp.Valid() {
		return kp, fmt.Errorf("%w: %s", ErrIncomplete, s.path)
	}
	return kp, nil
}

// Status summarises a wallet file without exposing key material.
type Status struct {
	Path     string     `json:"path"`
	Exists   bool       `json:"exists"`
	Complete bool       `json:"complete"`
	Modified *time.Time `json:"modified,omitempty"`
	// Problem explains why an existing file is not complete.
	Problem string `json:"problem,omitempty"`
}

// Check reports whether a complete wallet is stored. Only I/O failures
// other than a missing file are returned as errors.
func (s *Store) Check() (Status, error) {
	st := Status{Path: s.path}

	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to stat wallet file: %w", err)
	}
	st.Exists = true
	modified := info.ModTime().UTC()
	st.Modified = &modified

	if _, err := s.Load(); err != nil {
		st.Problem = err.Error()
		return st, nil
	}
	st.Complete = true
	return st, nil
}
