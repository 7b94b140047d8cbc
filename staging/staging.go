// Package staging persists uploaded media to a temporary on-disk location for
// the duration of one request.
//
// Staged files are named with a generated identifier plus the upload's
// original extension, so concurrent uploads sharing a declared filename never
// collide. Callers are responsible for removal; the orchestrator removes the
// staged file on every exit path.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploads into a base directory.
type Store struct {
	dir string
}

// New creates a staging store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("staging: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("staging: create base directory: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute base directory.
func (s *Store) Dir() string { return s.dir }

// Stage writes the upload bytes to a fresh staging file and returns its path.
// The declared filename contributes only its extension to the staged name.
func (s *Store) Stage(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	path := filepath.Join(s.dir, uuid.New().String()+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("staging: create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("staging: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("staging: close file: %w", err)
	}
	return path, nil
}

// Remove deletes a staged file. Missing files are not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("staging: remove file: %w", err)
	}
	return nil
}
