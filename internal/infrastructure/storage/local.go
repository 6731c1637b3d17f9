// Package storage persists generated invoice PDFs on the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const invoicesSubdir = "invoices"

// LocalStore implements billing.ArtifactStore on top of a media directory.
// Saved paths are relative to the media root so the database stays portable
// when the root moves between environments.
type LocalStore struct {
	root string
}

// NewLocalStore creates the media root eagerly so the first Save does not
// fail on a missing directory.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, invoicesSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create media dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes data under the invoices subdirectory and returns a
// root-relative path.
func (s *LocalStore) Save(filename string, data []byte) (string, error) {
	rel := filepath.Join(invoicesSubdir, filepath.Base(filename))
	abs := filepath.Join(s.root, rel)
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", rel, err)
	}
	return filepath.ToSlash(rel), nil
}

// Open reads a previously saved artifact by its root-relative path.
// Absolute paths and parent traversal are rejected.
func (s *LocalStore) Open(path string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("storage: invalid artifact path %q", path)
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}
