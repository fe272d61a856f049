package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore persists the corpus snapshot on the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a new local snapshot store
func NewLocalStore(basePath string) (*LocalStore, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStore{
		basePath: basePath,
	}, nil
}

// Save writes the snapshot to disk, replacing any previous one
func (s *LocalStore) Save(ctx context.Context, data io.Reader) error {
	fullPath := filepath.Join(s.basePath, snapshotName)

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(fullPath) // Clean up on error
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Load opens the stored snapshot
func (s *LocalStore) Load(ctx context.Context) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, snapshotName)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	return file, nil
}
