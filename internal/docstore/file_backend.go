package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps the snapshot as a JSON document on disk.
type FileBackend struct {
	path string
}

// OpenFile prepares a JSON file backend; the file itself is created on first write.
func OpenFile(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", filepath.Dir(path), err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	customLog.Printf("Storage: Using snapshot file: %s", path)
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", b.path, err)
	}
	return data, nil
}

// Write goes through a temp file and a rename so a crash never leaves a
// half-written snapshot behind.
func (b *FileBackend) Write(_ context.Context, data []byte) error {
	tmpPath := b.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o640); err != nil {
		return fmt.Errorf("failed to write temp snapshot %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("failed to rename temp snapshot to %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
