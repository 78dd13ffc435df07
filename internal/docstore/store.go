// Package docstore persists every entity collection as one serialized
// snapshot. Each mutation is load -> mutate -> save under a single lock
// per Store, so concurrent writers can't overwrite each other's changes.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Annany2002/nebula-docstore/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

var (
	// ErrSnapshotNotFound is returned by a Backend that has never been written.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotCorrupt means persisted bytes exist but can't be decoded.
	ErrSnapshotCorrupt = errors.New("snapshot is corrupt")
)

// Backend is the durable medium holding the serialized snapshot.
type Backend interface {
	// Read returns the last written snapshot or ErrSnapshotNotFound.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the persisted snapshot.
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Store serializes access to a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the current snapshot. A backend that was never written
// yields an empty snapshot; anything unreadable is an error.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return NewSnapshot(), nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap := &Snapshot{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(snap); err != nil {
		customLog.Warnf("Storage: Snapshot decode failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	snap.normalize()
	return snap, nil
}

// Save serializes the full snapshot and replaces the persisted state.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	snap.normalize()
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.backend.Write(ctx, raw); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// View loads the snapshot under the store lock and hands it to fn.
// fn must not retain the snapshot after returning.
func (s *Store) View(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return fn(snap)
}

// Update runs a full load -> fn -> save cycle under the store lock.
// Nothing is saved when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return s.Save(ctx, snap)
}

// Verify loads the snapshot once so a corrupt medium is caught at startup.
func (s *Store) Verify(ctx context.Context) error {
	return s.View(ctx, func(*Snapshot) error { return nil })
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
