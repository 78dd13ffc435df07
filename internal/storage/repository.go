// internal/storage/repository.go
package storage

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Specific errors for repository operations
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("an account with this email already exists")
	ErrDatabaseNotFound = errors.New("database not found")
	ErrTableNotFound    = errors.New("table not found")
	ErrTableExists      = errors.New("a table with this name already exists in this database")
	ErrRowNotFound      = errors.New("row not found")
	ErrAPIKeyNotFound   = errors.New("api key not found")
	ErrAPIKeyGeneration = errors.New("failed to generate api key")
)

// Repository exposes typed CRUD over the document store. Every mutating
// call is a single docstore.Update, every read a single docstore.View.
type Repository struct {
	store *docstore.Store
	now   func() time.Time
	newID func() string
}

// NewRepository creates a repository over store.
func NewRepository(store *docstore.Store) *Repository {
	return &Repository{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// oldestFirst stable-sorts by creation time; equal timestamps keep insertion order.
func oldestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}

// newestFirst is the reverse; equal timestamps list the later insert first.
func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

// page slices items[offset:offset+limit], clamped to bounds. limit <= 0 means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return make([]T, 0)
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}
