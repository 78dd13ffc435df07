// internal/storage/query_log_storage.go
package storage

import (
	"context"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/domain"
)

// DefaultQueryLogLimit caps query log listings.
const DefaultQueryLogLimit = 200

// QueryLogFilter narrows a query log listing. Empty fields match everything.
type QueryLogFilter struct {
	UserID     string
	DatabaseID string
	Method     string
	Limit      int
}

// CreateQueryLog appends an audit record. Records are never updated.
func (r *Repository) CreateQueryLog(ctx context.Context, entry domain.QueryLog) (*domain.QueryLog, error) {
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		entry.ID = r.newID()
		entry.CreatedAt = r.now()
		s.QueryLogs = append(s.QueryLogs, entry)
		return nil
	})
	if err != nil {
		customLog.Warnf("Storage: Failed to append query log for database %s: %v", entry.DatabaseID, err)
		return nil, err
	}
	return &entry, nil
}

// ListQueryLogs returns matching logs, newest first.
func (r *Repository) ListQueryLogs(ctx context.Context, filter QueryLogFilter) ([]domain.QueryLog, error) {
	logs := make([]domain.QueryLog, 0)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, l := range s.QueryLogs {
			if filter.UserID != "" && l.UserID != filter.UserID {
				continue
			}
			if filter.DatabaseID != "" && l.DatabaseID != filter.DatabaseID {
				continue
			}
			if filter.Method != "" && l.Method != filter.Method {
				continue
			}
			logs = append(logs, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(logs, func(l domain.QueryLog) time.Time { return l.CreatedAt })

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLogLimit
	}
	return page(logs, 0, limit), nil
}
