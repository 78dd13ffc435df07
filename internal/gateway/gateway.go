// internal/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// ErrMalformedRequest marks envelopes rejected before dispatch.
var ErrMalformedRequest = errors.New("malformed request")

// Supported actions.
const (
	ActionSelect = "select"
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Envelope is one decoded data-plane request.
type Envelope struct {
	APIKey  string
	Action  string
	Table   string
	Data    domain.RowData
	HasData bool
	Filters map[string]any
	RowID   string
	// ReceivedAt anchors the response time recorded in the audit log.
	ReceivedAt time.Time
}

// Result is a successful dispatch outcome.
type Result struct {
	Status int
	Data   any
}

// KeyResolver maps raw keys to their scope and records usage.
type KeyResolver interface {
	Resolve(ctx context.Context, raw string) (*domain.APIKey, error)
	Touch(ctx context.Context, keyId string) error
}

// Repository is the subset of the entity repository the gateway drives.
type Repository interface {
	GetTableByName(ctx context.Context, databaseId, name string) (*domain.Table, error)
	ListRows(ctx context.Context, tableId string, offset, limit int) ([]domain.Row, error)
	FilterRows(ctx context.Context, tableId string, filters map[string]any) ([]domain.Row, error)
	CreateRow(ctx context.Context, tableId string, data domain.RowData) (*domain.Row, error)
	UpdateRow(ctx context.Context, tableId, rowId string, patch domain.RowData) (*domain.Row, error)
	DeleteRow(ctx context.Context, tableId, rowId string) error
	CreateQueryLog(ctx context.Context, entry domain.QueryLog) (*domain.QueryLog, error)
}

// Gateway dispatches data-plane envelopes. It is the only writer of query logs.
type Gateway struct {
	keys KeyResolver
	repo Repository
	now  func() time.Time
}

// New creates a Gateway.
func New(keys KeyResolver, repo Repository) *Gateway {
	return &Gateway{keys: keys, repo: repo, now: time.Now}
}

// Dispatch validates env, runs its action and appends exactly one audit
// record on success. Rejected envelopes are never logged.
func (g *Gateway) Dispatch(ctx context.Context, env Envelope) (*Result, error) {
	if env.ReceivedAt.IsZero() {
		env.ReceivedAt = g.now()
	}
	if env.APIKey == "" || env.Action == "" || env.Table == "" {
		return nil, fmt.Errorf("%w: missing required fields: api_key, action, table", ErrMalformedRequest)
	}

	key, err := g.keys.Resolve(ctx, env.APIKey)
	if err != nil {
		return nil, err
	}

	table, err := g.repo.GetTableByName(ctx, key.DatabaseID, env.Table)
	if err != nil {
		return nil, err
	}

	result, err := g.run(ctx, table, env)
	if err != nil {
		return nil, err
	}

	elapsed := g.now().Sub(env.ReceivedAt).Milliseconds()
	_, err = g.repo.CreateQueryLog(ctx, domain.QueryLog{
		DatabaseID:     key.DatabaseID,
		UserID:         key.UserID,
		Method:         env.Action,
		Endpoint:       "/" + env.Table,
		StatusCode:     result.Status,
		RequestBody:    &domain.RequestSummary{Action: env.Action, Table: env.Table, Filters: env.Filters},
		ResponseTimeMs: elapsed,
	})
	if err != nil {
		return nil, err
	}

	if err := g.keys.Touch(ctx, key.ID); err != nil {
		customLog.Warnf("Gateway: Failed to touch API key %s: %v", key.ID, err)
	}

	customLog.Debugf("Gateway: %s on '%s' (db %s) -> %d in %dms", env.Action, env.Table, key.DatabaseID, result.Status, elapsed)
	return result, nil
}

func (g *Gateway) run(ctx context.Context, table *domain.Table, env Envelope) (*Result, error) {
	switch env.Action {
	case ActionSelect:
		var (
			rows []domain.Row
			err  error
		)
		if env.Filters != nil {
			rows, err = g.repo.FilterRows(ctx, table.ID, env.Filters)
		} else {
			rows, err = g.repo.ListRows(ctx, table.ID, 0, core.SelectPageSize)
		}
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, core.FlattenRow(row.ID, row.Data, row.CreatedAt, row.UpdatedAt))
		}
		return &Result{Status: http.StatusOK, Data: out}, nil

	case ActionInsert:
		if !env.HasData {
			return nil, fmt.Errorf("%w: missing 'data' object for insert", ErrMalformedRequest)
		}
		row, err := g.repo.CreateRow(ctx, table.ID, env.Data)
		if err != nil {
			return nil, err
		}
		return &Result{Status: http.StatusCreated, Data: core.FlattenRow(row.ID, row.Data, nil, nil)}, nil

	case ActionUpdate:
		if env.RowID == "" || !env.HasData {
			return nil, fmt.Errorf("%w: missing 'row_id' and 'data' for update", ErrMalformedRequest)
		}
		row, err := g.repo.UpdateRow(ctx, table.ID, env.RowID, env.Data)
		if err != nil {
			return nil, err
		}
		return &Result{Status: http.StatusOK, Data: core.FlattenRow(row.ID, row.Data, nil, nil)}, nil

	case ActionDelete:
		if env.RowID == "" {
			return nil, fmt.Errorf("%w: missing 'row_id' for delete", ErrMalformedRequest)
		}
		if err := g.repo.DeleteRow(ctx, table.ID, env.RowID); err != nil {
			return nil, err
		}
		return &Result{Status: http.StatusOK, Data: map[string]bool{"deleted": true}}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action \"%s\". Use: select, insert, update, delete", ErrMalformedRequest, env.Action)
	}
}
