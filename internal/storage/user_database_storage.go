// internal/storage/user_database_storage.go
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/domain"
)

// ColumnInput describes one column of a table being created.
type ColumnInput struct {
	Name         string
	DataType     string
	IsNullable   bool
	DefaultValue *string
}

// --- Table Operations ---

// CreateTable stores a table and its columns in one write. Column positions
// follow the order of columns. Table names are unique within a database.
func (r *Repository) CreateTable(ctx context.Context, databaseId, name string, columns []ColumnInput) (*domain.Table, error) {
	var created domain.Table
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		if !hasDatabase(s, databaseId) {
			return ErrDatabaseNotFound
		}
		for _, t := range s.Tables {
			if t.DatabaseID == databaseId && strings.EqualFold(t.Name, name) {
				return fmt.Errorf("%w: '%s'", ErrTableExists, name)
			}
		}
		now := r.now()
		created = domain.Table{ID: r.newID(), DatabaseID: databaseId, Name: name, CreatedAt: now, UpdatedAt: now}
		s.Tables = append(s.Tables, created)
		for i, c := range columns {
			s.Columns = append(s.Columns, domain.Column{
				ID:           r.newID(),
				TableID:      created.ID,
				Name:         c.Name,
				DataType:     c.DataType,
				IsNullable:   c.IsNullable,
				DefaultValue: c.DefaultValue,
				Position:     i,
				CreatedAt:    now,
			})
		}
		return nil
	})
	if err != nil {
		customLog.Warnf("Storage: Failed to create table '%s' in database %s: %v", name, databaseId, err)
		return nil, err
	}
	customLog.Printf("Storage: Created table '%s' (%s) with %d column(s)", name, created.ID, len(columns))
	return &created, nil
}

// ListTables returns the tables of a database, oldest first.
func (r *Repository) ListTables(ctx context.Context, databaseId string) ([]domain.Table, error) {
	tables := make([]domain.Table, 0)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, t := range s.Tables {
			if t.DatabaseID == databaseId {
				tables = append(tables, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	oldestFirst(tables, func(t domain.Table) time.Time { return t.CreatedAt })
	return tables, nil
}

// GetTable retrieves a table by id.
func (r *Repository) GetTable(ctx context.Context, tableId string) (*domain.Table, error) {
	var found *domain.Table
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Tables {
			if s.Tables[i].ID == tableId {
				t := s.Tables[i]
				found = &t
				return nil
			}
		}
		return ErrTableNotFound
	})
	return found, err
}

// GetTableByName resolves a table name within one database only.
func (r *Repository) GetTableByName(ctx context.Context, databaseId, name string) (*domain.Table, error) {
	var found *domain.Table
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Tables {
			if s.Tables[i].DatabaseID == databaseId && s.Tables[i].Name == name {
				t := s.Tables[i]
				found = &t
				return nil
			}
		}
		return fmt.Errorf("%w: '%s'", ErrTableNotFound, name)
	})
	return found, err
}

// DeleteTable removes a table with its columns and rows.
func (r *Repository) DeleteTable(ctx context.Context, tableId string) error {
	return r.store.Update(ctx, func(s *docstore.Snapshot) error {
		before := len(s.Tables)
		s.Tables = filterOut(s.Tables, func(t domain.Table) bool { return t.ID == tableId })
		if len(s.Tables) == before {
			return ErrTableNotFound
		}
		s.Columns = filterOut(s.Columns, func(c domain.Column) bool { return c.TableID == tableId })
		s.Rows = filterOut(s.Rows, func(row domain.Row) bool { return row.TableID == tableId })
		return nil
	})
}

// --- Column Operations ---

// ListColumns returns the columns of a table ordered by position.
func (r *Repository) ListColumns(ctx context.Context, tableId string) ([]domain.Column, error) {
	columns := make([]domain.Column, 0)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, c := range s.Columns {
			if c.TableID == tableId {
				columns = append(columns, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Position < columns[j].Position })
	return columns, nil
}

// --- Row Operations ---

// CreateRow stores a row. data is copied; it may hold keys that no column declares.
func (r *Repository) CreateRow(ctx context.Context, tableId string, data domain.RowData) (*domain.Row, error) {
	var created domain.Row
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		if !hasTable(s, tableId) {
			return fmt.Errorf("%w: %s", ErrTableNotFound, tableId)
		}
		now := r.now()
		if data == nil {
			data = domain.RowData{}
		}
		created = domain.Row{ID: r.newID(), TableID: tableId, Data: data.Clone(), CreatedAt: now, UpdatedAt: now}
		s.Rows = append(s.Rows, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListRows returns rows of a table oldest first, sliced by offset and limit.
// limit <= 0 returns every row from offset on.
func (r *Repository) ListRows(ctx context.Context, tableId string, offset, limit int) ([]domain.Row, error) {
	rows, err := r.tableRows(ctx, tableId)
	if err != nil {
		return nil, err
	}
	return page(rows, offset, limit), nil
}

// FilterRows returns the rows whose data matches every filter, oldest first,
// capped at core.MaxFilterResults.
func (r *Repository) FilterRows(ctx context.Context, tableId string, filters map[string]any) ([]domain.Row, error) {
	rows, err := r.tableRows(ctx, tableId)
	if err != nil {
		return nil, err
	}
	return core.FilterRows(rows, core.NewPredicate(filters)), nil
}

func (r *Repository) tableRows(ctx context.Context, tableId string) ([]domain.Row, error) {
	rows := make([]domain.Row, 0)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, row := range s.Rows {
			if row.TableID == tableId {
				row.Data = row.Data.Clone()
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	oldestFirst(rows, func(row domain.Row) time.Time { return row.CreatedAt })
	return rows, nil
}

// GetRow retrieves a row by id.
func (r *Repository) GetRow(ctx context.Context, rowId string) (*domain.Row, error) {
	var found *domain.Row
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Rows {
			if s.Rows[i].ID == rowId {
				row := s.Rows[i]
				row.Data = row.Data.Clone()
				found = &row
				return nil
			}
		}
		return ErrRowNotFound
	})
	return found, err
}

// UpdateRow shallow-merges patch into the row's data and refreshes its
// updated timestamp. An empty tableId matches a row in any table.
func (r *Repository) UpdateRow(ctx context.Context, tableId, rowId string, patch domain.RowData) (*domain.Row, error) {
	var updated domain.Row
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Rows {
			row := &s.Rows[i]
			if row.ID != rowId || (tableId != "" && row.TableID != tableId) {
				continue
			}
			row.Data = row.Data.Merge(patch)
			row.UpdatedAt = r.now()
			updated = *row
			updated.Data = row.Data.Clone()
			return nil
		}
		return fmt.Errorf("%w: '%s'", ErrRowNotFound, rowId)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRow removes the row if it exists; a missing row is not an error.
// An empty tableId matches a row in any table.
func (r *Repository) DeleteRow(ctx context.Context, tableId, rowId string) error {
	return r.store.Update(ctx, func(s *docstore.Snapshot) error {
		s.Rows = filterOut(s.Rows, func(row domain.Row) bool {
			return row.ID == rowId && (tableId == "" || row.TableID == tableId)
		})
		return nil
	})
}

func hasDatabase(s *docstore.Snapshot, databaseId string) bool {
	for _, d := range s.Databases {
		if d.ID == databaseId {
			return true
		}
	}
	return false
}

func hasTable(s *docstore.Snapshot, tableId string) bool {
	for _, t := range s.Tables {
		if t.ID == tableId {
			return true
		}
	}
	return false
}
