// internal/backup/backup.go
package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/logger"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// ErrInvalidDataset is returned when an import document is unusable.
var ErrInvalidDataset = errors.New("invalid import data")

// Dataset is the full export of one user's databases.
type Dataset []DatabaseExport

// DatabaseExport is a database with its nested tables.
type DatabaseExport struct {
	ID          string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Status      string        `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Tables      []TableExport `json:"tables" yaml:"tables"`
}

// TableExport is a table with its columns and rows.
type TableExport struct {
	ID      string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string         `json:"name" yaml:"name"`
	Columns []ColumnExport `json:"columns" yaml:"columns"`
	Rows    []RowExport    `json:"rows" yaml:"rows"`
}

// ColumnExport is column metadata. A missing isNullable means nullable.
type ColumnExport struct {
	Name         string  `json:"name" yaml:"name"`
	DataType     string  `json:"dataType" yaml:"dataType"`
	IsNullable   *bool   `json:"isNullable,omitempty" yaml:"isNullable,omitempty"`
	DefaultValue *string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Position     int     `json:"position" yaml:"position"`
}

// RowExport is one row. On import it may also be a bare data object.
type RowExport struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	Data      domain.RowData `json:"data" yaml:"data"`
	CreatedAt *time.Time     `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Summary counts what an import created.
type Summary struct {
	Databases int `json:"databases"`
	Tables    int `json:"tables"`
	Columns   int `json:"columns"`
	Rows      int `json:"rows"`
}

// Source reads the entities an export walks.
type Source interface {
	ListDatabases(ctx context.Context, userId string) ([]domain.Database, error)
	ListTables(ctx context.Context, databaseId string) ([]domain.Table, error)
	ListColumns(ctx context.Context, tableId string) ([]domain.Column, error)
	ListRows(ctx context.Context, tableId string, offset, limit int) ([]domain.Row, error)
}

// Sink creates the entities an import produces.
type Sink interface {
	CreateDatabase(ctx context.Context, in storage.DatabaseInput) (*domain.Database, error)
	CreateTable(ctx context.Context, databaseId, name string, columns []storage.ColumnInput) (*domain.Table, error)
	CreateRow(ctx context.Context, tableId string, data domain.RowData) (*domain.Row, error)
}

// Export collects every database of userId with its tables, columns and rows.
func Export(ctx context.Context, src Source, userId string) (Dataset, error) {
	dbs, err := src.ListDatabases(ctx, userId)
	if err != nil {
		return nil, err
	}

	out := make(Dataset, 0, len(dbs))
	for _, db := range dbs {
		createdAt := db.CreatedAt
		dbExport := DatabaseExport{
			ID:          db.ID,
			Name:        db.Name,
			Description: db.Description,
			Status:      db.Status,
			CreatedAt:   &createdAt,
			Tables:      make([]TableExport, 0),
		}

		tables, err := src.ListTables(ctx, db.ID)
		if err != nil {
			return nil, err
		}
		for _, table := range tables {
			tableExport, err := exportTable(ctx, src, table)
			if err != nil {
				return nil, err
			}
			dbExport.Tables = append(dbExport.Tables, tableExport)
		}
		out = append(out, dbExport)
	}
	return out, nil
}

func exportTable(ctx context.Context, src Source, table domain.Table) (TableExport, error) {
	columns, err := src.ListColumns(ctx, table.ID)
	if err != nil {
		return TableExport{}, err
	}
	rows, err := src.ListRows(ctx, table.ID, 0, 0)
	if err != nil {
		return TableExport{}, err
	}

	te := TableExport{
		ID:      table.ID,
		Name:    table.Name,
		Columns: make([]ColumnExport, 0, len(columns)),
		Rows:    make([]RowExport, 0, len(rows)),
	}
	for _, c := range columns {
		nullable := c.IsNullable
		te.Columns = append(te.Columns, ColumnExport{
			Name:         c.Name,
			DataType:     c.DataType,
			IsNullable:   &nullable,
			DefaultValue: c.DefaultValue,
			Position:     c.Position,
		})
	}
	for _, row := range rows {
		createdAt, updatedAt := row.CreatedAt, row.UpdatedAt
		te.Rows = append(te.Rows, RowExport{ID: row.ID, Data: row.Data, CreatedAt: &createdAt, UpdatedAt: &updatedAt})
	}
	return te, nil
}

// Import recreates data under userId with fresh ids; imported ids are ignored.
// Entities are written one by one, so a failure leaves what was already created.
// Databases are listed newest first, so they are created from the end of data.
func Import(ctx context.Context, sink Sink, userId string, data Dataset) (*Summary, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i := len(data) - 1; i >= 0; i-- {
		dbData := data[i]
		db, err := sink.CreateDatabase(ctx, storage.DatabaseInput{
			UserID:      userId,
			Name:        strings.TrimSpace(dbData.Name),
			Description: dbData.Description,
			Status:      dbData.Status,
		})
		if err != nil {
			return summary, err
		}
		summary.Databases++

		for _, tableData := range dbData.Tables {
			columns := importColumns(tableData.Columns)
			table, err := sink.CreateTable(ctx, db.ID, strings.TrimSpace(tableData.Name), columns)
			if err != nil {
				return summary, err
			}
			summary.Tables++
			summary.Columns += len(columns)

			for _, row := range tableData.Rows {
				if _, err := sink.CreateRow(ctx, table.ID, row.Data); err != nil {
					return summary, err
				}
				summary.Rows++
			}
		}
	}

	customLog.Printf("Backup: Imported %d database(s), %d table(s), %d row(s) for user %s",
		summary.Databases, summary.Tables, summary.Rows, userId)
	return summary, nil
}

// importColumns keeps the listed order and maps unknown types to text.
// Names were checked by validate.
func importColumns(columns []ColumnExport) []storage.ColumnInput {
	out := make([]storage.ColumnInput, 0, len(columns))
	for _, c := range columns {
		name := strings.TrimSpace(c.Name)
		dataType, ok := core.NormalizeColumnType(c.DataType)
		if !ok {
			dataType = core.DefaultColumnType
		}
		out = append(out, storage.ColumnInput{
			Name:         name,
			DataType:     dataType,
			IsNullable:   c.IsNullable == nil || *c.IsNullable,
			DefaultValue: c.DefaultValue,
		})
	}
	return out
}

func validate(data Dataset) error {
	for i, db := range data {
		if strings.TrimSpace(db.Name) == "" {
			return fmt.Errorf("%w: database %d has no name", ErrInvalidDataset, i)
		}
		seen := make(map[string]bool, len(db.Tables))
		for j, table := range db.Tables {
			name := strings.TrimSpace(table.Name)
			if name == "" {
				return fmt.Errorf("%w: table %d of database '%s' has no name", ErrInvalidDataset, j, db.Name)
			}
			if !core.IsValidIdentifier(name) {
				return fmt.Errorf("%w: invalid table name '%s' in database '%s'", ErrInvalidDataset, table.Name, db.Name)
			}
			if seen[strings.ToLower(name)] {
				return fmt.Errorf("%w: duplicate table '%s' in database '%s'", ErrInvalidDataset, table.Name, db.Name)
			}
			seen[strings.ToLower(name)] = true

			columns := make(map[string]bool, len(table.Columns))
			for _, col := range table.Columns {
				if err := core.CheckColumnName(strings.TrimSpace(col.Name), columns); err != nil {
					return fmt.Errorf("%w: table '%s': %v", ErrInvalidDataset, table.Name, err)
				}
			}
		}
	}
	return nil
}
