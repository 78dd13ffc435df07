package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

func newRepo(t *testing.T) *storage.Repository {
	t.Helper()
	backend, err := docstore.OpenSQLite(filepath.Join(t.TempDir(), "maindb.sqlite"))
	require.NoError(t, err)
	store := docstore.New(backend)
	t.Cleanup(func() { store.Close() })
	return storage.NewRepository(store)
}

func newUser(t *testing.T, repo *storage.Repository) string {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), "ada@example.com", "hash", "Ada")
	require.NoError(t, err)
	return user.ID
}

func seedSource(t *testing.T, repo *storage.Repository, userId string) {
	t.Helper()
	ctx := context.Background()

	def := "unknown"
	shop, err := repo.CreateDatabase(ctx, storage.DatabaseInput{UserID: userId, Name: "shop", Description: "store front"})
	require.NoError(t, err)
	products, err := repo.CreateTable(ctx, shop.ID, "products", []storage.ColumnInput{
		{Name: "title", DataType: "text", IsNullable: false},
		{Name: "price", DataType: "number", IsNullable: true, DefaultValue: &def},
	})
	require.NoError(t, err)
	_, err = repo.CreateRow(ctx, products.ID, domain.RowData{"title": "Lamp", "price": json.Number("19.5")})
	require.NoError(t, err)
	_, err = repo.CreateRow(ctx, products.ID, domain.RowData{"title": "Desk", "tags": []any{"oak"}, "extra": true})
	require.NoError(t, err)
	_, err = repo.CreateTable(ctx, shop.ID, "orders", nil)
	require.NoError(t, err)

	_, err = repo.CreateDatabase(ctx, storage.DatabaseInput{UserID: userId, Name: "blog"})
	require.NoError(t, err)
}

// shape strips ids and timestamps so two exports can be compared by content.
func shape(data Dataset) Dataset {
	out := make(Dataset, 0, len(data))
	for _, db := range data {
		db.ID, db.CreatedAt = "", nil
		tables := make([]TableExport, 0, len(db.Tables))
		for _, table := range db.Tables {
			table.ID = ""
			rows := make([]RowExport, 0, len(table.Rows))
			for _, row := range table.Rows {
				rows = append(rows, RowExport{Data: row.Data})
			}
			table.Rows = rows
			tables = append(tables, table)
		}
		db.Tables = tables
		out = append(out, db)
	}
	return out
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newRepo(t)
	srcUser := newUser(t, src)
	seedSource(t, src, srcUser)

	exported, err := Export(ctx, src, srcUser)
	require.NoError(t, err)
	require.Len(t, exported, 2)

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, exported, format))
			decoded, err := Decode(&buf, format)
			require.NoError(t, err)

			dst := newRepo(t)
			dstUser := newUser(t, dst)
			summary, err := Import(ctx, dst, dstUser, decoded)
			require.NoError(t, err)
			assert.Equal(t, &Summary{Databases: 2, Tables: 2, Columns: 2, Rows: 2}, summary)

			reimported, err := Export(ctx, dst, dstUser)
			require.NoError(t, err)
			require.Len(t, reimported, 2)

			// Fresh ids are minted.
			srcIDs := map[string]bool{}
			for _, db := range exported {
				srcIDs[db.ID] = true
			}
			for _, db := range reimported {
				assert.False(t, srcIDs[db.ID])
			}

			if format == FormatJSON {
				assert.Equal(t, shape(exported), shape(reimported))
				return
			}
			// YAML turns numbers into native values; compare rendered JSON instead.
			want, err := json.Marshal(shape(exported))
			require.NoError(t, err)
			got, err := json.Marshal(shape(reimported))
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestDecodeAcceptsBareRows(t *testing.T) {
	input := `[{"name":"crm","tables":[{"name":"leads",
		"columns":[{"name":"email","dataType":"geometry"},{"name":"score","dataType":"INT","isNullable":false}],
		"rows":[{"data":{"email":"a@x.io"}},{"email":"b@x.io","score":7}]}]}]`

	data, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)
	rows := data[0].Tables[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, domain.RowData{"email": "a@x.io"}, rows[0].Data)
	assert.Equal(t, domain.RowData{"email": "b@x.io", "score": json.Number("7")}, rows[1].Data)

	ctx := context.Background()
	repo := newRepo(t)
	userId := newUser(t, repo)
	_, err = Import(ctx, repo, userId, data)
	require.NoError(t, err)

	dbs, err := repo.ListDatabases(ctx, userId)
	require.NoError(t, err)
	tables, err := repo.ListTables(ctx, dbs[0].ID)
	require.NoError(t, err)
	cols, err := repo.ListColumns(ctx, tables[0].ID)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "text", cols[0].DataType, "unknown types import as text")
	assert.True(t, cols[0].IsNullable)
	assert.Equal(t, "integer", cols[1].DataType)
	assert.False(t, cols[1].IsNullable)
}

func TestDecodeYAMLBareRows(t *testing.T) {
	input := `
- name: crm
  tables:
    - name: leads
      rows:
        - email: a@x.io
        - data:
            email: b@x.io
`
	data, err := Decode(strings.NewReader(input), FormatYAML)
	require.NoError(t, err)
	rows := data[0].Tables[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "a@x.io", rows[0].Data["email"])
	assert.Equal(t, "b@x.io", rows[1].Data["email"])
}

func TestImportRejectsInvalidDatasets(t *testing.T) {
	repo := newRepo(t)
	userId := newUser(t, repo)

	testCases := []struct {
		name string
		data Dataset
	}{
		{"database without name", Dataset{{Name: " "}}},
		{"table without name", Dataset{{Name: "db", Tables: []TableExport{{Name: ""}}}}},
		{"duplicate tables", Dataset{{Name: "db", Tables: []TableExport{{Name: "a"}, {Name: "A"}}}}},
		{"invalid table name", Dataset{{Name: "db", Tables: []TableExport{{Name: "my table"}}}}},
		{"reserved column", Dataset{{Name: "db", Tables: []TableExport{{Name: "t", Columns: []ColumnExport{{Name: "id"}}}}}}},
		{"reserved timestamp column", Dataset{{Name: "db", Tables: []TableExport{{Name: "t", Columns: []ColumnExport{{Name: "_Created_At"}}}}}}},
		{"duplicate columns", Dataset{{Name: "db", Tables: []TableExport{{Name: "t", Columns: []ColumnExport{{Name: "a"}, {Name: "A"}}}}}}},
		{"column without name", Dataset{{Name: "db", Tables: []TableExport{{Name: "t", Columns: []ColumnExport{{Name: " "}}}}}}},
		{"bad table after good database", Dataset{{Name: "ok"}, {Name: "db", Tables: []TableExport{{Name: "t", Columns: []ColumnExport{{Name: "bad-name"}}}}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(context.Background(), repo, userId, tc.data)
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}

	dbs, err := repo.ListDatabases(context.Background(), userId)
	require.NoError(t, err)
	assert.Empty(t, dbs, "validation happens before anything is written")
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]string{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidDataset)
}
