package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

type createdDatabase struct {
	Database domain.Database `json:"database"`
	APIKey   domain.APIKey   `json:"apiKey"`
}

func createDatabase(t *testing.T, baseURL, token, name string) createdDatabase {
	t.Helper()
	var out createdDatabase
	res := doJSON(t, http.MethodPost, baseURL+"/api/v1/databases", token, models.CreateDatabaseRequest{Name: name}, &out)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return out
}

func createTable(t *testing.T, baseURL, token, databaseId string, req models.CreateTableRequest) domain.Table {
	t.Helper()
	var table domain.Table
	res := doJSON(t, http.MethodPost, baseURL+"/api/v1/databases/"+databaseId+"/tables", token, req, &table)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return table
}

func TestDatabaseAndTableEndpoints(t *testing.T) {
	server, repo := setupTestServer(t)
	token := registerUser(t, server, "owner@example.com")
	intruder := registerUser(t, server, "intruder@example.com")

	created := createDatabase(t, server.URL, token, "  shop  ")
	assert.Equal(t, "shop", created.Database.Name)
	assert.Equal(t, "active", created.Database.Status)
	assert.Equal(t, "Default", created.APIKey.Name)
	assert.True(t, strings.HasPrefix(created.APIKey.KeyValue, "neb_"))
	dbID := created.Database.ID

	t.Run("Ownership Is Enforced", func(t *testing.T) {
		res := doJSON(t, http.MethodGet, server.URL+"/api/v1/databases/"+dbID, intruder, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		res = doJSON(t, http.MethodDelete, server.URL+"/api/v1/databases/"+dbID, intruder, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("Create Table Validation", func(t *testing.T) {
		testCases := []struct {
			name string
			req  models.CreateTableRequest
			want int
		}{
			{"invalid table name", models.CreateTableRequest{Name: "bad name"}, http.StatusBadRequest},
			{"reserved column", models.CreateTableRequest{Name: "t1", Columns: []models.ColumnDefinition{{Name: "id"}}}, http.StatusBadRequest},
			{"duplicate column", models.CreateTableRequest{Name: "t2", Columns: []models.ColumnDefinition{{Name: "a"}, {Name: "A"}}}, http.StatusBadRequest},
			{"unknown type", models.CreateTableRequest{Name: "t3", Columns: []models.ColumnDefinition{{Name: "a", DataType: "geometry"}}}, http.StatusBadRequest},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				res := doJSON(t, http.MethodPost, server.URL+"/api/v1/databases/"+dbID+"/tables", token, tc.req, nil)
				assert.Equal(t, tc.want, res.StatusCode)
			})
		}
	})

	notNull := false
	table := createTable(t, server.URL, token, dbID, models.CreateTableRequest{
		Name: "products",
		Columns: []models.ColumnDefinition{
			{Name: "title", DataType: "TEXT", IsNullable: &notNull},
			{Name: "price", DataType: "real"},
		},
	})

	t.Run("Duplicate Table Name", func(t *testing.T) {
		res := doJSON(t, http.MethodPost, server.URL+"/api/v1/databases/"+dbID+"/tables", token, models.CreateTableRequest{Name: "products"}, nil)
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("Columns", func(t *testing.T) {
		var cols []domain.Column
		res := doJSON(t, http.MethodGet, server.URL+"/api/v1/tables/"+table.ID+"/columns", token, nil, &cols)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Len(t, cols, 2)
		assert.Equal(t, "text", cols[0].DataType)
		assert.False(t, cols[0].IsNullable)
		assert.Equal(t, "number", cols[1].DataType)
		assert.True(t, cols[1].IsNullable)

		res = doJSON(t, http.MethodGet, server.URL+"/api/v1/tables/"+table.ID+"/columns", intruder, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("Row CRUD And Paging", func(t *testing.T) {
		var ids []string
		for _, title := range []string{"Lamp", "Desk", "Chair"} {
			var row domain.Row
			res := doJSON(t, http.MethodPost, server.URL+"/api/v1/tables/"+table.ID+"/rows", token,
				map[string]any{"data": map[string]any{"title": title, "stock": 3}}, &row)
			require.Equal(t, http.StatusCreated, res.StatusCode)
			ids = append(ids, row.ID)
		}

		var page []domain.Row
		res := doJSON(t, http.MethodGet, server.URL+"/api/v1/tables/"+table.ID+"/rows?page=1&limit=1", token, nil, &page)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Len(t, page, 1)
		assert.Equal(t, ids[1], page[0].ID)

		res = doJSON(t, http.MethodGet, server.URL+"/api/v1/tables/"+table.ID+"/rows?limit=abc", token, nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		var updated domain.Row
		res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/rows/"+ids[0], token, map[string]any{"data": map[string]any{"stock": 0}}, &updated)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "Lamp", updated.Data["title"])
		assert.Equal(t, json.Number("0"), updated.Data["stock"])

		res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/rows/"+ids[0], intruder, map[string]any{"data": map[string]any{"stock": 9}}, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res = doJSON(t, http.MethodDelete, server.URL+"/api/v1/rows/"+ids[2], token, nil, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		res = doJSON(t, http.MethodGet, server.URL+"/api/v1/rows/"+ids[2], token, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("Stats", func(t *testing.T) {
		var stats domain.Stats
		res := doJSON(t, http.MethodGet, server.URL+"/api/v1/stats", token, nil, &stats)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, domain.Stats{Databases: 1, APIKeys: 1, Requests: 0}, stats)
	})

	t.Run("Delete Database Cascades", func(t *testing.T) {
		res := doJSON(t, http.MethodDelete, server.URL+"/api/v1/databases/"+dbID, token, nil, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doJSON(t, http.MethodGet, server.URL+"/api/v1/tables/"+table.ID, token, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		_, err := repo.GetAPIKey(context.Background(), created.APIKey.ID)
		assert.ErrorIs(t, err, storage.ErrAPIKeyNotFound)
	})
}

func TestAPIKeyEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	token := registerUser(t, server, "keys@example.com")
	intruder := registerUser(t, server, "other@example.com")
	created := createDatabase(t, server.URL, token, "main")

	var extra domain.APIKey
	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/databases/"+created.Database.ID+"/api-keys", token, models.CreateAPIKeyRequest{Name: "ci"}, &extra)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var keys []domain.APIKeyView
	res = doJSON(t, http.MethodGet, server.URL+"/api/v1/api-keys", token, nil, &keys)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, keys, 2)
	assert.Equal(t, extra.ID, keys[0].ID)
	require.NotNil(t, keys[0].DatabaseName)
	assert.Equal(t, "main", *keys[0].DatabaseName)

	var regenerated domain.APIKey
	res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/api-keys/"+extra.ID+"/regenerate", token, nil, &regenerated)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEqual(t, extra.KeyValue, regenerated.KeyValue)

	res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/api-keys/"+extra.ID+"/regenerate", intruder, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	inactive := false
	var toggled domain.APIKey
	res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/api-keys/"+extra.ID, token, models.UpdateAPIKeyRequest{IsActive: &inactive}, &toggled)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, toggled.IsActive)

	res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/api-keys/"+extra.ID, token, models.UpdateAPIKeyRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = doJSON(t, http.MethodDelete, server.URL+"/api/v1/api-keys/"+extra.ID, token, nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res = doJSON(t, http.MethodDelete, server.URL+"/api/v1/api-keys/"+extra.ID, token, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestExportImportEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	token := registerUser(t, server, "backup@example.com")
	created := createDatabase(t, server.URL, token, "crm")
	table := createTable(t, server.URL, token, created.Database.ID, models.CreateTableRequest{
		Name:    "leads",
		Columns: []models.ColumnDefinition{{Name: "email", DataType: "text"}},
	})
	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/tables/"+table.ID+"/rows", token, map[string]any{"data": map[string]any{"email": "a@x.io"}}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/admin/export?format=yaml", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	yamlRes, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(yamlRes.Body)
	yamlRes.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, yamlRes.StatusCode)
	assert.Contains(t, yamlRes.Header.Get("Content-Type"), "yaml")
	assert.Contains(t, string(body), "email: a@x.io")

	other := registerUser(t, server, "restore@example.com")
	req, err = http.NewRequest(http.MethodPost, server.URL+"/api/v1/admin/import", strings.NewReader(string(body)))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+other)
	req.Header.Set("Content-Type", "application/yaml")
	importRes, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	importRes.Body.Close()
	require.Equal(t, http.StatusOK, importRes.StatusCode)

	var dbs []domain.Database
	res = doJSON(t, http.MethodGet, server.URL+"/api/v1/databases", other, nil, &dbs)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, dbs, 1)
	assert.Equal(t, "crm", dbs[0].Name)
	assert.NotEqual(t, created.Database.ID, dbs[0].ID)

	res = doJSON(t, http.MethodPost, server.URL+"/api/v1/admin/import", other, map[string]any{"not": "a list"}, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	shadowing := []map[string]any{{"name": "app", "tables": []map[string]any{{
		"name":    "people",
		"columns": []map[string]any{{"name": "_created_at"}},
	}}}}
	res = doJSON(t, http.MethodPost, server.URL+"/api/v1/admin/import", other, shadowing, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "reserved column names are rejected as on table creation")

	res = doJSON(t, http.MethodGet, server.URL+"/api/v1/databases", other, nil, &dbs)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, dbs, 1)
}
