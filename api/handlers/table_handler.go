// api/handlers/table_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

// TableHandler holds dependencies for table management handlers.
type TableHandler struct {
	Repo *storage.Repository
	Cfg  *config.Config
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(repo *storage.Repository, cfg *config.Config) *TableHandler {
	return &TableHandler{
		Repo: repo,
		Cfg:  cfg,
	}
}

// ListTables returns the tables of a database, oldest first.
func (h *TableHandler) ListTables(c *gin.Context) {
	ctx := c.Request.Context()
	db, err := ownedDatabase(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	tables, err := h.Repo.ListTables(ctx, db.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// CreateTable creates a table with an optional initial column set.
func (h *TableHandler) CreateTable(c *gin.Context) {
	ctx := c.Request.Context()
	db, err := ownedDatabase(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.CreateTableRequest
	if !bindJSON(c, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if !core.IsValidIdentifier(name) {
		_ = c.Error(fmt.Errorf("%w: invalid table name '%s'. Use only alphanumeric characters and underscores, max length 64", core.ErrInvalidInput, req.Name))
		return
	}

	columns, err := columnInputs(req.Columns)
	if err != nil {
		_ = c.Error(err)
		return
	}

	table, err := h.Repo.CreateTable(ctx, db.ID, name, columns)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// columnInputs validates column definitions and keeps their order.
func columnInputs(defs []models.ColumnDefinition) ([]storage.ColumnInput, error) {
	columns := make([]storage.ColumnInput, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, col := range defs {
		name := strings.TrimSpace(col.Name)
		if err := core.CheckColumnName(name, seen); err != nil {
			return nil, err
		}

		dataType, ok := core.NormalizeColumnType(col.DataType)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported data type '%s' for column '%s'", core.ErrInvalidInput, col.DataType, col.Name)
		}
		columns = append(columns, storage.ColumnInput{
			Name:         name,
			DataType:     dataType,
			IsNullable:   col.IsNullable == nil || *col.IsNullable,
			DefaultValue: col.DefaultValue,
		})
	}
	return columns, nil
}

// GetTable returns one table.
func (h *TableHandler) GetTable(c *gin.Context) {
	table, err := ownedTable(c.Request.Context(), h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// DeleteTable removes a table with its columns and rows.
func (h *TableHandler) DeleteTable(c *gin.Context) {
	ctx := c.Request.Context()
	table, err := ownedTable(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Repo.DeleteTable(ctx, table.ID); err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Handler: Deleted table '%s' (%s)", table.Name, table.ID)
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// ListColumns returns a table's columns by position.
func (h *TableHandler) ListColumns(c *gin.Context) {
	ctx := c.Request.Context()
	table, err := ownedTable(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	columns, err := h.Repo.ListColumns(ctx, table.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, columns)
}
