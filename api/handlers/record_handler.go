// api/handlers/record_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

// RecordHandler holds dependencies for row CRUD handlers.
type RecordHandler struct {
	Repo *storage.Repository
	Cfg  *config.Config
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(repo *storage.Repository, cfg *config.Config) *RecordHandler {
	return &RecordHandler{
		Repo: repo,
		Cfg:  cfg,
	}
}

// ListRows returns one page of a table's rows, oldest first.
// Query: page (zero-based), limit.
func (h *RecordHandler) ListRows(c *gin.Context) {
	ctx := c.Request.Context()
	table, err := ownedTable(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	opts, err := core.ParsePageOptions(c.Request.URL.Query(), h.Cfg.RowsDefaultLimit)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}

	rows, err := h.Repo.ListRows(ctx, table.ID, opts.Offset(), opts.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateRow inserts a row; a missing data object stores an empty row.
func (h *RecordHandler) CreateRow(c *gin.Context) {
	ctx := c.Request.Context()
	table, err := ownedTable(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.RowRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Data == nil {
		req.Data = domain.RowData{}
	}

	row, err := h.Repo.CreateRow(ctx, table.ID, req.Data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// GetRow returns one row.
func (h *RecordHandler) GetRow(c *gin.Context) {
	row, err := ownedRow(c.Request.Context(), h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// UpdateRow shallow-merges the data object into the row.
func (h *RecordHandler) UpdateRow(c *gin.Context) {
	ctx := c.Request.Context()
	row, err := ownedRow(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.RowRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.Repo.UpdateRow(ctx, row.TableID, row.ID, req.Data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRow removes one row.
func (h *RecordHandler) DeleteRow(c *gin.Context) {
	ctx := c.Request.Context()
	row, err := ownedRow(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Repo.DeleteRow(ctx, row.TableID, row.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
