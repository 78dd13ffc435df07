// api/handlers/database_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/storage" // For store operations
)

// DatabaseHandler holds dependencies for database management handlers.
type DatabaseHandler struct {
	Repo *storage.Repository
	Cfg  *config.Config
}

// NewDatabaseHandler creates a new DatabaseHandler.
func NewDatabaseHandler(repo *storage.Repository, cfg *config.Config) *DatabaseHandler {
	return &DatabaseHandler{
		Repo: repo,
		Cfg:  cfg,
	}
}

// ListDatabases returns the user's databases, newest first.
func (h *DatabaseHandler) ListDatabases(c *gin.Context) {
	dbs, err := h.Repo.ListDatabases(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dbs)
}

// GetDatabase returns one database.
func (h *DatabaseHandler) GetDatabase(c *gin.Context) {
	db, err := ownedDatabase(c.Request.Context(), h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, db)
}

// CreateDatabase creates a database together with its "Default" api key.
func (h *DatabaseHandler) CreateDatabase(c *gin.Context) {
	userId := currentUserID(c)

	var req models.CreateDatabaseRequest
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		_ = c.Error(fmt.Errorf("%w: name required", core.ErrInvalidInput))
		return
	}

	db, key, err := h.Repo.CreateDatabaseWithKey(c.Request.Context(), storage.DatabaseInput{
		UserID:      userId,
		Name:        name,
		Description: req.Description,
		Status:      domain.DatabaseStatusActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Handler: Successfully created database '%s' (%s) for UserID %s", db.Name, db.ID, userId)
	c.JSON(http.StatusCreated, gin.H{"database": db, "apiKey": key})
}

// DeleteDatabase removes a database and everything it owns.
func (h *DatabaseHandler) DeleteDatabase(c *gin.Context) {
	ctx := c.Request.Context()
	db, err := ownedDatabase(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Repo.DeleteDatabase(ctx, db.ID); err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Handler: Deleted database '%s' (%s)", db.Name, db.ID)
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// GetStats returns the dashboard counters for the user.
func (h *DatabaseHandler) GetStats(c *gin.Context) {
	stats, err := h.Repo.GetDatabaseStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
