// api/handlers/api_key_handler.go
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

// APIKeyHandler holds dependencies for api key management handlers.
type APIKeyHandler struct {
	Repo *storage.Repository
	Cfg  *config.Config
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(repo *storage.Repository, cfg *config.Config) *APIKeyHandler {
	return &APIKeyHandler{
		Repo: repo,
		Cfg:  cfg,
	}
}

// ListAPIKeys returns the user's keys with their database names, newest first.
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.Repo.ListAPIKeys(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, keys)
}

// CreateAPIKey mints an additional key for a database.
func (h *APIKeyHandler) CreateAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	userId := currentUserID(c)
	db, err := ownedDatabase(ctx, h.Repo, userId, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.CreateAPIKeyRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	key, err := h.Repo.CreateAPIKey(ctx, storage.APIKeyInput{DatabaseID: db.ID, UserID: userId, Name: strings.TrimSpace(req.Name)})
	if err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Handler: Created API key %s for database %s", key.ID, db.ID)
	c.JSON(http.StatusCreated, key)
}

// UpdateAPIKey renames a key or toggles its active flag.
func (h *APIKeyHandler) UpdateAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	key, err := ownedAPIKey(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.UpdateAPIKeyRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil && req.IsActive == nil {
		_ = c.Error(fmt.Errorf("%w: nothing to update, provide name or isActive", core.ErrInvalidInput))
		return
	}

	updated, err := h.Repo.UpdateAPIKey(ctx, key.ID, storage.APIKeyPatch{Name: req.Name, IsActive: req.IsActive})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RegenerateAPIKey replaces the key value; the old value stops working at once.
func (h *APIKeyHandler) RegenerateAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	key, err := ownedAPIKey(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	updated, err := h.Repo.RegenerateAPIKey(ctx, key.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Handler: Regenerated API key %s", key.ID)
	c.JSON(http.StatusOK, updated)
}

// DeleteAPIKey removes a key.
func (h *APIKeyHandler) DeleteAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	key, err := ownedAPIKey(ctx, h.Repo, currentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Repo.DeleteAPIKey(ctx, key.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
