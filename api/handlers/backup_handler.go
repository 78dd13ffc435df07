// api/handlers/backup_handler.go
package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/internal/backup"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

const yamlContentType = "application/yaml"

// BackupHandler serves full export and import of a user's data.
type BackupHandler struct {
	Repo *storage.Repository
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(repo *storage.Repository) *BackupHandler {
	return &BackupHandler{Repo: repo}
}

// Export returns every database with nested tables, columns and rows.
// Query: format=json|yaml (default json).
func (h *BackupHandler) Export(c *gin.Context) {
	format, err := backup.ParseFormat(c.Query("format"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	data, err := backup.Export(c.Request.Context(), h.Repo, currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := backup.Encode(&buf, data, format); err != nil {
		_ = c.Error(err)
		return
	}

	contentType := gin.MIMEJSON
	if format == backup.FormatYAML {
		contentType = yamlContentType
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Import recreates an exported dataset under the user with fresh ids.
// The format comes from ?format= or a YAML Content-Type, else JSON.
func (h *BackupHandler) Import(c *gin.Context) {
	formatParam := c.Query("format")
	if formatParam == "" && strings.Contains(c.ContentType(), "yaml") {
		formatParam = backup.FormatYAML
	}
	format, err := backup.ParseFormat(formatParam)
	if err != nil {
		_ = c.Error(err)
		return
	}

	data, err := backup.Decode(c.Request.Body, format)
	if err != nil {
		_ = c.Error(err)
		return
	}

	summary, err := backup.Import(c.Request.Context(), h.Repo, currentUserID(c), data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": summary})
}
