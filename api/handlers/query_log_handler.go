// api/handlers/query_log_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/internal/storage"
)

// QueryLogHandler serves the audit log written by the gateway.
type QueryLogHandler struct {
	Repo *storage.Repository
}

// NewQueryLogHandler creates a new QueryLogHandler.
func NewQueryLogHandler(repo *storage.Repository) *QueryLogHandler {
	return &QueryLogHandler{Repo: repo}
}

// ListQueryLogs returns the user's logs, newest first.
// Query: database_id, method; "all" or empty means no filter.
func (h *QueryLogHandler) ListQueryLogs(c *gin.Context) {
	logs, err := h.Repo.ListQueryLogs(c.Request.Context(), storage.QueryLogFilter{
		UserID:     currentUserID(c),
		DatabaseID: allMeansAny(c.Query("database_id")),
		Method:     allMeansAny(c.Query("method")),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func allMeansAny(v string) string {
	if v == "all" {
		return ""
	}
	return v
}
