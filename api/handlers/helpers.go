// api/handlers/helpers.go
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/nebula-docstore/api/middleware"
	"github.com/Annany2002/nebula-docstore/internal/core"
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/logger"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// bindJSON binds the body into req and attaches a 400-class error on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		err = fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	customLog.Warnf("Handler: Binding error on %s: %v", c.FullPath(), err)
	_ = c.Error(err)
	return false
}

// --- Ownership lookups ---
// Entities owned by another user are reported as not found.

func ownedDatabase(ctx context.Context, repo *storage.Repository, userId, databaseId string) (*domain.Database, error) {
	db, err := repo.GetDatabase(ctx, databaseId)
	if err != nil {
		return nil, err
	}
	if db.UserID != userId {
		return nil, storage.ErrDatabaseNotFound
	}
	return db, nil
}

func ownedTable(ctx context.Context, repo *storage.Repository, userId, tableId string) (*domain.Table, error) {
	table, err := repo.GetTable(ctx, tableId)
	if err != nil {
		return nil, err
	}
	if _, err := ownedDatabase(ctx, repo, userId, table.DatabaseID); err != nil {
		return nil, storage.ErrTableNotFound
	}
	return table, nil
}

func ownedRow(ctx context.Context, repo *storage.Repository, userId, rowId string) (*domain.Row, error) {
	row, err := repo.GetRow(ctx, rowId)
	if err != nil {
		return nil, err
	}
	if _, err := ownedTable(ctx, repo, userId, row.TableID); err != nil {
		return nil, storage.ErrRowNotFound
	}
	return row, nil
}

func ownedAPIKey(ctx context.Context, repo *storage.Repository, userId, keyId string) (*domain.APIKey, error) {
	key, err := repo.GetAPIKey(ctx, keyId)
	if err != nil {
		return nil, err
	}
	if key.UserID != userId {
		return nil, storage.ErrAPIKeyNotFound
	}
	return key, nil
}
