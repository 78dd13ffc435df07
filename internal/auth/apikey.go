// internal/auth/apikey.go
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

// APIKeyStore is the part of the repository the resolver needs.
type APIKeyStore interface {
	GetAPIKeyByValue(ctx context.Context, keyValue string) (*domain.APIKey, error)
	TouchAPIKey(ctx context.Context, keyId string, at time.Time) error
}

// Resolver maps raw api key strings to the database they scope.
type Resolver struct {
	keys APIKeyStore
	now  func() time.Time
}

// NewResolver creates a Resolver over keys.
func NewResolver(keys APIKeyStore) *Resolver {
	return &Resolver{keys: keys, now: func() time.Time { return time.Now().UTC() }}
}

// Resolve returns the active key matching raw. Unknown and inactive keys both
// yield ErrInvalidAPIKey so callers cannot tell them apart. Resolve never
// changes the key's last-used time; see Touch.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*domain.APIKey, error) {
	if raw == "" {
		return nil, ErrInvalidAPIKey
	}
	key, err := r.keys.GetAPIKeyByValue(ctx, raw)
	if err != nil {
		if errors.Is(err, storage.ErrAPIKeyNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	if !key.IsActive {
		customLog.Warnf("Auth: Rejected inactive API key %s for database %s", key.ID, key.DatabaseID)
		return nil, ErrInvalidAPIKey
	}
	return key, nil
}

// Touch records that the key was used just now.
func (r *Resolver) Touch(ctx context.Context, keyId string) error {
	return r.keys.TouchAPIKey(ctx, keyId, r.now())
}
