// internal/storage/metadata_storage.go
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/domain"
)

const authKeyPrefixMeta = "neb_" // nolint:gosec // API key prefix identifier, not a secret
const apiKeySecretLength = 32    // Length of the random secret part in bytes

// DefaultAPIKeyName is given to the key minted alongside a new database.
const DefaultAPIKeyName = "Default"

// --- User Operations ---

// CreateUser stores a new user with the default role. Emails are compared
// case-insensitively.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, displayName string) (*domain.User, error) {
	var created domain.User
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		for _, u := range s.Users {
			if strings.EqualFold(u.Email, email) {
				return ErrEmailExists
			}
		}
		if displayName == "" {
			displayName = email
		}
		created = domain.User{
			ID:           r.newID(),
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  displayName,
			CreatedAt:    r.now(),
		}
		s.Users = append(s.Users, created)
		s.UserRoles = append(s.UserRoles, domain.UserRole{ID: r.newID(), UserID: created.ID, Role: domain.RoleUser})
		return nil
	})
	if err != nil {
		customLog.Warnf("Storage: Failed to create user %s: %v", email, err)
		return nil, err
	}
	return &created, nil
}

// GetUser retrieves a user by id.
func (r *Repository) GetUser(ctx context.Context, userId string) (*domain.User, error) {
	var found *domain.User
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Users {
			if s.Users[i].ID == userId {
				u := s.Users[i]
				found = &u
				return nil
			}
		}
		return ErrUserNotFound
	})
	return found, err
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var found *domain.User
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Users {
			if strings.EqualFold(s.Users[i].Email, email) {
				u := s.Users[i]
				found = &u
				return nil
			}
		}
		return ErrUserNotFound
	})
	return found, err
}

// UserPatch lists the user fields that may change; nil means unchanged.
type UserPatch struct {
	DisplayName  *string
	PasswordHash *string
}

// UpdateUser applies patch to the user.
func (r *Repository) UpdateUser(ctx context.Context, userId string, patch UserPatch) (*domain.User, error) {
	var updated domain.User
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Users {
			if s.Users[i].ID != userId {
				continue
			}
			if patch.DisplayName != nil {
				s.Users[i].DisplayName = *patch.DisplayName
			}
			if patch.PasswordHash != nil {
				s.Users[i].PasswordHash = *patch.PasswordHash
			}
			updated = s.Users[i]
			return nil
		}
		return ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetUserRoles lists the role names assigned to a user.
func (r *Repository) GetUserRoles(ctx context.Context, userId string) ([]string, error) {
	roles := make([]string, 0, 1)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, role := range s.UserRoles {
			if role.UserID == userId {
				roles = append(roles, role.Role)
			}
		}
		return nil
	})
	return roles, err
}

// --- Database Operations ---

// DatabaseInput carries the caller-supplied fields of a new database.
type DatabaseInput struct {
	UserID      string
	Name        string
	Description string
	Status      string
}

// CreateDatabase stores a new database record.
func (r *Repository) CreateDatabase(ctx context.Context, in DatabaseInput) (*domain.Database, error) {
	var created domain.Database
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		created = r.newDatabase(in)
		s.Databases = append(s.Databases, created)
		return nil
	})
	if err != nil {
		customLog.Warnf("Storage: Failed to create database '%s' for UserID %s: %v", in.Name, in.UserID, err)
		return nil, err
	}
	return &created, nil
}

// CreateDatabaseWithKey stores a new database and its default api key in one write.
func (r *Repository) CreateDatabaseWithKey(ctx context.Context, in DatabaseInput) (*domain.Database, *domain.APIKey, error) {
	var (
		createdDB  domain.Database
		createdKey domain.APIKey
	)
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		key, err := generateKeyValue()
		if err != nil {
			return err
		}
		createdDB = r.newDatabase(in)
		createdKey = domain.APIKey{
			ID:         r.newID(),
			DatabaseID: createdDB.ID,
			UserID:     in.UserID,
			KeyValue:   key,
			Name:       DefaultAPIKeyName,
			IsActive:   true,
			CreatedAt:  createdDB.CreatedAt,
		}
		s.Databases = append(s.Databases, createdDB)
		s.APIKeys = append(s.APIKeys, createdKey)
		return nil
	})
	if err != nil {
		customLog.Warnf("Storage: Failed to create database '%s' for UserID %s: %v", in.Name, in.UserID, err)
		return nil, nil, err
	}
	return &createdDB, &createdKey, nil
}

func (r *Repository) newDatabase(in DatabaseInput) domain.Database {
	status := in.Status
	if status == "" {
		status = domain.DatabaseStatusActive
	}
	now := r.now()
	return domain.Database{
		ID:          r.newID(),
		UserID:      in.UserID,
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ListDatabases returns the user's databases, newest first.
func (r *Repository) ListDatabases(ctx context.Context, userId string) ([]domain.Database, error) {
	dbs := make([]domain.Database, 0)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, d := range s.Databases {
			if d.UserID == userId {
				dbs = append(dbs, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(dbs, func(d domain.Database) time.Time { return d.CreatedAt })
	return dbs, nil
}

// GetDatabase retrieves a database by id.
func (r *Repository) GetDatabase(ctx context.Context, databaseId string) (*domain.Database, error) {
	var found *domain.Database
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.Databases {
			if s.Databases[i].ID == databaseId {
				d := s.Databases[i]
				found = &d
				return nil
			}
		}
		return ErrDatabaseNotFound
	})
	return found, err
}

// DeleteDatabase removes the database with its tables (and their columns
// and rows), api keys and query logs.
func (r *Repository) DeleteDatabase(ctx context.Context, databaseId string) error {
	return r.store.Update(ctx, func(s *docstore.Snapshot) error {
		before := len(s.Databases)
		s.Databases = filterOut(s.Databases, func(d domain.Database) bool { return d.ID == databaseId })
		if len(s.Databases) == before {
			return ErrDatabaseNotFound
		}

		tableIDs := make(map[string]bool)
		for _, t := range s.Tables {
			if t.DatabaseID == databaseId {
				tableIDs[t.ID] = true
			}
		}
		s.Tables = filterOut(s.Tables, func(t domain.Table) bool { return tableIDs[t.ID] })
		s.Columns = filterOut(s.Columns, func(c domain.Column) bool { return tableIDs[c.TableID] })
		s.Rows = filterOut(s.Rows, func(row domain.Row) bool { return tableIDs[row.TableID] })
		s.APIKeys = filterOut(s.APIKeys, func(k domain.APIKey) bool { return k.DatabaseID == databaseId })
		s.QueryLogs = filterOut(s.QueryLogs, func(l domain.QueryLog) bool { return l.DatabaseID == databaseId })

		customLog.Printf("Storage: Deleted database %s with %d table(s)", databaseId, len(tableIDs))
		return nil
	})
}

// GetDatabaseStats counts the user's databases, api keys and logged requests.
func (r *Repository) GetDatabaseStats(ctx context.Context, userId string) (*domain.Stats, error) {
	stats := &domain.Stats{}
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for _, d := range s.Databases {
			if d.UserID == userId {
				stats.Databases++
			}
		}
		for _, k := range s.APIKeys {
			if k.UserID == userId {
				stats.APIKeys++
			}
		}
		for _, l := range s.QueryLogs {
			if l.UserID == userId {
				stats.Requests++
			}
		}
		return nil
	})
	return stats, err
}

// --- API Key Operations ---

// generateKeyValue returns the prefix plus 32 random bytes, hex encoded.
func generateKeyValue() (string, error) {
	randomBytes := make([]byte, apiKeySecretLength)
	if _, err := rand.Read(randomBytes); err != nil {
		customLog.Warnf("Storage: Failed to generate random bytes for API key: %v", err)
		return "", ErrAPIKeyGeneration
	}
	return authKeyPrefixMeta + hex.EncodeToString(randomBytes), nil
}

// APIKeyInput carries the caller-supplied fields of a new api key.
type APIKeyInput struct {
	DatabaseID string
	UserID     string
	Name       string
}

// CreateAPIKey mints a new active key for a database.
func (r *Repository) CreateAPIKey(ctx context.Context, in APIKeyInput) (*domain.APIKey, error) {
	var created domain.APIKey
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		if !hasDatabase(s, in.DatabaseID) {
			return ErrDatabaseNotFound
		}
		key, err := generateKeyValue()
		if err != nil {
			return err
		}
		name := in.Name
		if name == "" {
			name = DefaultAPIKeyName
		}
		created = domain.APIKey{
			ID:         r.newID(),
			DatabaseID: in.DatabaseID,
			UserID:     in.UserID,
			KeyValue:   key,
			Name:       name,
			IsActive:   true,
			CreatedAt:  r.now(),
		}
		s.APIKeys = append(s.APIKeys, created)
		return nil
	})
	if err != nil {
		customLog.Warnf("Storage: Failed to store API key for UserID %s, DBID %s: %v", in.UserID, in.DatabaseID, err)
		return nil, err
	}
	return &created, nil
}

// ListAPIKeys returns the user's keys with their database names, newest first.
func (r *Repository) ListAPIKeys(ctx context.Context, userId string) ([]domain.APIKeyView, error) {
	keys := make([]domain.APIKeyView, 0)
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		names := make(map[string]string, len(s.Databases))
		for _, d := range s.Databases {
			names[d.ID] = d.Name
		}
		for _, k := range s.APIKeys {
			if k.UserID != userId {
				continue
			}
			view := domain.APIKeyView{APIKey: k}
			if name, ok := names[k.DatabaseID]; ok {
				view.DatabaseName = &name
			}
			keys = append(keys, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(keys, func(k domain.APIKeyView) time.Time { return k.CreatedAt })
	return keys, nil
}

// GetAPIKey retrieves a key by id.
func (r *Repository) GetAPIKey(ctx context.Context, keyId string) (*domain.APIKey, error) {
	var found *domain.APIKey
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.APIKeys {
			if s.APIKeys[i].ID == keyId {
				k := s.APIKeys[i]
				found = &k
				return nil
			}
		}
		return ErrAPIKeyNotFound
	})
	return found, err
}

// GetAPIKeyByValue looks a key up by its secret value, active or not.
// It has no side effects.
func (r *Repository) GetAPIKeyByValue(ctx context.Context, keyValue string) (*domain.APIKey, error) {
	var found *domain.APIKey
	err := r.store.View(ctx, func(s *docstore.Snapshot) error {
		for i := range s.APIKeys {
			if s.APIKeys[i].KeyValue == keyValue {
				k := s.APIKeys[i]
				found = &k
				return nil
			}
		}
		return ErrAPIKeyNotFound
	})
	return found, err
}

// APIKeyPatch lists the key fields that may change; nil means unchanged.
type APIKeyPatch struct {
	Name       *string
	IsActive   *bool
	LastUsedAt *time.Time
}

// UpdateAPIKey applies patch to the key.
func (r *Repository) UpdateAPIKey(ctx context.Context, keyId string, patch APIKeyPatch) (*domain.APIKey, error) {
	return r.mutateAPIKey(ctx, keyId, func(k *domain.APIKey) error {
		if patch.Name != nil {
			k.Name = *patch.Name
		}
		if patch.IsActive != nil {
			k.IsActive = *patch.IsActive
		}
		if patch.LastUsedAt != nil {
			at := *patch.LastUsedAt
			k.LastUsedAt = &at
		}
		return nil
	})
}

// RegenerateAPIKey replaces the key value; the old value stops resolving immediately.
func (r *Repository) RegenerateAPIKey(ctx context.Context, keyId string) (*domain.APIKey, error) {
	return r.mutateAPIKey(ctx, keyId, func(k *domain.APIKey) error {
		value, err := generateKeyValue()
		if err != nil {
			return err
		}
		k.KeyValue = value
		return nil
	})
}

// TouchAPIKey records that a key was just used.
func (r *Repository) TouchAPIKey(ctx context.Context, keyId string, at time.Time) error {
	_, err := r.UpdateAPIKey(ctx, keyId, APIKeyPatch{LastUsedAt: &at})
	return err
}

func (r *Repository) mutateAPIKey(ctx context.Context, keyId string, fn func(*domain.APIKey) error) (*domain.APIKey, error) {
	var updated domain.APIKey
	err := r.store.Update(ctx, func(s *docstore.Snapshot) error {
		for i := range s.APIKeys {
			if s.APIKeys[i].ID != keyId {
				continue
			}
			if err := fn(&s.APIKeys[i]); err != nil {
				return err
			}
			updated = s.APIKeys[i]
			return nil
		}
		return ErrAPIKeyNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAPIKey removes a key.
func (r *Repository) DeleteAPIKey(ctx context.Context, keyId string) error {
	return r.store.Update(ctx, func(s *docstore.Snapshot) error {
		before := len(s.APIKeys)
		s.APIKeys = filterOut(s.APIKeys, func(k domain.APIKey) bool { return k.ID == keyId })
		if len(s.APIKeys) == before {
			return fmt.Errorf("%w: %s", ErrAPIKeyNotFound, keyId)
		}
		return nil
	})
}

// filterOut returns items without those matching drop, reusing the backing array.
func filterOut[T any](items []T, drop func(T) bool) []T {
	kept := items[:0]
	for _, item := range items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
