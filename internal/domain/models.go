// internal/domain/models.go
package domain

import "time"

// Roles stored in the userRoles collection
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// DatabaseStatusActive is the status given to newly created databases.
const DatabaseStatusActive = "active"

// User defines the structure for user data in the store
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	DisplayName  string    `json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserRole assigns an application role to a user.
type UserRole struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Database is a named container of tables owned by one user.
type Database struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Table is resolved by name only within its own database.
type Table struct {
	ID         string    `json:"id"`
	DatabaseID string    `json:"databaseId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Column is advisory metadata; row data is never validated against it.
type Column struct {
	ID           string    `json:"id"`
	TableID      string    `json:"tableId"`
	Name         string    `json:"name"`
	DataType     string    `json:"dataType"`
	IsNullable   bool      `json:"isNullable"`
	DefaultValue *string   `json:"defaultValue"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Row holds an open-ended JSON object keyed by column name.
type Row struct {
	ID        string    `json:"id"`
	TableID   string    `json:"tableId"`
	Data      RowData   `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// APIKey grants full data-plane access to every table of one database.
type APIKey struct {
	ID         string     `json:"id"`
	DatabaseID string     `json:"databaseId"`
	UserID     string     `json:"userId"`
	KeyValue   string     `json:"keyValue"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// APIKeyView is an APIKey decorated with its database name for listings.
type APIKeyView struct {
	APIKey
	DatabaseName *string `json:"databaseName"`
}

// RequestSummary is the redacted part of a gateway request kept in the audit log.
// Row payloads are never recorded.
type RequestSummary struct {
	Action  string         `json:"action"`
	Table   string         `json:"table"`
	Filters map[string]any `json:"filters"`
}

// QueryLog is an append-only audit record of one data-plane call.
type QueryLog struct {
	ID             string          `json:"id"`
	DatabaseID     string          `json:"databaseId"`
	UserID         string          `json:"userId"`
	Method         string          `json:"method"`
	Endpoint       string          `json:"endpoint"`
	StatusCode     int             `json:"statusCode"`
	RequestBody    *RequestSummary `json:"requestBody"`
	ResponseTimeMs int64           `json:"responseTimeMs"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Stats summarises what a user owns, for the dashboard overview.
type Stats struct {
	Databases int `json:"databases"`
	APIKeys   int `json:"apiKeys"`
	Requests  int `json:"requests"`
}
