// api/models/database_models.go
package models

import "github.com/Annany2002/nebula-docstore/internal/domain"

// --- Database/Schema Request Structs ---

// CreateDatabaseRequest defines the structure for creating a database
type CreateDatabaseRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// ColumnDefinition represents a single column in a table creation request
type ColumnDefinition struct {
	Name         string  `json:"name" binding:"required"`
	DataType     string  `json:"data_type"` // text, integer, number, boolean, json, date, timestamp, uuid
	IsNullable   *bool   `json:"is_nullable"`
	DefaultValue *string `json:"default_value"`
}

// CreateTableRequest defines the structure for the table creation request body
type CreateTableRequest struct {
	Name    string             `json:"name" binding:"required"`
	Columns []ColumnDefinition `json:"columns" binding:"omitempty,dive"`
}

// --- Row Request Structs ---

// RowRequest carries the data object for row create and patch
type RowRequest struct {
	Data domain.RowData `json:"data"`
}

// --- API Key Request Structs ---

// CreateAPIKeyRequest names an additional key for a database
type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"`
}

// UpdateAPIKeyRequest renames or toggles a key; omitted fields are unchanged
type UpdateAPIKeyRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"isActive"`
}

// --- Generic Responses ---

// SuccessResponse is returned by endpoints with nothing else to report
type SuccessResponse struct {
	Success bool `json:"success"`
}
