// internal/core/validation.go
package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidInput marks management-plane input that fails validation.
var ErrInvalidInput = errors.New("invalid input")

// Regular expression for valid table/column names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// DefaultColumnType is used when a column declares no type.
const DefaultColumnType = "text"

// AllowedColumnTypes maps accepted spellings to the stored type hint.
// Types are rendering/input hints only; row data is never checked against them.
var AllowedColumnTypes = map[string]string{
	"text":      "text",
	"string":    "text",
	"varchar":   "text",
	"integer":   "integer",
	"int":       "integer",
	"number":    "number",
	"real":      "number",
	"float":     "number",
	"decimal":   "number",
	"boolean":   "boolean",
	"bool":      "boolean",
	"json":      "json",
	"jsonb":     "json",
	"date":      "date",
	"timestamp": "timestamp",
	"datetime":  "timestamp",
	"uuid":      "uuid",
}

// IsValidIdentifier checks if a string is a valid identifier (e.g., table_name, column_name)
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// NormalizeColumnType returns the stored hint for colType. An empty type
// becomes DefaultColumnType.
func NormalizeColumnType(colType string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(colType))
	if lower == "" {
		return DefaultColumnType, true
	}
	normalized, ok := AllowedColumnTypes[lower]
	return normalized, ok
}

// IsReservedColumn reports names the gateway synthesizes on select output.
func IsReservedColumn(name string) bool {
	switch name {
	case RowIDKey, RowCreatedAtKey, RowUpdatedAtKey:
		return true
	}
	return false
}

// CheckColumnName rejects a column name that is not an identifier, is
// reserved, or is already in seen. seen holds lower-cased names and gains
// name when it is accepted.
func CheckColumnName(name string, seen map[string]bool) error {
	lower := strings.ToLower(name)
	if !IsValidIdentifier(name) || IsReservedColumn(lower) {
		return fmt.Errorf("%w: invalid column name '%s'. Use valid identifiers, cannot be 'id', '_created_at' or '_updated_at'", ErrInvalidInput, name)
	}
	if seen[lower] {
		return fmt.Errorf("%w: duplicate column name '%s'", ErrInvalidInput, name)
	}
	seen[lower] = true
	return nil
}
