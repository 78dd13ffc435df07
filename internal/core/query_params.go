// internal/core/query_params.go
package core

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// Pagination defaults and limits for management row listing
const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

// SelectPageSize is the fixed page the gateway returns for an unfiltered select.
const SelectPageSize = 100

// Reserved keys added to flattened rows on gateway select output.
const (
	RowIDKey        = "id"
	RowCreatedAtKey = "_created_at"
	RowUpdatedAtKey = "_updated_at"
)

// PageOptions holds parsed page/limit query parameters. Page is zero-based.
type PageOptions struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (p PageOptions) Offset() int {
	return p.Page * p.Limit
}

// ParsePageOptions extracts `page` and `limit` from query parameters.
// defaultLimit applies when `limit` is absent (non-positive means DefaultLimit).
func ParsePageOptions(queryParams url.Values, defaultLimit int) (*PageOptions, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	opts := &PageOptions{Page: 0, Limit: defaultLimit}

	if pageStr := queryParams.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'page' parameter: must be an integer")
		}
		if page < 0 {
			return nil, fmt.Errorf("invalid 'page' parameter: must be non-negative")
		}
		opts.Page = page
	}

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be an integer")
		}
		if limit < 1 {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be at least 1")
		}
		if limit > MaxLimit {
			return nil, fmt.Errorf("invalid 'limit' parameter: maximum is %d", MaxLimit)
		}
		opts.Limit = limit
	}

	if opts.Page > math.MaxInt/opts.Limit {
		return nil, fmt.Errorf("invalid 'page' parameter: too large")
	}

	return opts, nil
}

// FlattenRow lifts a row's data to the top level next to its id and
// timestamps. The synthesized keys win over same-named data keys.
func FlattenRow(id string, data map[string]any, createdAt, updatedAt any) map[string]any {
	out := make(map[string]any, len(data)+3)
	for k, v := range data {
		out[k] = v
	}
	out[RowIDKey] = id
	if createdAt != nil {
		out[RowCreatedAtKey] = createdAt
	}
	if updatedAt != nil {
		out[RowUpdatedAtKey] = updatedAt
	}
	return out
}
