// internal/core/predicate.go
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Annany2002/nebula-docstore/internal/domain"
)

// MaxFilterResults bounds how many rows a filtered select can return.
const MaxFilterResults = 100

// Predicate is a flat set of column -> expected text equality checks.
type Predicate map[string]string

// NewPredicate renders every expected value as text up front.
func NewPredicate(filters map[string]any) Predicate {
	p := make(Predicate, len(filters))
	for col, want := range filters {
		p[col] = RenderText(want)
	}
	return p
}

// Matches reports whether every filtered column is present in data and
// renders to exactly the expected text. An empty predicate matches all rows.
func (p Predicate) Matches(data domain.RowData) bool {
	for col, want := range p {
		got, ok := data[col]
		if !ok {
			return false
		}
		if RenderText(got) != want {
			return false
		}
	}
	return true
}

// FilterRows keeps rows matching p, preserving order, up to MaxFilterResults.
func FilterRows(rows []domain.Row, p Predicate) []domain.Row {
	out := make([]domain.Row, 0)
	for _, row := range rows {
		if len(out) == MaxFilterResults {
			break
		}
		if p.Matches(row.Data) {
			out = append(out, row)
		}
	}
	return out
}

// RenderText converts a JSON value to the text used for comparisons.
// null renders as "null", numbers in shortest form (1.0 -> "1"),
// objects and arrays as compact JSON.
func RenderText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return formatNumber(f)
		}
		return val.String()
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
