package core

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Annany2002/nebula-docstore/internal/domain"
)

func TestRenderText(t *testing.T) {
	testCases := []struct {
		name  string
		input any
		want  string
	}{
		{"string", "active", "active"},
		{"empty string", "", ""},
		{"null", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"integer number", json.Number("42"), "42"},
		{"trailing zero", json.Number("1.0"), "1"},
		{"fraction", json.Number("2.50"), "2.5"},
		{"negative float64", float64(-3.25), "-3.25"},
		{"int", 7, "7"},
		{"huge", json.Number("1e21"), "1e+21"},
		{"object", map[string]any{"a": json.Number("1")}, `{"a":1}`},
		{"array", []any{"x", true}, `["x",true]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RenderText(tc.input))
		})
	}
}

func TestPredicateMatches(t *testing.T) {
	rows := []domain.RowData{
		{"status": "active"},
		{"status": "inactive"},
		{"other": "x"},
	}

	p := NewPredicate(map[string]any{"status": "active"})
	assert.True(t, p.Matches(rows[0]))
	assert.False(t, p.Matches(rows[1]))
	assert.False(t, p.Matches(rows[2]), "missing column never matches")

	t.Run("absent is not empty string", func(t *testing.T) {
		assert.False(t, NewPredicate(map[string]any{"status": ""}).Matches(rows[2]))
	})

	t.Run("absent is not null", func(t *testing.T) {
		assert.False(t, NewPredicate(map[string]any{"status": "null"}).Matches(rows[2]))
		assert.True(t, NewPredicate(map[string]any{"status": "null"}).Matches(domain.RowData{"status": nil}))
	})

	t.Run("case sensitive", func(t *testing.T) {
		assert.False(t, NewPredicate(map[string]any{"status": "Active"}).Matches(rows[0]))
	})

	t.Run("numbers compare as text", func(t *testing.T) {
		data := domain.RowData{"age": json.Number("30")}
		assert.True(t, NewPredicate(map[string]any{"age": "30"}).Matches(data))
		assert.True(t, NewPredicate(map[string]any{"age": json.Number("30")}).Matches(data))
		assert.False(t, NewPredicate(map[string]any{"age": "3"}).Matches(data), "no partial match")
	})

	t.Run("booleans compare as text", func(t *testing.T) {
		assert.True(t, NewPredicate(map[string]any{"ok": "true"}).Matches(domain.RowData{"ok": true}))
	})

	t.Run("every pair must match", func(t *testing.T) {
		p := NewPredicate(map[string]any{"a": "1", "b": "2"})
		assert.True(t, p.Matches(domain.RowData{"a": "1", "b": "2", "c": "3"}))
		assert.False(t, p.Matches(domain.RowData{"a": "1", "b": "3"}))
	})

	t.Run("empty predicate matches all", func(t *testing.T) {
		assert.True(t, NewPredicate(nil).Matches(rows[2]))
	})
}

func TestFilterRowsCapsAndKeepsOrder(t *testing.T) {
	var rows []domain.Row
	for i := 0; i < MaxFilterResults+25; i++ {
		status := "active"
		if i%2 == 1 {
			status = "inactive"
		}
		rows = append(rows, domain.Row{ID: fmt.Sprintf("r%03d", i), Data: domain.RowData{"status": status}})
	}

	all := FilterRows(rows, NewPredicate(nil))
	assert.Len(t, all, MaxFilterResults)
	assert.Equal(t, "r000", all[0].ID)

	active := FilterRows(rows, NewPredicate(map[string]any{"status": "active"}))
	assert.Len(t, active, (MaxFilterResults+25+1)/2)
	assert.Equal(t, "r000", active[0].ID)
	assert.Equal(t, "r002", active[1].ID)

	none := FilterRows(rows, NewPredicate(map[string]any{"status": "gone"}))
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
