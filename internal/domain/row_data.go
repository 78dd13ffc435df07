package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// RowData is the schemaless payload of a row. Values are whatever JSON
// produced: string, json.Number, bool, nil, []any or map[string]any.
// Keys are emitted in sorted order when encoded.
type RowData map[string]any

// Clone returns a shallow copy so callers can't mutate stored rows.
func (d RowData) Clone() RowData {
	out := make(RowData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge overwrites keys present in patch and keeps the rest.
func (d RowData) Merge(patch RowData) RowData {
	out := d.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Keys returns the column names present in the payload, sorted.
func (d RowData) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON keeps numbers as json.Number so their text survives a
// load/save cycle unchanged.
func (d *RowData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(RowData, len(raw))
	for k, v := range raw {
		val, err := DecodeValue(v)
		if err != nil {
			return err
		}
		out[k] = val
	}
	*d = out
	return nil
}

// DecodeValue decodes one JSON value with json.Number for numbers.
func DecodeValue(b []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
