// internal/backup/codec.go
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Annany2002/nebula-docstore/internal/domain"
)

// Supported encodings
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported format '%s'", ErrInvalidDataset, s)
	}
}

// Encode writes data to w in the given format.
func Encode(w io.Writer, data Dataset, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
}

// Decode reads a dataset from r in the given format.
func Decode(r io.Reader, format string) (Dataset, error) {
	var data Dataset
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
	}
	return data, nil
}

// UnmarshalJSON accepts {"data": {...}} as well as a bare data object.
func (r *RowExport) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	raw, wrapped := fields["data"]
	if !wrapped || !isJSONObject(raw) {
		return json.Unmarshal(b, &r.Data)
	}

	type plain RowExport
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*r = RowExport(out)
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// UnmarshalYAML accepts the same two shapes as UnmarshalJSON.
func (r *RowExport) UnmarshalYAML(node *yaml.Node) error {
	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return err
	}
	if _, wrapped := fields["data"].(map[string]any); !wrapped {
		r.Data = domain.RowData(fields)
		return nil
	}

	type plain RowExport
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*r = RowExport(out)
	return nil
}

// MarshalYAML emits numbers as YAML numbers instead of quoted strings.
func (r RowExport) MarshalYAML() (any, error) {
	data := make(map[string]any, len(r.Data))
	for k, v := range r.Data {
		data[k] = yamlValue(v)
	}
	return struct {
		ID        string         `yaml:"id,omitempty"`
		Data      map[string]any `yaml:"data"`
		CreatedAt *time.Time     `yaml:"createdAt,omitempty"`
		UpdatedAt *time.Time     `yaml:"updatedAt,omitempty"`
	}{r.ID, data, r.CreatedAt, r.UpdatedAt}, nil
}

func yamlValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = yamlValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = yamlValue(item)
		}
		return out
	default:
		return v
	}
}
