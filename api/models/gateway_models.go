// api/models/gateway_models.go
package models

import (
	"encoding/json"

	"github.com/Annany2002/nebula-docstore/internal/domain"
)

// GatewayRequest is the body of POST /api/db-api. Presence checks happen in
// the gateway so that their order is fixed, hence no binding tags here.
type GatewayRequest struct {
	APIKey  string          `json:"api_key"`
	Action  string          `json:"action"`
	Table   string          `json:"table"`
	Data    json.RawMessage `json:"data"`
	Filters map[string]any  `json:"filters"`
	RowID   string          `json:"row_id"`
}

// GatewayResponse wraps a successful gateway result
type GatewayResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// DecodeData returns the data object. ok is false when data is absent,
// null or not a JSON object.
func (r GatewayRequest) DecodeData() (data domain.RowData, ok bool) {
	if len(r.Data) == 0 || r.Data[0] != '{' {
		return nil, false
	}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, false
	}
	return data, true
}
