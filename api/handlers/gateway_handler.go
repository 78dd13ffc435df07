// api/handlers/gateway_handler.go
package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/internal/gateway"
)

// GatewayHandler exposes the data-plane endpoint.
type GatewayHandler struct {
	Gateway *gateway.Gateway
}

// NewGatewayHandler creates a new GatewayHandler.
func NewGatewayHandler(gw *gateway.Gateway) *GatewayHandler {
	return &GatewayHandler{Gateway: gw}
}

// Handle decodes the request envelope and dispatches it. Authentication is
// the api_key field of the body, not a header.
func (h *GatewayHandler) Handle(c *gin.Context) {
	receivedAt := time.Now()

	var req models.GatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid JSON body: %v", gateway.ErrMalformedRequest, err))
		return
	}

	data, hasData := req.DecodeData()
	result, err := h.Gateway.Dispatch(c.Request.Context(), gateway.Envelope{
		APIKey:     req.APIKey,
		Action:     req.Action,
		Table:      req.Table,
		Data:       data,
		HasData:    hasData,
		Filters:    req.Filters,
		RowID:      req.RowID,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		customLog.Debugf("Handler: Gateway rejected %s on '%s': %v", req.Action, req.Table, err)
		_ = c.Error(err)
		return
	}

	c.JSON(result.Status, models.GatewayResponse{Success: true, Data: result.Data})
}
