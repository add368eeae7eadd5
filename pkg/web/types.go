// Package web provides the HTTP API of the conversion service.
package web

import (
	"encoding/json"
	"time"

	"github.com/dukex/soarbridge/pkg/models"
)

// CreateConversionRequest represents the request body for converting a document.
type CreateConversionRequest struct {
	Direction string          `json:"direction" validate:"omitempty,oneof=auto fsr-to-fas fas-to-fsr"`
	Document  json.RawMessage `json:"document"  validate:"required"`
}

// ListConversionsQuery represents the query string of the conversion listing.
type ListConversionsQuery struct {
	Limit     int    `query:"limit"     validate:"min=0,max=100"`
	Offset    int    `query:"offset"    validate:"min=0"`
	Direction string `query:"direction" validate:"omitempty,oneof=fsr-to-fas fas-to-fsr"`
	Status    string `query:"status"    validate:"omitempty,oneof=succeeded failed"`
}

// ConversionResponse is a stored record without its output document.
type ConversionResponse struct {
	ID          string                    `json:"id"`
	Direction   models.Direction          `json:"direction"`
	Status      models.ConversionStatus   `json:"status"`
	Collections int                       `json:"collections"`
	Items       int                       `json:"items"`
	Summary     *models.ConversionSummary `json:"summary,omitempty"`
	Error       string                    `json:"error,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// TransformConversionResponse drops the output document, which can be large; it is served
// by the output endpoint.
func TransformConversionResponse(record *models.ConversionRecord) ConversionResponse {
	return ConversionResponse{
		ID:          record.ID,
		Direction:   record.Direction,
		Status:      record.Status,
		Collections: record.Collections,
		Items:       record.Items,
		Summary:     record.Summary,
		Error:       record.Error,
		CreatedAt:   record.CreatedAt,
	}
}
