package web

import (
	"net/http"
	"time"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ConversionIDHeader carries the history id of a conversion served as a raw document.
const ConversionIDHeader = "X-Conversion-Id"

type APIHandlers struct {
	conversionService *services.Conversion
	activity          *services.Activity
	validator         *validator.Validate
}

// NewAPIHandlers builds the handlers. activity may be nil when no event bus is configured.
func NewAPIHandlers(conversionService *services.Conversion, activity *services.Activity, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		conversionService: conversionService,
		activity:          activity,
		validator:         validator,
	}
}

// CreateConversion converts the embedded document and returns the output with its summary.
func (h *APIHandlers) CreateConversion(c fiber.Ctx) error {
	var req CreateConversionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.conversionService.Convert(c.Context(), services.ConvertRequest{
		Direction: models.Direction(req.Direction),
		Document:  req.Document,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// ConvertDocument converts the raw request body and responds with the converted document.
func (h *APIHandlers) ConvertDocument(c fiber.Ctx) error {
	direction := models.Direction(c.Params("direction"))

	result, err := h.conversionService.Convert(c.Context(), services.ConvertRequest{
		Direction: direction,
		Document:  c.Body(),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(ConversionIDHeader, result.ConversionID)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(result.Output)
}

func (h *APIHandlers) GetConversions(c fiber.Ctx) error {
	var query ListConversionsQuery
	if err := c.Bind().Query(&query); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if err := h.validator.Struct(query); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.conversionService.ListConversions(c.Context(), services.ListConversionsRequest{
		Limit:     query.Limit,
		Offset:    query.Offset,
		Direction: models.Direction(query.Direction),
		Status:    models.ConversionStatus(query.Status),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	conversions := make([]ConversionResponse, 0, len(result.Conversions))
	for _, record := range result.Conversions {
		conversions = append(conversions, TransformConversionResponse(record))
	}

	return c.JSON(fiber.Map{
		"conversions":   conversions,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  query.Limit,
			"offset": query.Offset,
		},
	})
}

func (h *APIHandlers) GetConversion(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Conversion ID is required")
	}

	record, err := h.conversionService.ConversionByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformConversionResponse(record))
}

// GetConversionOutput serves the stored output document of a successful conversion.
func (h *APIHandlers) GetConversionOutput(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Conversion ID is required")
	}

	record, err := h.conversionService.ConversionByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if len(record.Output) == 0 {
		return notFound(c, "conversion has no output")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(record.Output)
}

func (h *APIHandlers) DeleteConversion(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Conversion ID is required")
	}

	err := h.conversionService.DeleteConversion(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Detect(c fiber.Ctx) error {
	detection, err := h.conversionService.Detect(c.Body())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"format":      detection.Format,
		"collections": detection.Collections,
		"items":       detection.Items,
		"hasVersions": detection.HasVersions,
		"direction":   detection.Direction(),
	})
}

// GetActivity reports the conversion events this process has consumed.
func (h *APIHandlers) GetActivity(c fiber.Ctx) error {
	if h.activity == nil {
		return handleServiceError(c, services.ErrEventsDisabled)
	}

	return c.JSON(h.activity.Snapshot())
}

func (h *APIHandlers) GetStepTypes(c fiber.Ctx) error {
	return c.JSON(h.conversionService.Registry())
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.conversionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "soarbridge API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "soarbridge API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
