package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/eventbus"
	"github.com/dukex/soarbridge/pkg/events"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/otelhelper"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/dukex/soarbridge/pkg/schema"
	"github.com/dukex/soarbridge/pkg/steptypes"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DirectionAuto asks Convert to pick the direction from the document's discriminator.
const DirectionAuto models.Direction = "auto"

// Conversion runs conversions and keeps their history. Persistence and the event
// publisher are optional.
type Conversion struct {
	converter   *converter.Converter
	validator   *schema.Validator
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
	now         func() time.Time
}

type ConversionOption func(*Conversion)

func WithPersistence(p persistence.Persistence) ConversionOption {
	return func(c *Conversion) {
		c.persistence = p
	}
}

func WithPublisher(publisher eventbus.EventPublisher) ConversionOption {
	return func(c *Conversion) {
		c.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) ConversionOption {
	return func(c *Conversion) {
		c.tracer = tracer
	}
}

func WithClock(now func() time.Time) ConversionOption {
	return func(c *Conversion) {
		c.now = now
	}
}

// NewConversion creates a new conversion service.
func NewConversion(conv *converter.Converter, validator *schema.Validator, logger *slog.Logger, opts ...ConversionOption) *Conversion {
	c := &Conversion{
		converter: conv,
		validator: validator,
		tracer:    otelhelper.NoopTracer(),
		logger:    logger.With("module", "conversion_service"),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ConvertRequest carries one document to convert. An empty Direction behaves like
// DirectionAuto.
type ConvertRequest struct {
	Direction models.Direction
	Document  []byte
}

type ConvertResponse struct {
	ConversionID string                    `json:"conversion_id"`
	Direction    models.Direction          `json:"direction"`
	Collections  int                       `json:"collections"`
	Items        int                       `json:"items"`
	Summary      *models.ConversionSummary `json:"summary,omitempty"`
	Output       json.RawMessage           `json:"output"`
}

// Convert validates the document, converts it and records the outcome. Failed conversions
// are recorded and published too; the returned error is the cause.
func (c *Conversion) Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error) {
	started := c.now()

	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "conversion.convert")
	defer span.End()

	if len(req.Document) == 0 {
		return nil, NewValidationError("Convert", "empty_document", "document is required", ErrEmptyDocument)
	}

	detection := converter.Detect(req.Document)

	direction, err := resolveDirection(req.Direction, detection)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	record := &models.ConversionRecord{
		ID:        uuid.NewString(),
		Direction: direction,
		CreatedAt: started.UTC(),
	}

	if detection != nil && detection.Direction() == direction {
		record.Collections = detection.Collections
		record.Items = detection.Items
	}

	span.SetAttributes(
		attribute.String(otelhelper.ConversionIDKey, record.ID),
		attribute.String(otelhelper.ConversionDirectionKey, string(direction)),
		attribute.Int(otelhelper.CollectionCountKey, record.Collections),
		attribute.Int(otelhelper.ItemCountKey, record.Items),
	)

	output, err := c.run(direction, detection, req.Document)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ConversionIDKey, record.ID))

		record.Status = models.ConversionStatusFailed
		record.Error = err.Error()

		c.store(ctx, record)
		c.publish(ctx, events.ConversionFailed{
			BaseEvent: events.NewBaseEvent(events.ConversionFailedEvent, record.ID),
			Direction: direction,
			Error:     record.Error,
			Duration:  c.now().Sub(started),
		})

		return nil, err
	}

	record.Status = models.ConversionStatusSucceeded
	record.Output = output
	record.Summary = summaryOf(output)

	span.SetAttributes(attribute.Int(otelhelper.ReplacedStepsKey, record.Summary.Total()))

	c.store(ctx, record)
	c.publish(ctx, events.ConversionCompleted{
		BaseEvent:     events.NewBaseEvent(events.ConversionCompletedEvent, record.ID),
		Direction:     direction,
		Collections:   record.Collections,
		Items:         record.Items,
		ReplacedSteps: record.Summary.Total(),
		Duration:      c.now().Sub(started),
	})

	c.logger.InfoContext(ctx, "Conversion completed",
		"conversion_id", record.ID,
		"direction", direction,
		"items", record.Items,
		"replaced_steps", record.Summary.Total())

	return &ConvertResponse{
		ConversionID: record.ID,
		Direction:    direction,
		Collections:  record.Collections,
		Items:        record.Items,
		Summary:      record.Summary,
		Output:       output,
	}, nil
}

// run validates the structure only when the discriminator matches, so that a document of the
// other format gets the converter's format mismatch error.
func (c *Conversion) run(direction models.Direction, detection *models.Detection, document []byte) ([]byte, error) {
	if c.validator != nil && detection != nil && detection.Direction() == direction {
		err := c.validator.Validate(direction, document)
		if err != nil {
			return nil, err
		}
	}

	return c.converter.Convert(direction, document)
}

func resolveDirection(requested models.Direction, detection *models.Detection) (models.Direction, error) {
	if requested == "" || requested == DirectionAuto {
		if detection == nil {
			return "", NewValidationError("Convert", "undetectable_format", "", ErrUndetectableFormat)
		}

		return detection.Direction(), nil
	}

	if !requested.Valid() {
		return "", NewValidationError("Convert", "invalid_direction",
			fmt.Sprintf("direction must be %s, %s or %s", models.DirectionFSRToFAS, models.DirectionFASToFSR, DirectionAuto),
			ErrInvalidDirection)
	}

	return requested, nil
}

func summaryOf(output []byte) *models.ConversionSummary {
	var doc struct {
		Summary *models.ConversionSummary `json:"_conversionSummary"`
	}

	if err := json.Unmarshal(output, &doc); err != nil {
		return nil
	}

	return doc.Summary
}

func (c *Conversion) store(ctx context.Context, record *models.ConversionRecord) {
	if c.persistence == nil {
		return
	}

	err := c.persistence.SaveConversion(ctx, record)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to store conversion", "conversion_id", record.ID, "error", err)
	}
}

func (c *Conversion) publish(ctx context.Context, event eventbus.Event) {
	if c.publisher == nil {
		return
	}

	var key string

	switch e := event.(type) {
	case events.ConversionCompleted:
		key = e.ConversionID
	case events.ConversionFailed:
		key = e.ConversionID
	}

	err := c.publisher.Publish(ctx, key, event)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish conversion event", "event_type", event.GetType(), "error", err)
	}
}

// Detect reports the format of a document, or ErrUndetectableFormat.
func (c *Conversion) Detect(document []byte) (*models.Detection, error) {
	detection := converter.Detect(document)
	if detection == nil {
		return nil, NewValidationError("Detect", "undetectable_format", "", ErrUndetectableFormat)
	}

	return detection, nil
}

// Registry returns the step-type registry the converter classifies with.
func (c *Conversion) Registry() *steptypes.Registry {
	return c.converter.Registry()
}

// ConversionByID returns a stored conversion record.
func (c *Conversion) ConversionByID(ctx context.Context, id string) (*models.ConversionRecord, error) {
	if c.persistence == nil {
		return nil, ErrPersistenceDisabled
	}

	return c.persistence.ConversionByID(ctx, id)
}

// ListConversionsRequest contains options for listing conversion records.
type ListConversionsRequest struct {
	Limit     int
	Offset    int
	Direction models.Direction
	Status    models.ConversionStatus
}

// ListConversions retrieves stored conversion records, newest first.
func (c *Conversion) ListConversions(ctx context.Context, req ListConversionsRequest) (*persistence.ConversionListResult, error) {
	if c.persistence == nil {
		return nil, ErrPersistenceDisabled
	}

	if req.Direction != "" && !req.Direction.Valid() {
		return nil, NewValidationError("ListConversions", "invalid_direction", "unknown direction "+string(req.Direction), ErrInvalidDirection)
	}

	if req.Status != "" && req.Status != models.ConversionStatusSucceeded && req.Status != models.ConversionStatusFailed {
		return nil, NewValidationError("ListConversions", "invalid_status", "unknown status "+string(req.Status), ErrInvalidStatus)
	}

	if req.Limit < 0 || req.Offset < 0 {
		return nil, NewValidationError("ListConversions", "invalid_pagination", "limit and offset must not be negative", ErrInvalidRequest)
	}

	return c.persistence.ListConversions(ctx, persistence.ListConversionsOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		Direction: req.Direction,
		Status:    req.Status,
	})
}

// DeleteConversion removes a stored record.
func (c *Conversion) DeleteConversion(ctx context.Context, id string) error {
	if c.persistence == nil {
		return ErrPersistenceDisabled
	}

	return c.persistence.DeleteConversion(ctx, id)
}

// HealthCheck checks the health of the persistence layer.
func (c *Conversion) HealthCheck(ctx context.Context) (string, bool) {
	if c.persistence == nil {
		return "Persistence layer not configured", true
	}

	err := c.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
