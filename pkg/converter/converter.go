// Package converter maps FAS playbook_collections exports to FSR workflow_collections
// exports and back.
package converter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/payload"
	"github.com/dukex/soarbridge/pkg/steptypes"
	"github.com/dukex/soarbridge/pkg/timeconv"
)

const (
	fasFormatMessage = "Input must be a FAS playbook_collections export"
	fsrFormatMessage = "Input must be a FortiSOAR workflow_collections export"

	outputIndent = "  "
)

// Converter holds the configuration shared by conversion calls. Each call builds its own
// output, report collector and fallback encoder, so a Converter is safe for concurrent use.
type Converter struct {
	classifier *steptypes.Classifier
	ids        identity.Generator
	now        func() time.Time
	logger     *slog.Logger
	times      *timeconv.Normalizer
}

type Option func(*Converter)

// WithRegistry replaces the built-in step type registry.
func WithRegistry(reg *steptypes.Registry) Option {
	return func(c *Converter) {
		c.classifier = steptypes.NewClassifier(reg)
	}
}

func WithIDGenerator(ids identity.Generator) Option {
	return func(c *Converter) {
		c.ids = ids
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

func New(opts ...Option) *Converter {
	c := &Converter{
		ids:    identity.UUIDGenerator{},
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.classifier == nil {
		c.classifier = steptypes.NewClassifier(steptypes.DefaultRegistry())
	}

	c.logger = c.logger.With("module", "converter")
	c.times = timeconv.New(c.now, c.logger)

	return c
}

// Registry returns a copy of the registry the converter classifies against.
func (c *Converter) Registry() *steptypes.Registry {
	return c.classifier.Registry()
}

// Convert decodes raw, converts it in the given direction and encodes the result with a
// two-space indent.
func (c *Converter) Convert(direction models.Direction, raw []byte) ([]byte, error) {
	switch direction {
	case models.DirectionFASToFSR:
		var doc models.PlaybookExport
		if err := decode(raw, models.PlaybookCollectionsType, "FASToFSR", fasFormatMessage, &doc); err != nil {
			return nil, err
		}

		out, err := c.FASToFSR(&doc)
		if err != nil {
			return nil, err
		}

		return encode(out)
	case models.DirectionFSRToFAS:
		var doc models.WorkflowExport
		if err := decode(raw, models.WorkflowCollectionsType, "FSRToFAS", fsrFormatMessage, &doc); err != nil {
			return nil, err
		}

		out, err := c.FSRToFAS(&doc)
		if err != nil {
			return nil, err
		}

		return encode(out)
	default:
		return nil, fmt.Errorf("%q: %w", direction, ErrInvalidDirection)
	}
}

// decode checks the discriminator before decoding the full document so that a mismatched
// document is rejected even when its body would not fit the expected shape.
func decode(raw []byte, want, op, message string, into any) error {
	var envelope struct {
		Type any `json:"type"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return undecodableDocument(op, err)
	}

	got, _ := envelope.Type.(string)
	if got != want {
		return newFormatError(op, want, got, message)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(into); err != nil {
		return undecodableDocument(op, err)
	}

	return nil
}

func encode(v any) ([]byte, error) {
	out, err := payload.Marshal(v, outputIndent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode converted document: %w", err)
	}

	return []byte(out), nil
}

// newID returns id, or a fresh identifier when id is empty.
func (c *Converter) newID(id string) string {
	if id != "" {
		return id
	}

	return c.ids.NewID()
}

func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	v := *s

	return &v
}

func boolOr(b *bool, def bool) *bool {
	if b != nil {
		v := *b

		return &v
	}

	return &def
}

func cloneList(list []any) []any {
	if list == nil {
		return []any{}
	}

	out, _ := payload.CloneValue(list).([]any)

	return out
}
