// Package fallback replaces steps that have no equivalent on the FAS side with placeholder
// steps whose payload carries the complete original step as a JSON document.
package fallback

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/payload"
)

// Argument keys holding the preserved original step.
const (
	PreservedKey      = "_tmp"
	OriginalStartKey  = "_originalStartStep"
	UnsupportedPrefix = "UNSUPPORTED: "
	UnknownPrefix     = "UNKNOWN: "
)

var (
	ErrNotEncoded       = errors.New("step carries no preserved original")
	ErrMalformedPayload = errors.New("preserved original is not a JSON document")
)

// PreservedStep is the self-describing document embedded in a placeholder step.
type PreservedStep struct {
	JSONLDType     string         `json:"@type,omitempty"`
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	StepType       string         `json:"stepType"`
	Arguments      map[string]any `json:"arguments"`
	Status         any            `json:"status"`
	Top            any            `json:"top"`
	Left           any            `json:"left"`
	Group          any            `json:"group"`
	UUID           string         `json:"uuid"`
	ConversionNote string         `json:"_conversionNote"`
}

func preserve(step *models.WorkflowStep, note string) *PreservedStep {
	return &PreservedStep{
		JSONLDType:     step.JSONLDType,
		Name:           step.Name,
		Description:    step.Description,
		StepType:       step.StepType,
		Arguments:      payload.OrEmpty(payload.Clone(step.Arguments)),
		Status:         payload.CloneValue(step.Status),
		Top:            step.Top,
		Left:           step.Left,
		Group:          payload.CloneValue(step.Group),
		UUID:           step.UUID,
		ConversionNote: note,
	}
}

func (p *PreservedStep) encode() (string, error) {
	blob, err := payload.Marshal(p, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode original step %s: %w", p.UUID, err)
	}

	return blob, nil
}

// Restore rebuilds the FSR step the document was taken from.
func (p *PreservedStep) Restore() *models.WorkflowStep {
	return &models.WorkflowStep{
		JSONLDType:  p.JSONLDType,
		Name:        p.Name,
		Description: p.Description,
		Arguments:   payload.Clone(p.Arguments),
		Status:      p.Status,
		Top:         p.Top,
		Left:        p.Left,
		StepType:    p.StepType,
		Group:       p.Group,
		UUID:        p.UUID,
	}
}

// Decode extracts the preserved original from a placeholder step.
func Decode(step *models.PlaybookStep) (*PreservedStep, models.StepCategory, error) {
	category := models.CategoryFlattenedTrigger

	raw, ok := step.Arguments[OriginalStartKey]
	if !ok {
		raw, ok = step.Arguments[PreservedKey]
		if !ok {
			return nil, "", ErrNotEncoded
		}

		category = models.CategoryUnsupported
		if strings.HasPrefix(step.Name, UnknownPrefix) {
			category = models.CategoryUnknown
		}
	}

	blob, ok := raw.(string)
	if !ok {
		return nil, "", fmt.Errorf("step %s: %w", step.UUID, ErrMalformedPayload)
	}

	var preserved PreservedStep
	if err := json.Unmarshal([]byte(blob), &preserved); err != nil {
		return nil, "", fmt.Errorf("step %s: %w: %w", step.UUID, ErrMalformedPayload, err)
	}

	return &preserved, category, nil
}

// IsEncoded reports whether step is a placeholder produced by this package.
func IsEncoded(step *models.PlaybookStep) bool {
	_, start := step.Arguments[OriginalStartKey]
	_, tmp := step.Arguments[PreservedKey]

	return start || tmp
}
