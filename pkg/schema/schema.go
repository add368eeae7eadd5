// Package schema checks that an export document has the structure the converter walks
// before any conversion runs.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidStructure = errors.New("document structure is invalid")

// ValidationError lists every structural problem found in a document.
type ValidationError struct {
	Direction models.Direction
	Problems  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidStructure
}

// Validator holds the compiled schemas of both export formats.
type Validator struct {
	schemas map[models.Direction]*gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	v := &Validator{schemas: map[models.Direction]*gojsonschema.Schema{}}

	for direction, definition := range map[models.Direction]map[string]any{
		models.DirectionFSRToFAS: workflowExportSchema(),
		models.DirectionFASToFSR: playbookExportSchema(),
	} {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", direction, err)
		}

		v.schemas[direction] = compiled
	}

	return v, nil
}

// Validate checks raw against the source schema of direction. The top-level type field is
// left to the converter, which reports a mismatch with its own error.
func (v *Validator) Validate(direction models.Direction, raw []byte) error {
	compiled, ok := v.schemas[direction]
	if !ok {
		return fmt.Errorf("no schema for direction %q", direction)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Direction: direction, Problems: []string{err.Error()}}
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return &ValidationError{Direction: direction, Problems: problems}
	}

	return nil
}

func objectList(items map[string]any) map[string]any {
	return map[string]any{
		"type":  []any{"array", "null"},
		"items": items,
	}
}

// objectPayload accepts an object, null, or the empty array exporters write for an empty object.
func objectPayload() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": []any{"object", "null"}},
			map[string]any{"type": "array", "maxItems": 0},
		},
	}
}

func stepSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"uuid":      map[string]any{"type": []any{"string", "null"}},
			"name":      map[string]any{"type": []any{"string", "null"}},
			"stepType":  map[string]any{"type": []any{"string", "null"}},
			"arguments": objectPayload(),
		},
	}
}

func workflowExportSchema() map[string]any {
	route := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sourceStep": map[string]any{"type": []any{"string", "null"}},
			"targetStep": map[string]any{"type": []any{"string", "null"}},
			"data":       objectPayload(),
		},
	}

	workflow := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"uuid":        map[string]any{"type": []any{"string", "null"}},
			"name":        map[string]any{"type": []any{"string", "null"}},
			"triggerStep": map[string]any{"type": []any{"string", "null"}},
			"steps":       objectList(stepSchema()),
			"routes":      objectList(route),
		},
	}

	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"data": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"uuid":      map[string]any{"type": []any{"string", "null"}},
						"workflows": objectList(workflow),
					},
				},
			},
		},
	}
}

func playbookExportSchema() map[string]any {
	route := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sourcestep": map[string]any{"type": []any{"string", "null"}},
			"targetstep": map[string]any{"type": []any{"string", "null"}},
			"data":       objectPayload(),
		},
	}

	playbook := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"uuid":        map[string]any{"type": []any{"string", "null"}},
			"name":        map[string]any{"type": []any{"string", "null"}},
			"triggerstep": map[string]any{"type": []any{"string", "null"}},
			"steps":       objectList(stepSchema()),
			"routes":      objectList(route),
		},
	}

	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"data": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"uuid":      map[string]any{"type": []any{"string", "null"}},
						"playbooks": objectList(playbook),
					},
				},
			},
			"versions": map[string]any{"type": []any{"array", "null"}},
		},
	}
}
