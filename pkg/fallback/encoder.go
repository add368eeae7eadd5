package fallback

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/payload"
	"github.com/dukex/soarbridge/pkg/report"
	"github.com/dukex/soarbridge/pkg/steptypes"
)

const (
	stepJSONLDType   = "WorkflowStep"
	unknownStartName = "Unknown Start"
	defaultStartName = "Start"
)

var ErrSupportedStep = errors.New("supported steps are mapped directly, not encoded")

// Encoder builds placeholder steps and records each one on its Recorder.
type Encoder struct {
	ids      identity.Generator
	recorder report.Recorder
}

func NewEncoder(ids identity.Generator, recorder report.Recorder) *Encoder {
	return &Encoder{ids: ids, recorder: recorder}
}

// Encode dispatches on the step's classification.
func (e *Encoder) Encode(step *models.WorkflowStep, class steptypes.Classification, def report.Definition) (*models.PlaybookStep, error) {
	switch class.Class {
	case steptypes.ClassTriggerStart:
		return e.FlattenTrigger(step, class, def)
	case steptypes.ClassUnsupported:
		return e.Unsupported(step, class, def)
	case steptypes.ClassUnknown:
		return e.Unknown(step, class, def)
	default:
		return nil, fmt.Errorf("step %s (%s): %w", step.UUID, class.Label, ErrSupportedStep)
	}
}

// Unsupported replaces a step whose type FAS is known not to support with a Set Variable step.
func (e *Encoder) Unsupported(step *models.WorkflowStep, class steptypes.Classification, def report.Definition) (*models.PlaybookStep, error) {
	label := class.Label
	if label == "" {
		label = "Unknown"
	}

	note := fmt.Sprintf("Original %s step. This step type is known to be unsupported in FAS. "+
		"Manual recreation required. All original fields preserved for reference.", label)
	description := fmt.Sprintf("Original step type: %s. This step is not supported in FAS and has been "+
		"converted to a Set Variable step. Original configuration preserved in _tmp variable as JSON string.", label)

	out, err := e.placeholder(step, def, UnsupportedPrefix, label, note, description)
	if err != nil {
		return nil, err
	}

	e.recorder.Record(def, report.Item{
		Name:     step.Name,
		UUID:     step.UUID,
		Type:     label,
		Category: models.CategoryUnsupported,
	})

	return out, nil
}

// Unknown replaces a step whose type is in no registry with a Set Variable step.
func (e *Encoder) Unknown(step *models.WorkflowStep, class steptypes.Classification, def report.Definition) (*models.PlaybookStep, error) {
	label := report.UnknownTypeLabel

	note := fmt.Sprintf("Original %s step (UUID: %s). This step type was unknown to the converter. "+
		"It may be a new FSR step type or a custom step. Verify support in FAS.", label, class.TypeID)
	description := fmt.Sprintf("Unknown step type (UUID: %s). This step type is not recognized by the converter. "+
		"Original configuration preserved in _tmp variable as JSON string. "+
		"Please verify if this step type is supported in FAS before importing.", class.TypeID)

	out, err := e.placeholder(step, def, UnknownPrefix, label, note, description)
	if err != nil {
		return nil, err
	}

	e.recorder.Record(def, report.Item{
		Name:         step.Name,
		UUID:         step.UUID,
		StepTypeUUID: class.TypeID,
		Category:     models.CategoryUnknown,
	})

	return out, nil
}

// FlattenTrigger replaces an FSR trigger-start step with a FAS referenced start.
func (e *Encoder) FlattenTrigger(step *models.WorkflowStep, class steptypes.Classification, def report.Definition) (*models.PlaybookStep, error) {
	label := class.Label
	if label == "" {
		label = unknownStartName
	}

	args := payload.OrEmpty(step.Arguments)

	blob, err := preserve(step, fmt.Sprintf("Original %s step. All fields preserved for reference.", label)).encode()
	if err != nil {
		return nil, err
	}

	description := describeTrigger(label, args)

	name := step.Name
	if name == "" {
		name = defaultStartName
	}

	out := &models.PlaybookStep{
		UUID:        e.stepID(step),
		Workflow:    def.UUID,
		Name:        name,
		Description: &description,
		Arguments: map[string]any{
			"__triggerLimit": true,
			"step_variables": map[string]any{
				"input": map[string]any{
					"params": inputParams(args),
				},
			},
			"triggerOnSource":    true,
			"triggerOnReplicate": false,
			OriginalStartKey:     blob,
		},
		Status:        payload.OrNil(step.Status),
		Top:           payload.Coordinate(step.Top),
		Left:          payload.Coordinate(step.Left),
		WorkflowGroup: payload.OrNil(step.Group),
		StepType:      steptypes.ReferencedStartStepType,
		JSONLDType:    stepJSONLDType,
	}

	e.recorder.Record(def, report.Item{
		Name:     step.Name,
		UUID:     step.UUID,
		Type:     label,
		Category: models.CategoryFlattenedTrigger,
	})

	return out, nil
}

func (e *Encoder) placeholder(step *models.WorkflowStep, def report.Definition, prefix, label, note, description string) (*models.PlaybookStep, error) {
	blob, err := preserve(step, note).encode()
	if err != nil {
		return nil, err
	}

	name := step.Name
	if name == "" {
		name = label
	}

	return &models.PlaybookStep{
		UUID:          e.stepID(step),
		Workflow:      def.UUID,
		Name:          prefix + name,
		Description:   &description,
		Arguments:     map[string]any{PreservedKey: blob},
		Status:        payload.OrNil(step.Status),
		Top:           payload.Coordinate(step.Top),
		Left:          payload.Coordinate(step.Left),
		WorkflowGroup: payload.OrNil(step.Group),
		StepType:      steptypes.SetVariableStepType,
		JSONLDType:    stepJSONLDType,
	}, nil
}

func (e *Encoder) stepID(step *models.WorkflowStep) string {
	if step.UUID != "" {
		return step.UUID
	}

	return e.ids.NewID()
}

// inputParams lists the declared input parameter names of a trigger's variable block.
func inputParams(args map[string]any) []any {
	params := []any{}

	variables, _ := args["step_variables"].(map[string]any)
	input, _ := variables["input"].(map[string]any)

	switch declared := input["params"].(type) {
	case map[string]any:
		for _, name := range slices.Sorted(maps.Keys(declared)) {
			params = append(params, name)
		}
	case []any:
		for _, name := range declared {
			if s, ok := name.(string); ok && s != "" {
				params = append(params, s)
			}
		}
	}

	return params
}

func describeTrigger(label string, args map[string]any) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Converted from %s step. ", label)

	if payload.Truthy(args["resource"]) || payload.Truthy(args["resources"]) {
		resources := args["resources"]
		if !payload.Truthy(resources) {
			resources = []any{args["resource"]}
		}

		encoded, err := payload.Marshal(resources, "")
		if err != nil {
			encoded = fmt.Sprint(resources)
		}

		fmt.Fprintf(&b, "Original trigger was for resource(s): %s. ", encoded)
	}

	if route := args["route"]; payload.Truthy(route) {
		fmt.Fprintf(&b, "Original route: %v. ", route)
	}

	if payload.Truthy(args["fieldbasedtrigger"]) {
		b.WriteString("Had field-based trigger conditions. ")
	}

	b.WriteString("FAS requires referenced playbooks only - this playbook must be called by another playbook " +
		"or via API. Original configuration preserved in _originalStartStep as JSON string.")

	return b.String()
}
