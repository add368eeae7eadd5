package converter

import (
	"fmt"

	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/references"
)

// ReferenceWarning is a step reference that names no step of its definition. Dangling
// references are reported, never repaired, and never fail a conversion.
type ReferenceWarning struct {
	Definition string `json:"definition"`
	Field      string `json:"field"`
	Ref        string `json:"ref"`
}

func (w ReferenceWarning) String() string {
	return fmt.Sprintf("%s: %s references missing step %q", w.Definition, w.Field, w.Ref)
}

// CheckPlaybookReferences lists the dangling trigger, route and branch references of p.
func CheckPlaybookReferences(p *models.Playbook) []ReferenceWarning {
	if p == nil {
		return nil
	}

	ids := make(map[string]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step != nil {
			ids[step.UUID] = true
		}
	}

	check := newReferenceCheck(p.UUID, ids)

	if p.TriggerStep != nil {
		check.ref("triggerstep", *p.TriggerStep)
	}

	for i, route := range p.Routes {
		if route == nil {
			continue
		}

		check.ref(fmt.Sprintf("routes[%d].sourcestep", i), route.SourceStep)
		check.ref(fmt.Sprintf("routes[%d].targetstep", i), route.TargetStep)
	}

	for _, step := range p.Steps {
		if step != nil {
			check.arguments(step.UUID, step.Arguments)
		}
	}

	return check.warnings
}

// CheckWorkflowReferences lists the dangling trigger, route and branch references of w.
func CheckWorkflowReferences(w *models.Workflow) []ReferenceWarning {
	if w == nil {
		return nil
	}

	ids := make(map[string]bool, len(w.Steps))
	for _, step := range w.Steps {
		if step != nil {
			ids[step.UUID] = true
		}
	}

	check := newReferenceCheck(w.UUID, ids)

	if w.TriggerStep != nil {
		check.ref("triggerStep", *w.TriggerStep)
	}

	for i, route := range w.Routes {
		if route == nil {
			continue
		}

		check.ref(fmt.Sprintf("routes[%d].sourceStep", i), route.SourceStep)
		check.ref(fmt.Sprintf("routes[%d].targetStep", i), route.TargetStep)
	}

	for _, step := range w.Steps {
		if step != nil {
			check.arguments(step.UUID, step.Arguments)
		}
	}

	return check.warnings
}

type referenceCheck struct {
	definition string
	ids        map[string]bool
	warnings   []ReferenceWarning
}

func newReferenceCheck(definition string, ids map[string]bool) *referenceCheck {
	return &referenceCheck{definition: definition, ids: ids}
}

func (c *referenceCheck) ref(field, ref string) {
	if c.ids[identity.ExtractID(ref)] {
		return
	}

	c.warnings = append(c.warnings, ReferenceWarning{Definition: c.definition, Field: field, Ref: ref})
}

func (c *referenceCheck) arguments(stepID string, args map[string]any) {
	for _, id := range references.StepIDs(args) {
		if !c.ids[id] {
			c.warnings = append(c.warnings, ReferenceWarning{
				Definition: c.definition,
				Field:      fmt.Sprintf("steps[%s].arguments", stepID),
				Ref:        id,
			})
		}
	}
}
