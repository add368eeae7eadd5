package steptypes

import (
	"strings"

	"github.com/dukex/soarbridge/pkg/identity"
)

// Class is the outcome of classifying a step type.
type Class int

const (
	ClassUnknown Class = iota
	ClassTriggerStart
	ClassUnsupported
	ClassSupported
)

func (c Class) String() string {
	switch c {
	case ClassTriggerStart:
		return "trigger-start"
	case ClassUnsupported:
		return "unsupported"
	case ClassSupported:
		return "supported"
	default:
		return "unknown"
	}
}

// Classification pairs a class with the bare identifier and its registry label.
type Classification struct {
	Class  Class
	TypeID string
	Label  string
}

// Classifier looks step types up in an immutable Registry.
type Classifier struct {
	registry *Registry
}

// NewClassifier copies reg; later changes to reg are not observed.
func NewClassifier(reg *Registry) *Classifier {
	if reg == nil {
		reg = DefaultRegistry()
	}

	return &Classifier{registry: reg.Clone()}
}

// Classify strips an IRI wrapper from stepType and reports its class.
func (c *Classifier) Classify(stepType string) Classification {
	id := BareID(stepType)

	if label, ok := c.registry.Starts[id]; ok {
		return Classification{Class: ClassTriggerStart, TypeID: id, Label: label}
	}

	if label, ok := c.registry.Unsupported[id]; ok {
		return Classification{Class: ClassUnsupported, TypeID: id, Label: label}
	}

	if label, ok := c.registry.Supported[id]; ok {
		return Classification{Class: ClassSupported, TypeID: id, Label: label}
	}

	return Classification{Class: ClassUnknown, TypeID: id}
}

// Registry returns a copy of the classifier's tables.
func (c *Classifier) Registry() *Registry {
	return c.registry.Clone()
}

// BareID removes the /api/3/workflow_step_types/ wrapper, with or without the leading slash.
func BareID(stepType string) string {
	id := strings.TrimPrefix(stepType, identity.WorkflowStepTypesPath)

	return strings.TrimPrefix(id, strings.TrimPrefix(identity.WorkflowStepTypesPath, "/"))
}
