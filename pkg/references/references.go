// Package references rewrites the step references embedded in step argument payloads
// to the encoding the target schema expects.
package references

import (
	"strings"

	"github.com/dukex/soarbridge/pkg/payload"
)

// Convention is a reference encoding for workflow step targets.
type Convention int

const (
	// Absolute is FSR's encoding: /api/3/workflow_steps/{id}.
	Absolute Convention = iota
	// Relative is FAS's encoding: api/3/workflow_steps/{id}.
	Relative
)

const relativePrefix = "api/3/workflow_steps/"

// Normalize re-encodes a bare, relative or absolute step reference in convention c.
func Normalize(ref string, c Convention) string {
	id := StepID(ref)

	if c == Absolute {
		return "/" + relativePrefix + id
	}

	return relativePrefix + id
}

// StepID returns the bare identifier of a step reference in any encoding.
func StepID(ref string) string {
	if id, ok := strings.CutPrefix(ref, "/"+relativePrefix); ok {
		return id
	}

	if id, ok := strings.CutPrefix(ref, relativePrefix); ok {
		return id
	}

	return ref
}

// Rewrite returns a deep copy of args whose decision-branch targets
// (conditions[].step_iri) and manual-input routing targets
// (response_mapping.options[].step_uuid) are encoded in convention c.
func Rewrite(args map[string]any, c Convention) map[string]any {
	out := payload.Clone(args)

	eachTarget(out, func(holder map[string]any, key string, ref string) {
		holder[key] = Normalize(ref, c)
	})

	return out
}

// StepIDs lists the bare identifiers of every step referenced by args, in payload order.
func StepIDs(args map[string]any) []string {
	var ids []string

	eachTarget(args, func(_ map[string]any, _ string, ref string) {
		ids = append(ids, StepID(ref))
	})

	return ids
}

func eachTarget(args map[string]any, fn func(holder map[string]any, key string, ref string)) {
	if args == nil {
		return
	}

	if conditions, ok := args["conditions"].([]any); ok {
		visit(conditions, "step_iri", fn)
	}

	mapping, ok := args["response_mapping"].(map[string]any)
	if !ok {
		return
	}

	if options, ok := mapping["options"].([]any); ok {
		visit(options, "step_uuid", fn)
	}
}

func visit(items []any, key string, fn func(holder map[string]any, key string, ref string)) {
	for _, item := range items {
		holder, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if ref, ok := holder[key].(string); ok && ref != "" {
			fn(holder, key, ref)
		}
	}
}
