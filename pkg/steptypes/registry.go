// Package steptypes classifies FSR step types against static registries of trigger-start,
// known-unsupported and known-supported identifiers.
package steptypes

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Well-known step type identifiers shared by both platforms.
const (
	SetVariableStepType     = "04d0cf46-b6a8-42c4-8683-60a7eaa69e8f"
	ReferencedStartStepType = "b348f017-9a94-471f-87f8-ce88b6a7ad62"
	DecisionStepType        = "12254cf5-5db7-4b1a-8cb1-3af081924b28"
	ManualInputStepType     = "fc04082a-d7dc-4299-96fb-6837b1baa0fe"
	ConnectorStepType       = "0bfed618-0316-11e7-93ae-92361f002671"
)

var (
	ErrOverlappingRegistries = errors.New("step type registered in more than one table")
	ErrEmptyIdentifier       = errors.New("step type identifier cannot be empty")
)

// Registry maps step type identifiers to human-readable labels, one table per class.
type Registry struct {
	Starts      map[string]string `yaml:"starts"      json:"starts"`
	Unsupported map[string]string `yaml:"unsupported" json:"unsupported"`
	Supported   map[string]string `yaml:"supported"   json:"supported"`
}

// DefaultRegistry returns the built-in tables.
func DefaultRegistry() *Registry {
	return &Registry{
		Starts: map[string]string{
			"f414d039-bb0d-4e59-9c39-a8f1e880b18a": "Manual Start",
			"ea155646-3821-4542-9702-b246da430a8d": "On Create",
			"9300bf69-5063-486d-b3a6-47eb9da24872": "On Update",
			"df26c7a2-4166-4ca5-91e5-548e24c01b5f": "API Endpoint",
		},
		Unsupported: map[string]string{
			"2597053c-e718-44b4-8394-4d40fe26d357": "Create Record",
			"b593663d-7d13-40ce-a3a3-96dece928722": "Update Record",
			"b593663d-7d13-40ce-a3a3-96dece928770": "Find Record",
			"1fdd14cc-d6b4-4335-a3af-ab49c8ed2fd8": "Code Snippet",
			"7b221880-716b-4726-a2ca-5e568d330b3e": "Ingest Bulk Feed",
		},
		Supported: map[string]string{
			ReferencedStartStepType:                "Start/Trigger (FAS Referenced)",
			SetVariableStepType:                    "Set Variables",
			DecisionStepType:                       "Decision",
			"74932bdc-b8b6-4d24-88c4-1a4dfbc524f3": "Reference Playbook",
			"6832e556-b9c7-497a-babe-feda3bd27dbf": "Wait",
			ManualInputStepType:                    "Manual Input",
			ConnectorStepType:                      "Connector",
			"0109f35d-090b-4a2b-bd8a-94cbc3508562": "Utility/No-Op",
			"0bfed618-0316-11e7-93ae-92361f002675": "Email",
			"0bfed618-0316-11e7-93ae-92361f002674": "Attachment",
		},
	}
}

// Clone returns a deep copy so callers cannot mutate a registry held by a Classifier.
func (r *Registry) Clone() *Registry {
	return &Registry{
		Starts:      maps.Clone(nonNil(r.Starts)),
		Unsupported: maps.Clone(nonNil(r.Unsupported)),
		Supported:   maps.Clone(nonNil(r.Supported)),
	}
}

// Validate checks that the three tables are disjoint and keyed by non-empty identifiers.
func (r *Registry) Validate() error {
	seen := map[string]string{}

	for _, table := range []struct {
		name    string
		entries map[string]string
	}{
		{"starts", r.Starts},
		{"unsupported", r.Unsupported},
		{"supported", r.Supported},
	} {
		for _, id := range slices.Sorted(maps.Keys(table.entries)) {
			if id == "" {
				return fmt.Errorf("%s: %w", table.name, ErrEmptyIdentifier)
			}

			if other, ok := seen[id]; ok {
				return fmt.Errorf("%s in %s and %s: %w", id, other, table.name, ErrOverlappingRegistries)
			}

			seen[id] = table.name
		}
	}

	return nil
}

// Merge overlays other on top of r. An identifier moved to another table leaves its old one.
func (r *Registry) Merge(other *Registry) *Registry {
	merged := r.Clone()

	overlay := func(dst map[string]string, src map[string]string) {
		for id, label := range src {
			delete(merged.Starts, id)
			delete(merged.Unsupported, id)
			delete(merged.Supported, id)
			dst[id] = label
		}
	}

	overlay(merged.Starts, other.Starts)
	overlay(merged.Unsupported, other.Unsupported)
	overlay(merged.Supported, other.Supported)

	return merged
}

// LoadRegistry reads a YAML overlay and merges it onto the default tables.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read step type registry %s: %w", path, err)
	}

	return ParseRegistry(data)
}

// ParseRegistry decodes a YAML overlay and merges it onto the default tables.
func ParseRegistry(data []byte) (*Registry, error) {
	var overlay Registry

	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse step type registry: %w", err)
	}

	registry := DefaultRegistry().Merge(&overlay)

	if err := registry.Validate(); err != nil {
		return nil, err
	}

	return registry, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}

	return m
}
