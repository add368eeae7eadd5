// Package testutil provides test data builders for FSR and FAS documents.
package testutil

import (
	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/google/uuid"
)

// Step type identifiers used by the builders.
const (
	ManualStartType  = "f414d039-bb0d-4e59-9c39-a8f1e880b18a"
	OnCreateType     = "ea155646-3821-4542-9702-b246da430a8d"
	CreateRecordType = "2597053c-e718-44b4-8394-4d40fe26d357"
	CodeSnippetType  = "1fdd14cc-d6b4-4335-a3af-ab49c8ed2fd8"
	DecisionType     = "12254cf5-5db7-4b1a-8cb1-3af081924b28"
	ManualInputType  = "fc04082a-d7dc-4299-96fb-6837b1baa0fe"
	SetVariableType  = "04d0cf46-b6a8-42c4-8683-60a7eaa69e8f"
	ConnectorType    = "0bfed618-0316-11e7-93ae-92361f002671"
	UnknownType      = "99999999-aaaa-bbbb-cccc-000000000000"
)

// CreateTestStep creates an FSR Set Variable step with default values that can be overridden.
func CreateTestStep(overrides ...func(*models.WorkflowStep)) *models.WorkflowStep {
	description := "test step"

	step := &models.WorkflowStep{
		JSONLDType:  "WorkflowStep",
		Name:        "Test Step",
		Description: &description,
		Arguments:   map[string]any{"params": map[string]any{"value": "x"}},
		Status:      nil,
		Top:         "120",
		Left:        "340",
		StepType:    identity.StepTypeIRI(SetVariableType),
		Group:       nil,
		UUID:        uuid.NewString(),
	}

	for _, override := range overrides {
		override(step)
	}

	return step
}

func WithStepType(id string) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.StepType = identity.StepTypeIRI(id)
	}
}

func WithStepName(name string) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Name = name
	}
}

func WithStepID(id string) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.UUID = id
	}
}

func WithArguments(args map[string]any) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Arguments = args
	}
}

func WithPosition(top, left any) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Top = top
		s.Left = left
	}
}

// CreateTestWorkflow creates an FSR workflow holding the given steps, chained by routes.
func CreateTestWorkflow(name string, steps ...*models.WorkflowStep) *models.Workflow {
	workflow := &models.Workflow{
		JSONLDType: "Workflow",
		Name:       name,
		UUID:       uuid.NewString(),
		CreateDate: float64(1700000000),
		ModifyDate: float64(1700000100),
		Priority:   identity.PicklistIRI("2b563c61-ae2c-41c0-a85a-c9709585e3f2"),
		Steps:      steps,
		Routes:     []*models.WorkflowRoute{},
		CreateUser: identity.PersonIRI("user-1"),
		ModifyUser: identity.PersonIRI("user-2"),
	}

	for i := 1; i < len(steps); i++ {
		workflow.Routes = append(workflow.Routes, &models.WorkflowRoute{
			JSONLDType: "WorkflowRoute",
			SourceStep: identity.WorkflowStepIRI(steps[i-1].UUID),
			TargetStep: identity.WorkflowStepIRI(steps[i].UUID),
			UUID:       uuid.NewString(),
		})
	}

	return workflow
}

// CreateTestWorkflowExport wraps workflows in a single-collection FSR export.
func CreateTestWorkflowExport(workflows ...*models.Workflow) *models.WorkflowExport {
	return &models.WorkflowExport{
		Type: models.WorkflowCollectionsType,
		Data: []*models.WorkflowCollection{
			{
				Name:       "Test Collection",
				UUID:       uuid.NewString(),
				CreateDate: float64(1700000000),
				ModifyDate: float64(1700000000),
				Workflows:  workflows,
			},
		},
	}
}

// CreateTestPlaybookStep creates a FAS step with default values that can be overridden.
func CreateTestPlaybookStep(overrides ...func(*models.PlaybookStep)) *models.PlaybookStep {
	step := &models.PlaybookStep{
		UUID:       uuid.NewString(),
		Name:       "Test Step",
		Arguments:  map[string]any{},
		Top:        "0",
		Left:       "0",
		StepType:   SetVariableType,
		JSONLDType: "WorkflowStep",
	}

	for _, override := range overrides {
		override(step)
	}

	return step
}

// CreateTestPlaybookExport wraps playbooks in a single-collection FAS export.
func CreateTestPlaybookExport(playbooks ...*models.Playbook) *models.PlaybookExport {
	return &models.PlaybookExport{
		Type: models.PlaybookCollectionsType,
		Data: []*models.PlaybookCollection{
			{
				UUID:       uuid.NewString(),
				Name:       "Test Collection",
				CreateDate: "2023-11-14T22:13:20.000Z",
				ModifyDate: "2023-11-14T22:13:20.000Z",
				Playbooks:  playbooks,
			},
		},
	}
}
