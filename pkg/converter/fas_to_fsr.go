package converter

import (
	"math"
	"strconv"

	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/payload"
	"github.com/dukex/soarbridge/pkg/references"
	"github.com/dukex/soarbridge/pkg/steptypes"
)

const (
	workflowCollectionContext = "/api/3/contexts/WorkflowCollection"

	defaultPriorityPicklist = "2b563c61-ae2c-41c0-a85a-c9709585e3f2"
	playbookOriginPicklist  = "15c1e8c9-22bf-4e66-8fbb-0a502d4a4a3f"

	defaultConnectorVersion = "1.0.0"

	// Steps closer to the canvas origin than this are hidden behind FSR's side panels.
	minCanvasTop  = 30
	minCanvasLeft = 300
)

// FASToFSR converts a FAS playbook_collections export to an FSR workflow_collections export.
func (c *Converter) FASToFSR(doc *models.PlaybookExport) (*models.WorkflowExport, error) {
	if doc == nil || doc.Type != models.PlaybookCollectionsType {
		got := ""
		if doc != nil {
			got = doc.Type
		}

		return nil, newFormatError("FASToFSR", models.PlaybookCollectionsType, got, fasFormatMessage)
	}

	out := &models.WorkflowExport{
		Type:         models.WorkflowCollectionsType,
		Data:         make([]*models.WorkflowCollection, 0, len(doc.Data)),
		ExportedTags: []any{},
	}

	for _, collection := range doc.Data {
		if collection == nil {
			continue
		}

		out.Data = append(out.Data, c.toWorkflowCollection(collection))
	}

	c.logger.Debug("Converted FAS export", "collections", len(out.Data))

	return out, nil
}

func (c *Converter) toWorkflowCollection(collection *models.PlaybookCollection) *models.WorkflowCollection {
	out := &models.WorkflowCollection{
		Context:     workflowCollectionContext,
		JSONLDType:  "WorkflowCollection",
		Name:        collection.Name,
		Description: optionalString(collection.Description),
		Visible:     boolOr(collection.Visible, true),
		Image:       payload.OrNil(collection.Image),
		UUID:        collection.UUID,
		ID:          c.ids.NewNumericID(),
		CreateDate:  c.times.ToEpochSeconds(collection.CreateDate),
		ModifyDate:  c.times.ToEpochSeconds(collection.ModifyDate),
		DeletedAt:   payload.OrNil(collection.DeletedAt),
		ImportedBy:  importedByList(collection.ImportedBy),
		RecordTags:  cloneList(collection.Tags),
		Workflows:   make([]*models.Workflow, 0, len(collection.Playbooks)),
	}

	for _, playbook := range collection.Playbooks {
		if playbook == nil {
			continue
		}

		out.Workflows = append(out.Workflows, c.toWorkflow(playbook, out))
	}

	return out
}

func importedByList(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return []any{}
	}

	return cloneList(list)
}

func (c *Converter) toWorkflow(playbook *models.Playbook, collection *models.WorkflowCollection) *models.Workflow {
	workflow := &models.Workflow{
		JSONLDType:            "Workflow",
		TriggerLimit:          payload.OrNil(playbook.TriggerLimit),
		Name:                  playbook.Name,
		AliasName:             optionalString(playbook.AliasName),
		Tag:                   nil,
		Description:           optionalString(playbook.Description),
		IsActive:              boolOr(playbook.IsActive, true),
		Debug:                 boolOr(playbook.Debug, false),
		SingleRecordExecution: boolOr(playbook.SingleRecordExecution, false),
		RemoteExecutableFlag:  boolOr(playbook.RemoteExecutableFlag, false),
		Parameters:            payload.CloneValue(payload.OrNil(playbook.Parameters)),
		Synchronous:           boolOr(playbook.Synchronous, false),
		LastModifyDate:        payload.Or(playbook.LastModifyDate, c.now().Unix()),
		Collection:            identity.WorkflowCollectionIRI(collection.UUID),
		Versions:              []any{},
		TriggerStep:           fsrTriggerStep(playbook.TriggerStep),
		Steps:                 make([]*models.WorkflowStep, 0, len(playbook.Steps)),
		Routes:                make([]*models.WorkflowRoute, 0, len(playbook.Routes)),
		Groups:                cloneList(playbook.Groups),
		Priority:              identity.PicklistIRI(defaultPriorityPicklist),
		PlaybookOrigin:        identity.PicklistIRI(playbookOriginPicklist),
		IsEditable:            boolOr(nil, true),
		UUID:                  c.newID(playbook.UUID),
		ID:                    c.ids.NewNumericID(),
		CreateUser:            identity.PersonIRI(c.newID(identity.ExtractID(playbook.CreateUser))),
		CreateDate:            c.times.ToEpochSeconds(playbook.CreateDate),
		ModifyUser:            identity.PersonIRI(c.newID(identity.ExtractID(playbook.ModifyUser))),
		ModifyDate:            c.times.ToEpochSeconds(playbook.ModifyDate),
		Owners:                []any{},
		IsPrivate:             boolOr(playbook.IsPrivate, false),
		DeletedAt:             payload.OrNil(playbook.DeletedAt),
		ImportedBy:            []any{},
		RecordTags:            cloneList(playbook.Tags),
	}

	topOffset, leftOffset := canvasOffset(playbook.Steps)

	for _, step := range playbook.Steps {
		if step == nil {
			continue
		}

		workflow.Steps = append(workflow.Steps, c.toWorkflowStep(step, topOffset, leftOffset))
	}

	for _, route := range playbook.Routes {
		if route == nil {
			continue
		}

		workflow.Routes = append(workflow.Routes, c.toWorkflowRoute(route))
	}

	for _, w := range CheckWorkflowReferences(workflow) {
		c.logger.Warn("Dangling step reference", "workflow", workflow.UUID, "field", w.Field, "ref", w.Ref)
	}

	return workflow
}

func fsrTriggerStep(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}

	iri := references.Normalize(*ref, references.Absolute)

	return &iri
}

// canvasOffset computes the shift that moves the top-most step to at least minCanvasTop and
// the left-most step to at least minCanvasLeft. It is applied to every step of a playbook.
func canvasOffset(steps []*models.PlaybookStep) (int, int) {
	minTop, minLeft := math.MaxInt, math.MaxInt

	for _, step := range steps {
		if step == nil {
			continue
		}

		minTop = min(minTop, payload.Int(step.Top))
		minLeft = min(minLeft, payload.Int(step.Left))
	}

	var top, left int
	if minTop < minCanvasTop {
		top = minCanvasTop - minTop
	}

	if minLeft < minCanvasLeft {
		left = minCanvasLeft - minLeft
	}

	return top, left
}

func (c *Converter) toWorkflowStep(step *models.PlaybookStep, topOffset, leftOffset int) *models.WorkflowStep {
	args := references.Rewrite(payload.OrEmpty(step.Arguments), references.Absolute)
	if payload.Truthy(args["connector"]) {
		args = fsrConnectorArguments(args)
	}

	return &models.WorkflowStep{
		JSONLDType:  "WorkflowStep",
		Name:        step.Name,
		Description: optionalString(step.Description),
		Arguments:   args,
		Status:      payload.CloneValue(payload.OrNil(step.Status)),
		Top:         strconv.Itoa(payload.Int(step.Top) + topOffset),
		Left:        strconv.Itoa(payload.Int(step.Left) + leftOffset),
		StepType:    identity.StepTypeIRI(steptypes.BareID(step.StepType)),
		Group:       payload.CloneValue(payload.OrNil(step.WorkflowGroup)),
		UUID:        c.newID(step.UUID),
	}
}

// fsrConnectorArguments reduces a connector payload to the fields FSR imports.
func fsrConnectorArguments(args map[string]any) map[string]any {
	params, _ := args["params"].(map[string]any)

	return map[string]any{
		"config":         payload.Or(args["config"], ""),
		"version":        payload.Or(args["version"], defaultConnectorVersion),
		"from_str":       payload.Or(args["from_str"], payload.Or(params["from"], "")),
		"connector":      args["connector"],
		"step_variables": payload.Or(args["step_variables"], []any{}),
	}
}

func (c *Converter) toWorkflowRoute(route *models.PlaybookRoute) *models.WorkflowRoute {
	return &models.WorkflowRoute{
		JSONLDType: "WorkflowRoute",
		Name:       route.Name,
		TargetStep: references.Normalize(route.TargetStep, references.Absolute),
		SourceStep: references.Normalize(route.SourceStep, references.Absolute),
		Label:      payload.CloneValue(payload.OrNil(route.Label())),
		IsExecuted: boolOr(route.IsExecuted, false),
		Group:      payload.CloneValue(payload.OrNil(route.WorkflowGroup)),
		UUID:       c.newID(route.UUID),
	}
}
