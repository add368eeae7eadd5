package converter

import (
	"fmt"
	"strings"

	"github.com/dukex/soarbridge/pkg/fallback"
	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/payload"
	"github.com/dukex/soarbridge/pkg/references"
	"github.com/dukex/soarbridge/pkg/report"
	"github.com/dukex/soarbridge/pkg/steptypes"
)

const unknownStepName = "Unknown"

// fsrToFAS carries the per-call state of one FSR->FAS conversion.
type fsrToFAS struct {
	*Converter

	collector *report.Collector
	encoder   *fallback.Encoder
}

// FSRToFAS converts an FSR workflow_collections export to a FAS playbook_collections export.
// The result carries one version per playbook and a summary of every replaced step.
func (c *Converter) FSRToFAS(doc *models.WorkflowExport) (*models.PlaybookExport, error) {
	if doc == nil || doc.Type != models.WorkflowCollectionsType {
		got := ""
		if doc != nil {
			got = doc.Type
		}

		return nil, newFormatError("FSRToFAS", models.WorkflowCollectionsType, got, fsrFormatMessage)
	}

	collector := report.NewCollector()
	run := &fsrToFAS{
		Converter: c,
		collector: collector,
		encoder:   fallback.NewEncoder(c.ids, collector),
	}

	out := &models.PlaybookExport{
		Type:     models.PlaybookCollectionsType,
		Data:     make([]*models.PlaybookCollection, 0, len(doc.Data)),
		Versions: []*models.Version{},
	}

	for _, collection := range doc.Data {
		if collection == nil {
			continue
		}

		converted, versions, err := run.toPlaybookCollection(collection)
		if err != nil {
			return nil, err
		}

		out.Data = append(out.Data, converted)
		out.Versions = append(out.Versions, versions...)
	}

	out.ConversionSummary = collector.Summary()

	c.logger.Debug("Converted FSR export",
		"collections", len(out.Data),
		"playbooks", len(out.Versions),
		"replaced_steps", out.ConversionSummary.Total())

	return out, nil
}

func (r *fsrToFAS) toPlaybookCollection(collection *models.WorkflowCollection) (*models.PlaybookCollection, []*models.Version, error) {
	out := &models.PlaybookCollection{
		IRI:         identity.PlaybookCollectionIRI(collection.UUID),
		UUID:        collection.UUID,
		CreateDate:  r.times.ToISO8601(collection.CreateDate),
		ModifyDate:  r.times.ToISO8601(collection.ModifyDate),
		DeletedAt:   payload.OrNil(collection.DeletedAt),
		Name:        collection.Name,
		Description: optionalString(collection.Description),
		Visible:     boolOr(collection.Visible, true),
		Image:       payload.OrNil(collection.Image),
		ImportedBy:  payload.CloneValue(payload.Or(collection.ImportedBy, map[string]any{})),
		CreateUser:  r.newID(identity.ExtractID(collection.CreateUser)),
		ModifyUser:  r.newID(identity.ExtractID(collection.ModifyUser)),
		Tags:        cloneList(collection.RecordTags),
		JSONLDType:  "WorkflowCollection",
		Playbooks:   make([]*models.Playbook, 0, len(collection.Workflows)),
	}

	versions := make([]*models.Version, 0, len(collection.Workflows))

	for _, workflow := range collection.Workflows {
		if workflow == nil {
			continue
		}

		playbook, err := r.toPlaybook(workflow, out)
		if err != nil {
			return nil, nil, err
		}

		out.Playbooks = append(out.Playbooks, playbook)
		versions = append(versions, r.newVersion(playbook))
	}

	return out, versions, nil
}

func collectionRef(collection *models.PlaybookCollection) *models.CollectionRef {
	return &models.CollectionRef{
		IRI:         collection.IRI,
		UUID:        collection.UUID,
		CreateDate:  collection.CreateDate,
		ModifyDate:  collection.ModifyDate,
		DeletedAt:   collection.DeletedAt,
		Name:        collection.Name,
		Description: optionalString(collection.Description),
		Visible:     boolOr(collection.Visible, true),
		Image:       collection.Image,
		ImportedBy:  payload.CloneValue(collection.ImportedBy),
		CreateUser:  collection.CreateUser,
		ModifyUser:  collection.ModifyUser,
		Tags:        cloneList(collection.Tags),
		JSONLDType:  collection.JSONLDType,
	}
}

func (r *fsrToFAS) toPlaybook(workflow *models.Workflow, collection *models.PlaybookCollection) (*models.Playbook, error) {
	id := r.newID(workflow.UUID)

	playbook := &models.Playbook{
		IRI:                   identity.PlaybookIRI(id),
		UUID:                  id,
		Name:                  strings.TrimPrefix(workflow.Name, "> "),
		CreateDate:            r.times.ToISO8601(workflow.CreateDate),
		ModifyDate:            r.times.ToISO8601(workflow.ModifyDate),
		Priority:              identity.Priority(workflow.Priority),
		TriggerLimit:          payload.OrNil(workflow.TriggerLimit),
		Steps:                 make([]*models.PlaybookStep, 0, len(workflow.Steps)),
		Routes:                make([]*models.PlaybookRoute, 0, len(workflow.Routes)),
		Groups:                cloneList(workflow.Groups),
		AliasName:             optionalString(workflow.AliasName),
		Tags:                  cloneList(workflow.RecordTags),
		Description:           optionalString(workflow.Description),
		IsActive:              boolOr(workflow.IsActive, false),
		Debug:                 boolOr(workflow.Debug, false),
		SingleRecordExecution: boolOr(workflow.SingleRecordExecution, false),
		RemoteExecutableFlag:  boolOr(workflow.RemoteExecutableFlag, false),
		Parameters:            payload.CloneValue(payload.OrNil(workflow.Parameters)),
		Synchronous:           boolOr(workflow.Synchronous, false),
		IsPrivate:             boolOr(workflow.IsPrivate, false),
		Pinned:                boolOr(workflow.Pinned, false),
		LastModifyDate:        payload.Or(workflow.LastModifyDate, r.now().Unix()),
		DeletedAt:             payload.OrNil(workflow.DeletedAt),
		ImportedBy:            payload.CloneValue(payload.OrNil(workflow.ImportedBy)),
		Collection:            collectionRef(collection),
		JSONLDType:            "Workflow",
	}

	def := report.Definition{Name: playbook.Name, UUID: playbook.UUID}

	for _, step := range workflow.Steps {
		if step == nil {
			continue
		}

		converted, err := r.toPlaybookStep(step, def)
		if err != nil {
			return nil, fmt.Errorf("failed to convert step %s of workflow %s: %w", step.UUID, id, err)
		}

		playbook.Steps = append(playbook.Steps, converted)
	}

	for _, route := range workflow.Routes {
		if route == nil {
			continue
		}

		playbook.Routes = append(playbook.Routes, r.toPlaybookRoute(route, workflow.Steps, id))
	}

	playbook.TriggerStep = resolveTriggerStep(workflow.TriggerStep, playbook.Steps)
	playbook.CreateUser = r.newID(identity.ExtractID(workflow.CreateUser))
	playbook.ModifyUser = r.newID(identity.ExtractID(workflow.ModifyUser))

	for _, w := range CheckPlaybookReferences(playbook) {
		r.logger.Warn("Dangling step reference", "playbook", playbook.UUID, "field", w.Field, "ref", w.Ref)
	}

	return playbook, nil
}

func (r *fsrToFAS) toPlaybookStep(step *models.WorkflowStep, def report.Definition) (*models.PlaybookStep, error) {
	class := r.classifier.Classify(step.StepType)

	if class.Class != steptypes.ClassSupported {
		if class.Class == steptypes.ClassUnknown {
			r.logger.Debug("Unknown step type", "step", step.UUID, "step_type", class.TypeID)
		}

		return r.encoder.Encode(step, class, def)
	}

	args := references.Rewrite(payload.OrEmpty(step.Arguments), references.Relative)
	if payload.Truthy(args["connector"]) {
		args = fasConnectorArguments(args)
	}

	return &models.PlaybookStep{
		UUID:          r.newID(step.UUID),
		Workflow:      def.UUID,
		Name:          step.Name,
		Description:   optionalString(step.Description),
		Arguments:     args,
		Status:        payload.CloneValue(payload.OrNil(step.Status)),
		Top:           payload.Coordinate(step.Top),
		Left:          payload.Coordinate(step.Left),
		WorkflowGroup: payload.CloneValue(payload.OrNil(step.Group)),
		StepType:      class.TypeID,
		JSONLDType:    "WorkflowStep",
	}, nil
}

// fasConnectorArguments fills the fields FAS requires on a connector payload. Fields already
// present are kept as they are.
func fasConnectorArguments(args map[string]any) map[string]any {
	out := map[string]any{
		"name":      payload.Or(args["name"], strings.ToUpper(fmt.Sprint(args["connector"]))),
		"config":    payload.Or(args["config"], ""),
		"params":    payload.Or(args["params"], map[string]any{}),
		"version":   payload.Or(args["version"], defaultConnectorVersion),
		"operation": payload.Or(args["operation"], ""),
	}

	for k, v := range args {
		out[k] = v
	}

	return out
}

func (r *fsrToFAS) toPlaybookRoute(route *models.WorkflowRoute, steps []*models.WorkflowStep, playbookID string) *models.PlaybookRoute {
	id := r.newID(route.UUID)

	name := route.Name
	if name == "" {
		name = stepName(route.SourceStep, steps) + "->" + stepName(route.TargetStep, steps)
	}

	return &models.PlaybookRoute{
		IRI:           identity.PlaybookRouteIRI(id),
		UUID:          id,
		Name:          name,
		Data:          map[string]any{"label": routeLabel(route)},
		IsExecuted:    boolOr(route.IsExecuted, false),
		SourceStep:    identity.ExtractID(route.SourceStep),
		TargetStep:    identity.ExtractID(route.TargetStep),
		WorkflowGroup: payload.CloneValue(payload.OrNil(route.Group)),
		Workflow:      playbookID,
		JSONLDType:    "WorkflowRoute",
	}
}

// routeLabel prefers the route's own label, then data.label, then the empty string.
func routeLabel(route *models.WorkflowRoute) any {
	if route.Label != nil {
		return payload.CloneValue(route.Label)
	}

	if label, ok := route.Data["label"]; ok {
		return payload.CloneValue(label)
	}

	return ""
}

// stepName resolves a step reference to the referenced step's name.
func stepName(ref string, steps []*models.WorkflowStep) string {
	id := identity.ExtractID(ref)

	for _, step := range steps {
		if step != nil && step.UUID == id {
			return step.Name
		}
	}

	return unknownStepName
}

// resolveTriggerStep returns the explicit trigger reference when there is one. Otherwise it
// picks the first step whose name mentions start or trigger, then the first step.
func resolveTriggerStep(ref *string, steps []*models.PlaybookStep) *string {
	if ref != nil && *ref != "" {
		id := identity.ExtractID(*ref)

		return &id
	}

	if len(steps) == 0 {
		return nil
	}

	for _, step := range steps {
		name := strings.ToLower(step.Name)
		if strings.Contains(name, "start") || strings.Contains(name, "trigger") {
			id := step.UUID

			return &id
		}
	}

	id := steps[0].UUID

	return &id
}
