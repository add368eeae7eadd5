package identity

const (
	WorkflowStepsPath       = "/api/3/workflow_steps/"
	WorkflowStepTypesPath   = "/api/3/workflow_step_types/"
	WorkflowCollectionsPath = "/api/3/workflow_collections/"
	PicklistsPath           = "/api/3/picklists/"
	PeoplePath              = "/api/3/people/"

	playbooksPath           = "/api/workflow/playbooks/"
	playbookCollectionsPath = "/api/workflow/playbook-collections/"
	playbookRoutesPath      = "/api/workflow/playbook-routes/"
)

func WorkflowStepIRI(id string) string       { return WorkflowStepsPath + id }
func StepTypeIRI(id string) string           { return WorkflowStepTypesPath + id }
func WorkflowCollectionIRI(id string) string { return WorkflowCollectionsPath + id }
func PicklistIRI(id string) string           { return PicklistsPath + id }
func PersonIRI(id string) string             { return PeoplePath + id }

func PlaybookIRI(id string) string           { return playbooksPath + id + "/" }
func PlaybookCollectionIRI(id string) string { return playbookCollectionsPath + id + "/" }
func PlaybookRouteIRI(id string) string      { return playbookRoutesPath + id + "/" }
