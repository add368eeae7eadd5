// Package models defines the wire documents exchanged by the two SOAR platforms:
// FSR workflow_collections exports and FAS playbook_collections exports.
package models

// WorkflowCollectionsType is the top-level discriminator of FSR exports.
const WorkflowCollectionsType = "workflow_collections"

// WorkflowExport is an FSR export document.
type WorkflowExport struct {
	Type         string                `json:"type"`
	Data         []*WorkflowCollection `json:"data"`
	ExportedTags []any                 `json:"exported_tags"`
}

// WorkflowCollection groups FSR workflows.
type WorkflowCollection struct {
	Context     string      `json:"@context,omitempty"`
	JSONLDType  string      `json:"@type,omitempty"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Visible     *bool       `json:"visible"`
	Image       any         `json:"image"`
	UUID        string      `json:"uuid"`
	ID          int         `json:"id,omitempty"`
	CreateDate  any         `json:"createDate"`
	ModifyDate  any         `json:"modifyDate"`
	DeletedAt   any         `json:"deletedAt"`
	ImportedBy  any         `json:"importedBy"`
	CreateUser  string      `json:"createUser,omitempty"`
	ModifyUser  string      `json:"modifyUser,omitempty"`
	RecordTags  []any       `json:"recordTags"`
	Workflows   []*Workflow `json:"workflows"`
}

// Workflow is one FSR automation flow.
type Workflow struct {
	JSONLDType            string           `json:"@type,omitempty"`
	TriggerLimit          any              `json:"triggerLimit"`
	Name                  string           `json:"name"`
	AliasName             *string          `json:"aliasName"`
	Tag                   any              `json:"tag"`
	Description           *string          `json:"description"`
	IsActive              *bool            `json:"isActive"`
	Debug                 *bool            `json:"debug"`
	SingleRecordExecution *bool            `json:"singleRecordExecution"`
	RemoteExecutableFlag  *bool            `json:"remoteExecutableFlag"`
	Parameters            any              `json:"parameters"`
	Synchronous           *bool            `json:"synchronous"`
	LastModifyDate        any              `json:"lastModifyDate"`
	Collection            string           `json:"collection,omitempty"`
	Versions              []any            `json:"versions"`
	TriggerStep           *string          `json:"triggerStep"`
	Steps                 []*WorkflowStep  `json:"steps"`
	Routes                []*WorkflowRoute `json:"routes"`
	Groups                []any            `json:"groups"`
	Priority              any              `json:"priority"`
	PlaybookOrigin        string           `json:"playbookOrigin,omitempty"`
	IsEditable            *bool            `json:"isEditable,omitempty"`
	UUID                  string           `json:"uuid"`
	ID                    int              `json:"id,omitempty"`
	CreateUser            string           `json:"createUser,omitempty"`
	CreateDate            any              `json:"createDate"`
	ModifyUser            string           `json:"modifyUser,omitempty"`
	ModifyDate            any              `json:"modifyDate"`
	Owners                []any            `json:"owners"`
	IsPrivate             *bool            `json:"isPrivate"`
	Pinned                *bool            `json:"pinned,omitempty"`
	DeletedAt             any              `json:"deletedAt"`
	ImportedBy            any              `json:"importedBy"`
	RecordTags            []any            `json:"recordTags"`
}

// WorkflowStep is one node of an FSR workflow. Top and Left are numbers or numeric strings.
type WorkflowStep struct {
	JSONLDType  string  `json:"@type,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Arguments   Object  `json:"arguments"`
	Status      any     `json:"status"`
	Top         any     `json:"top"`
	Left        any     `json:"left"`
	StepType    string  `json:"stepType"`
	Group       any     `json:"group"`
	UUID        string  `json:"uuid"`
}

// WorkflowRoute is a directed edge between two FSR steps, referenced by absolute IRI.
type WorkflowRoute struct {
	JSONLDType string `json:"@type,omitempty"`
	Name       string `json:"name"`
	TargetStep string `json:"targetStep"`
	SourceStep string `json:"sourceStep"`
	Label      any    `json:"label"`
	Data       Object `json:"data,omitempty"`
	IsExecuted *bool  `json:"isExecuted"`
	Group      any    `json:"group"`
	UUID       string `json:"uuid"`
}

// StepByID returns the step with the given uuid, or nil.
func (w *Workflow) StepByID(id string) *WorkflowStep {
	for _, step := range w.Steps {
		if step.UUID == id {
			return step
		}
	}

	return nil
}
