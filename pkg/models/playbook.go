package models

// PlaybookCollectionsType is the top-level discriminator of FAS exports.
const PlaybookCollectionsType = "playbook_collections"

// PlaybookExport is a FAS export document. Versions and ConversionSummary are only
// populated when the document was produced from an FSR export.
type PlaybookExport struct {
	Type              string                `json:"type"`
	Data              []*PlaybookCollection `json:"data"`
	Versions          []*Version            `json:"versions,omitempty"`
	ConversionSummary *ConversionSummary    `json:"_conversionSummary,omitempty"`
}

// PlaybookCollection groups FAS playbooks.
type PlaybookCollection struct {
	IRI         string      `json:"@id,omitempty"`
	UUID        string      `json:"uuid"`
	CreateDate  any         `json:"createDate"`
	ModifyDate  any         `json:"modifyDate"`
	DeletedAt   any         `json:"deletedAt"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Visible     *bool       `json:"visible"`
	Image       any         `json:"image"`
	ImportedBy  any         `json:"importedBy"`
	CreateUser  string      `json:"createUser,omitempty"`
	ModifyUser  string      `json:"modifyUser,omitempty"`
	Tags        []any       `json:"tags"`
	JSONLDType  string      `json:"@type,omitempty"`
	Playbooks   []*Playbook `json:"playbooks"`
}

// CollectionRef is the denormalized collection copy embedded in every FAS playbook.
type CollectionRef struct {
	IRI         string  `json:"@id"`
	UUID        string  `json:"uuid"`
	CreateDate  any     `json:"createDate"`
	ModifyDate  any     `json:"modifyDate"`
	DeletedAt   any     `json:"deletedAt"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Visible     *bool   `json:"visible"`
	Image       any     `json:"image"`
	ImportedBy  any     `json:"importedBy"`
	CreateUser  string  `json:"createUser"`
	ModifyUser  string  `json:"modifyUser"`
	Tags        []any   `json:"tags"`
	JSONLDType  string  `json:"@type"`
}

// Playbook is one FAS automation flow. Collection holds a *CollectionRef on output and
// whatever the source carried on input.
type Playbook struct {
	IRI                   string           `json:"@id,omitempty"`
	UUID                  string           `json:"uuid"`
	Name                  string           `json:"name"`
	CreateDate            any              `json:"createDate"`
	ModifyDate            any              `json:"modifyDate"`
	Priority              any              `json:"priority"`
	TriggerLimit          any              `json:"triggerLimit"`
	Steps                 []*PlaybookStep  `json:"steps"`
	Routes                []*PlaybookRoute `json:"routes"`
	Groups                []any            `json:"groups"`
	AliasName             *string          `json:"aliasName"`
	Tags                  []any            `json:"tags"`
	Description           *string          `json:"description"`
	IsActive              *bool            `json:"isActive"`
	Debug                 *bool            `json:"debug"`
	SingleRecordExecution *bool            `json:"singleRecordExecution"`
	RemoteExecutableFlag  *bool            `json:"remoteExecutableFlag"`
	Parameters            any              `json:"parameters"`
	Synchronous           *bool            `json:"synchronous"`
	IsPrivate             *bool            `json:"isPrivate"`
	Pinned                *bool            `json:"pinned"`
	LastModifyDate        any              `json:"lastModifyDate"`
	DeletedAt             any              `json:"deletedAt"`
	ImportedBy            any              `json:"importedBy"`
	Collection            any              `json:"collection,omitempty"`
	TriggerStep           *string          `json:"triggerstep"`
	CreateUser            string           `json:"createUser,omitempty"`
	ModifyUser            string           `json:"modifyUser,omitempty"`
	JSONLDType            string           `json:"@type,omitempty"`
}

// PlaybookStep is one node of a FAS playbook. StepType is a bare identifier.
type PlaybookStep struct {
	UUID          string  `json:"uuid"`
	Workflow      string  `json:"workflow,omitempty"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Arguments     Object  `json:"arguments"`
	Status        any     `json:"status"`
	Top           any     `json:"top"`
	Left          any     `json:"left"`
	WorkflowGroup any     `json:"workflowgroup"`
	StepType      string  `json:"stepType"`
	JSONLDType    string  `json:"@type,omitempty"`
}

// PlaybookRoute is a directed edge between two FAS steps, referenced by bare identifier.
type PlaybookRoute struct {
	IRI           string `json:"@id,omitempty"`
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	Data          Object `json:"data"`
	IsExecuted    *bool  `json:"isExecuted"`
	SourceStep    string `json:"sourcestep"`
	TargetStep    string `json:"targetstep"`
	WorkflowGroup any    `json:"workflowgroup"`
	Workflow      string `json:"workflow,omitempty"`
	JSONLDType    string `json:"@type,omitempty"`
}

// Label returns data.label, or nil when absent.
func (r *PlaybookRoute) Label() any {
	if r.Data == nil {
		return nil
	}

	return r.Data["label"]
}

// Version is the denormalized snapshot FAS requires for every uploaded playbook.
type Version struct {
	UUID         string      `json:"uuid"`
	CreateDate   string      `json:"createDate"`
	ModifyDate   string      `json:"modifyDate"`
	DeletedAt    any         `json:"deletedAt"`
	Name         string      `json:"name"`
	WorkflowName string      `json:"workflow_name"`
	Note         string      `json:"note"`
	JSON         VersionJSON `json:"json"`
	Draft        bool        `json:"draft"`
	Published    bool        `json:"published"`
	Workflow     string      `json:"workflow"`
	CreateUser   string      `json:"createUser"`
	ModifyUser   any         `json:"modifyUser"`
}

type VersionJSON struct {
	UUID        string          `json:"uuid"`
	Debug       *bool           `json:"debug"`
	Steps       []*VersionStep  `json:"steps"`
	Groups      []any           `json:"groups"`
	Routes      []*VersionRoute `json:"routes"`
	Parameters  any             `json:"parameters"`
	TriggerStep *string         `json:"triggerstep"`
}

// VersionStep carries integer coordinates, unlike PlaybookStep.
type VersionStep struct {
	ID        string         `json:"id"`
	Top       int            `json:"top"`
	Left      int            `json:"left"`
	Name      string         `json:"name"`
	UUID      string         `json:"uuid"`
	Group     any            `json:"group"`
	StepType  string         `json:"stepType"`
	Arguments map[string]any `json:"arguments"`
}

type VersionRoute struct {
	Data       map[string]any `json:"data"`
	Name       string         `json:"name"`
	UUID       string         `json:"uuid"`
	SourceStep string         `json:"sourcestep"`
	TargetStep string         `json:"targetstep"`
}

// StepByID returns the step with the given uuid, or nil.
func (p *Playbook) StepByID(id string) *PlaybookStep {
	for _, step := range p.Steps {
		if step.UUID == id {
			return step
		}
	}

	return nil
}
