package models

// StepCategory names why a step was replaced during conversion.
type StepCategory string

const (
	CategoryUnsupported      StepCategory = "unsupported"
	CategoryUnknown          StepCategory = "unknown"
	CategoryFlattenedTrigger StepCategory = "flattened-trigger"
)

// ConversionSummary reports what an FSR->FAS conversion replaced, and why.
type ConversionSummary struct {
	TotalUnsupportedSteps      int                         `json:"totalUnsupportedSteps"`
	TotalUnknownSteps          int                         `json:"totalUnknownSteps"`
	TotalManualStartsConverted int                         `json:"totalManualStartsConverted"`
	UnsupportedByType          map[string]int              `json:"unsupportedByType"`
	UnknownStepTypes           map[string]*UnknownTypeStat `json:"unknownStepTypes"`
	PlaybooksWithUnsupported   []*PlaybookUnsupported      `json:"playbooksWithUnsupported"`
	PlaybooksWithUnknown       []*PlaybookUnknown          `json:"playbooksWithUnknown"`
	PlaybooksWithManualStarts  []*PlaybookManualStarts     `json:"playbooksWithManualStarts"`
}

type UnknownTypeStat struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// ConvertedStep describes one replaced step.
type ConvertedStep struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	UUID         string       `json:"uuid"`
	StepTypeUUID string       `json:"stepTypeUuid,omitempty"`
	Category     StepCategory `json:"category"`
}

type PlaybookUnsupported struct {
	Name             string           `json:"name"`
	UUID             string           `json:"uuid"`
	UnsupportedSteps []*ConvertedStep `json:"unsupportedSteps"`
}

type PlaybookUnknown struct {
	Name         string           `json:"name"`
	UUID         string           `json:"uuid"`
	UnknownSteps []*ConvertedStep `json:"unknownSteps"`
}

type ManualStart struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

type PlaybookManualStarts struct {
	Name         string         `json:"name"`
	UUID         string         `json:"uuid"`
	ManualStarts []*ManualStart `json:"manualStarts"`
}

// NewConversionSummary returns an empty summary with every collection allocated.
func NewConversionSummary() *ConversionSummary {
	return &ConversionSummary{
		UnsupportedByType:         map[string]int{},
		UnknownStepTypes:          map[string]*UnknownTypeStat{},
		PlaybooksWithUnsupported:  []*PlaybookUnsupported{},
		PlaybooksWithUnknown:      []*PlaybookUnknown{},
		PlaybooksWithManualStarts: []*PlaybookManualStarts{},
	}
}

// Total returns the number of replaced steps across all categories.
func (s *ConversionSummary) Total() int {
	if s == nil {
		return 0
	}

	return s.TotalUnsupportedSteps + s.TotalUnknownSteps + s.TotalManualStartsConverted
}
