package fallback

import (
	"testing"

	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/report"
	"github.com/dukex/soarbridge/pkg/steptypes"
	"github.com/dukex/soarbridge/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder() (*Encoder, *report.Collector, *steptypes.Classifier) {
	collector := report.NewCollector()

	return NewEncoder(identity.NewSequence("gen"), collector), collector, steptypes.NewClassifier(nil)
}

var testDefinition = report.Definition{Name: "Enrich Alert", UUID: "wf-1"}

func TestEncoder_UnsupportedRoundTrip(t *testing.T) {
	t.Parallel()

	encoder, collector, classifier := newTestEncoder()

	status := map[string]any{"state": "ok"}
	step := testutil.CreateTestStep(
		testutil.WithStepName("Create Alert"),
		testutil.WithStepType(testutil.CreateRecordType),
		testutil.WithArguments(map[string]any{
			"resource": "alerts",
			"fields":   map[string]any{"name": "{{vars.name}}", "severity": []any{"high", float64(3)}},
		}),
		testutil.WithPosition(float64(40), "310"),
	)
	step.Status = status
	step.Group = "group-1"

	out, err := encoder.Encode(step, classifier.Classify(step.StepType), testDefinition)
	require.NoError(t, err)

	assert.Equal(t, "UNSUPPORTED: Create Alert", out.Name)
	assert.Equal(t, steptypes.SetVariableStepType, out.StepType)
	assert.Equal(t, step.UUID, out.UUID)
	assert.Equal(t, "wf-1", out.Workflow)
	assert.Equal(t, "40", out.Top)
	assert.Equal(t, "310", out.Left)
	assert.Contains(t, *out.Description, "Original step type: Create Record.")
	assert.Len(t, out.Arguments, 1)

	preserved, category, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUnsupported, category)
	assert.Contains(t, preserved.ConversionNote, "Create Record")

	restored := preserved.Restore()
	assert.Equal(t, step.JSONLDType, restored.JSONLDType)
	assert.Equal(t, step.Name, restored.Name)
	assert.Equal(t, *step.Description, *restored.Description)
	assert.Equal(t, step.StepType, restored.StepType)
	assert.Equal(t, step.Arguments, restored.Arguments)
	assert.Equal(t, status, restored.Status)
	assert.Equal(t, step.Top, restored.Top)
	assert.Equal(t, step.Left, restored.Left)
	assert.Equal(t, step.Group, restored.Group)
	assert.Equal(t, step.UUID, restored.UUID)

	summary := collector.Summary()
	assert.Equal(t, 1, summary.TotalUnsupportedSteps)
	assert.Equal(t, 1, summary.UnsupportedByType["Create Record"])
}

func TestEncoder_DoesNotMutateSource(t *testing.T) {
	t.Parallel()

	encoder, _, classifier := newTestEncoder()

	args := map[string]any{"script": "print(1)", "nested": map[string]any{"a": []any{"b"}}}
	step := testutil.CreateTestStep(testutil.WithStepType(testutil.CodeSnippetType), testutil.WithArguments(args))

	_, err := encoder.Encode(step, classifier.Classify(step.StepType), testDefinition)
	require.NoError(t, err)

	assert.Equal(t, models.Object{"script": "print(1)", "nested": map[string]any{"a": []any{"b"}}}, step.Arguments)
}

func TestEncoder_Unknown(t *testing.T) {
	t.Parallel()

	encoder, collector, classifier := newTestEncoder()

	step := testutil.CreateTestStep(testutil.WithStepName(""), testutil.WithStepType(testutil.UnknownType))

	out, err := encoder.Encode(step, classifier.Classify(step.StepType), testDefinition)
	require.NoError(t, err)

	assert.Equal(t, "UNKNOWN: "+report.UnknownTypeLabel, out.Name)
	assert.Contains(t, *out.Description, "Unknown step type (UUID: "+testutil.UnknownType+")")

	preserved, category, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUnknown, category)
	assert.Equal(t, identity.StepTypeIRI(testutil.UnknownType), preserved.StepType)

	summary := collector.Summary()
	assert.Equal(t, 1, summary.TotalUnknownSteps)
	require.Contains(t, summary.UnknownStepTypes, "UUID: "+testutil.UnknownType)
	assert.Equal(t, 1, summary.UnknownStepTypes["UUID: "+testutil.UnknownType].Count)
	require.Len(t, summary.PlaybooksWithUnknown, 1)
	assert.Equal(t, testutil.UnknownType, summary.PlaybooksWithUnknown[0].UnknownSteps[0].StepTypeUUID)
}

func TestEncoder_FlattenTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stepName   string
		args       map[string]any
		wantName   string
		wantParams []any
		wantInDesc []string
		notInDesc  []string
	}{
		{
			name:     "manual start with params",
			stepName: "Start",
			args: map[string]any{
				"resources": []any{"alerts", "incidents"},
				"step_variables": map[string]any{
					"input": map[string]any{
						"params": map[string]any{"zeta": "", "alpha": ""},
					},
				},
			},
			wantName:   "Start",
			wantParams: []any{"alpha", "zeta"},
			wantInDesc: []string{
				"Converted from Manual Start step. ",
				`Original trigger was for resource(s): ["alerts","incidents"]. `,
			},
			notInDesc: []string{"Original route", "field-based"},
		},
		{
			name:       "single resource and field based trigger",
			stepName:   "",
			args:       map[string]any{"resource": "alerts", "fieldbasedtrigger": map[string]any{"filters": []any{}}},
			wantName:   "Start",
			wantParams: []any{},
			wantInDesc: []string{
				`Original trigger was for resource(s): ["alerts"]. `,
				"Had field-based trigger conditions. ",
			},
		},
		{
			name:       "api endpoint route",
			stepName:   "Webhook",
			args:       map[string]any{"route": "notify"},
			wantName:   "Webhook",
			wantParams: []any{},
			wantInDesc: []string{"Original route: notify. "},
			notInDesc:  []string{"resource(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoder, collector, classifier := newTestEncoder()

			step := testutil.CreateTestStep(
				testutil.WithStepName(tt.stepName),
				testutil.WithStepType(testutil.ManualStartType),
				testutil.WithArguments(tt.args),
			)

			out, err := encoder.Encode(step, classifier.Classify(step.StepType), testDefinition)
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, out.Name)
			assert.Equal(t, steptypes.ReferencedStartStepType, out.StepType)
			assert.Equal(t, true, out.Arguments["__triggerLimit"])
			assert.Equal(t, true, out.Arguments["triggerOnSource"])
			assert.Equal(t, false, out.Arguments["triggerOnReplicate"])

			variables := out.Arguments["step_variables"].(map[string]any)
			input := variables["input"].(map[string]any)
			assert.Equal(t, tt.wantParams, input["params"])

			for _, want := range tt.wantInDesc {
				assert.Contains(t, *out.Description, want)
			}

			for _, unwanted := range tt.notInDesc {
				assert.NotContains(t, *out.Description, unwanted)
			}

			preserved, category, err := Decode(out)
			require.NoError(t, err)
			assert.Equal(t, models.CategoryFlattenedTrigger, category)
			assert.Equal(t, tt.args, preserved.Arguments)

			assert.Equal(t, 1, collector.Summary().TotalManualStartsConverted)
		})
	}
}

func TestEncoder_RejectsSupported(t *testing.T) {
	t.Parallel()

	encoder, collector, classifier := newTestEncoder()

	step := testutil.CreateTestStep()

	_, err := encoder.Encode(step, classifier.Classify(step.StepType), testDefinition)
	require.ErrorIs(t, err, ErrSupportedStep)
	assert.Equal(t, 0, collector.Recorded())
}

func TestEncoder_GeneratesMissingID(t *testing.T) {
	t.Parallel()

	encoder, _, classifier := newTestEncoder()

	step := testutil.CreateTestStep(testutil.WithStepID(""), testutil.WithStepType(testutil.CodeSnippetType))

	out, err := encoder.Encode(step, classifier.Classify(step.StepType), testDefinition)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", out.UUID)
}
