package converter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukex/soarbridge/pkg/identity"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/steptypes"
	"github.com/dukex/soarbridge/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestConverter(opts ...Option) *Converter {
	base := []Option{
		WithIDGenerator(identity.NewSequence("gen")),
		WithClock(func() time.Time { return fixedNow }),
	}

	return New(append(base, opts...)...)
}

func TestConvert_RejectsMismatchedFormat(t *testing.T) {
	t.Parallel()

	c := newTestConverter()

	tests := []struct {
		name      string
		direction models.Direction
		raw       string
		message   string
	}{
		{
			name:      "fas document sent to fsr-to-fas",
			direction: models.DirectionFSRToFAS,
			raw:       `{"type":"playbook_collections","data":[]}`,
			message:   "Input must be a FortiSOAR workflow_collections export",
		},
		{
			name:      "missing discriminator",
			direction: models.DirectionFSRToFAS,
			raw:       `{"data":[]}`,
			message:   "Input must be a FortiSOAR workflow_collections export",
		},
		{
			name:      "fsr document sent to fas-to-fsr",
			direction: models.DirectionFASToFSR,
			raw:       `{"type":"workflow_collections","data":[{"workflows":"not a list"}]}`,
			message:   "Input must be a FAS playbook_collections export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := c.Convert(tt.direction, []byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, IsFormatMismatch(err))
			assert.Equal(t, tt.message, err.Error())

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.direction.SourceType(), formatErr.Expected)
		})
	}
}

func TestConvert_InvalidInput(t *testing.T) {
	t.Parallel()

	c := newTestConverter()

	_, err := c.Convert(models.DirectionFSRToFAS, []byte(`{not json`))
	require.Error(t, err)
	assert.True(t, IsUndecodableDocument(err))
	assert.False(t, IsFormatMismatch(err))

	_, err = c.Convert(models.Direction("sideways"), []byte(`{}`))
	require.ErrorIs(t, err, ErrInvalidDirection)
}

func TestConvert_AcceptsEmptyArrayPayloads(t *testing.T) {
	t.Parallel()

	c := newTestConverter()

	t.Run("fsr to fas", func(t *testing.T) {
		t.Parallel()

		raw := `{"type":"workflow_collections","data":[{"uuid":"c1","name":"C","workflows":[{"uuid":"w1","name":"W",
			"steps":[
				{"uuid":"s1","name":"Set","stepType":"/api/3/workflow_step_types/` + testutil.SetVariableType + `","arguments":[]},
				{"uuid":"s2","name":"Next","stepType":"/api/3/workflow_step_types/` + testutil.SetVariableType + `","arguments":null}
			],
			"routes":[{"uuid":"r1","sourceStep":"/api/3/workflow_steps/s1","targetStep":"/api/3/workflow_steps/s2","data":[]}]}]}]}`

		out, err := c.Convert(models.DirectionFSRToFAS, []byte(raw))
		require.NoError(t, err)

		var doc models.PlaybookExport
		require.NoError(t, json.Unmarshal(out, &doc))

		playbook := doc.Data[0].Playbooks[0]
		require.Len(t, playbook.Steps, 2)
		assert.NotNil(t, playbook.Steps[0].Arguments)
		assert.Empty(t, playbook.Steps[0].Arguments)
		require.Len(t, playbook.Routes, 1)
		assert.Equal(t, "s2", playbook.Routes[0].TargetStep)
	})

	t.Run("fas to fsr", func(t *testing.T) {
		t.Parallel()

		raw := `{"type":"playbook_collections","data":[{"uuid":"c1","name":"C","playbooks":[{"uuid":"p1","name":"P",
			"steps":[
				{"uuid":"s1","name":"Set","stepType":"` + testutil.SetVariableType + `","arguments":[]},
				{"uuid":"s2","name":"Next","stepType":"` + testutil.SetVariableType + `","arguments":{}}
			],
			"routes":[{"uuid":"r1","name":"","sourcestep":"s1","targetstep":"s2","data":[]}]}]}]}`

		out, err := c.Convert(models.DirectionFASToFSR, []byte(raw))
		require.NoError(t, err)

		var doc models.WorkflowExport
		require.NoError(t, json.Unmarshal(out, &doc))

		workflow := doc.Data[0].Workflows[0]
		require.Len(t, workflow.Steps, 2)
		assert.NotNil(t, workflow.Steps[0].Arguments)
		assert.Empty(t, workflow.Steps[0].Arguments)
		require.Len(t, workflow.Routes, 1)
		assert.Nil(t, workflow.Routes[0].Label)
	})

	t.Run("non-empty array is still rejected", func(t *testing.T) {
		t.Parallel()

		raw := `{"type":"playbook_collections","data":[{"playbooks":[{"steps":[{"uuid":"s1","arguments":[1]}]}]}]}`

		_, err := c.Convert(models.DirectionFASToFSR, []byte(raw))
		require.Error(t, err)
		assert.True(t, IsUndecodableDocument(err))
	})
}

func TestTypedEntryPoints_RejectMismatchedFormat(t *testing.T) {
	t.Parallel()

	c := newTestConverter()

	fas, err := c.FSRToFAS(&models.WorkflowExport{Type: models.PlaybookCollectionsType})
	require.ErrorIs(t, err, ErrFormatMismatch)
	assert.Nil(t, fas)

	fsr, err := c.FASToFSR(&models.PlaybookExport{Type: models.WorkflowCollectionsType})
	require.ErrorIs(t, err, ErrFormatMismatch)
	assert.Nil(t, fsr)

	_, err = c.FSRToFAS(nil)
	require.ErrorIs(t, err, ErrFormatMismatch)
}

func TestConvert_EncodesDocuments(t *testing.T) {
	t.Parallel()

	c := newTestConverter()

	raw, err := json.Marshal(testutil.CreateTestWorkflowExport(
		testutil.CreateTestWorkflow("Enrich", testutil.CreateTestStep()),
	))
	require.NoError(t, err)

	out, err := c.Convert(models.DirectionFSRToFAS, raw)
	require.NoError(t, err)

	var fas map[string]any
	require.NoError(t, json.Unmarshal(out, &fas))
	assert.Equal(t, models.PlaybookCollectionsType, fas["type"])
	assert.Contains(t, fas, "_conversionSummary")
	assert.Len(t, fas["versions"], 1)
	assert.Contains(t, string(out), "\n  \"type\"")

	back, err := c.Convert(models.DirectionFASToFSR, out)
	require.NoError(t, err)

	var fsr map[string]any
	require.NoError(t, json.Unmarshal(back, &fsr))
	assert.Equal(t, models.WorkflowCollectionsType, fsr["type"])
	assert.NotContains(t, fsr, "_conversionSummary")
	assert.NotContains(t, fsr, "versions")
}

func TestRegistry_IsInjected(t *testing.T) {
	t.Parallel()

	reg := steptypes.DefaultRegistry()
	reg.Supported[testutil.UnknownType] = "Custom Step"

	c := newTestConverter(WithRegistry(reg))

	doc := testutil.CreateTestWorkflowExport(testutil.CreateTestWorkflow("Custom",
		testutil.CreateTestStep(testutil.WithStepType(testutil.UnknownType)),
	))

	out, err := c.FSRToFAS(doc)
	require.NoError(t, err)

	assert.Equal(t, 0, out.ConversionSummary.TotalUnknownSteps)
	assert.Equal(t, testutil.UnknownType, out.Data[0].Playbooks[0].Steps[0].StepType)
	assert.Equal(t, "Custom Step", c.Registry().Supported[testutil.UnknownType])
}
