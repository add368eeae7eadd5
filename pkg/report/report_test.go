package report

import (
	"testing"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_GroupsByDefinitionAndType(t *testing.T) {
	t.Parallel()

	c := NewCollector()

	alpha := Definition{Name: "Alpha", UUID: "pb-1"}
	beta := Definition{Name: "Beta", UUID: "pb-2"}

	c.Record(alpha, Item{Name: "Create", UUID: "s1", Type: "Create Record", Category: models.CategoryUnsupported})
	c.Record(alpha, Item{Name: "Script", UUID: "s2", Type: "Code Snippet", Category: models.CategoryUnsupported})
	c.Record(beta, Item{Name: "Create again", UUID: "s3", Type: "Create Record", Category: models.CategoryUnsupported})
	c.Record(alpha, Item{Name: "Mystery", UUID: "s4", StepTypeUUID: "dead", Category: models.CategoryUnknown})
	c.Record(beta, Item{Name: "Mystery 2", UUID: "s5", StepTypeUUID: "dead", Category: models.CategoryUnknown})
	c.Record(beta, Item{Name: "Start", UUID: "s6", Type: "Manual Start", Category: models.CategoryFlattenedTrigger})

	s := c.Summary()

	assert.Equal(t, 3, s.TotalUnsupportedSteps)
	assert.Equal(t, 2, s.TotalUnknownSteps)
	assert.Equal(t, 1, s.TotalManualStartsConverted)
	assert.Equal(t, 6, s.Total())
	assert.Equal(t, 6, c.Recorded())

	assert.Equal(t, map[string]int{"Create Record": 2, "Code Snippet": 1}, s.UnsupportedByType)

	require.Contains(t, s.UnknownStepTypes, "UUID: dead")
	assert.Equal(t, 2, s.UnknownStepTypes["UUID: dead"].Count)
	assert.Equal(t, []string{"Mystery", "Mystery 2"}, s.UnknownStepTypes["UUID: dead"].Examples)

	require.Len(t, s.PlaybooksWithUnsupported, 2)
	assert.Equal(t, "Alpha", s.PlaybooksWithUnsupported[0].Name)
	assert.Len(t, s.PlaybooksWithUnsupported[0].UnsupportedSteps, 2)
	assert.Equal(t, "Beta", s.PlaybooksWithUnsupported[1].Name)

	require.Len(t, s.PlaybooksWithUnknown, 2)
	assert.Equal(t, UnknownTypeLabel, s.PlaybooksWithUnknown[0].UnknownSteps[0].Type)
	assert.Equal(t, "dead", s.PlaybooksWithUnknown[0].UnknownSteps[0].StepTypeUUID)

	require.Len(t, s.PlaybooksWithManualStarts, 1)
	assert.Equal(t, []*models.ManualStart{{Name: "Start", UUID: "s6"}}, s.PlaybooksWithManualStarts[0].ManualStarts)
}

func TestCollector_EmptySummary(t *testing.T) {
	t.Parallel()

	s := NewCollector().Summary()

	assert.Zero(t, s.Total())
	assert.NotNil(t, s.UnsupportedByType)
	assert.NotNil(t, s.PlaybooksWithUnknown)
}

func TestCollector_IgnoresUncategorisedItems(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.Record(Definition{Name: "Alpha"}, Item{Name: "x"})

	assert.Zero(t, c.Recorded())
	assert.Zero(t, c.Summary().Total())
}

func TestCollector_DefinitionsWithoutUUIDGroupByName(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.Record(Definition{Name: "A"}, Item{Name: "1", Type: "Find Record", Category: models.CategoryUnsupported})
	c.Record(Definition{Name: "A"}, Item{Name: "2", Type: "Find Record", Category: models.CategoryUnsupported})
	c.Record(Definition{Name: "B"}, Item{Name: "3", Type: "Find Record", Category: models.CategoryUnsupported})

	assert.Len(t, c.Summary().PlaybooksWithUnsupported, 2)
}
