package schema

import (
	"testing"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		direction models.Direction
		raw       string
		wantErr   bool
	}{
		{
			name:      "valid fsr export",
			direction: models.DirectionFSRToFAS,
			raw:       `{"type":"workflow_collections","data":[{"uuid":"c1","workflows":[{"uuid":"w1","steps":[{"uuid":"s1","arguments":{}}],"routes":[]}]}]}`,
		},
		{
			name:      "valid fas export with null lists",
			direction: models.DirectionFASToFSR,
			raw:       `{"type":"playbook_collections","data":[{"uuid":"c1","playbooks":[{"uuid":"p1","steps":null,"routes":null}]}],"versions":[]}`,
		},
		{
			name:      "empty array payloads",
			direction: models.DirectionFSRToFAS,
			raw:       `{"type":"workflow_collections","data":[{"workflows":[{"steps":[{"uuid":"s1","arguments":[]}],"routes":[{"data":[]}]}]}]}`,
		},
		{
			name:      "empty array route data",
			direction: models.DirectionFASToFSR,
			raw:       `{"type":"playbook_collections","data":[{"playbooks":[{"steps":[{"arguments":[]}],"routes":[{"data":[]}]}]}]}`,
		},
		{
			name:      "type is left to the converter",
			direction: models.DirectionFSRToFAS,
			raw:       `{"type":"playbook_collections","data":[]}`,
		},
		{
			name:      "missing data",
			direction: models.DirectionFSRToFAS,
			raw:       `{"type":"workflow_collections"}`,
			wantErr:   true,
		},
		{
			name:      "steps is not a list",
			direction: models.DirectionFSRToFAS,
			raw:       `{"type":"workflow_collections","data":[{"workflows":[{"steps":"oops"}]}]}`,
			wantErr:   true,
		},
		{
			name:      "arguments is not an object",
			direction: models.DirectionFASToFSR,
			raw:       `{"type":"playbook_collections","data":[{"playbooks":[{"steps":[{"arguments":[1]}]}]}]}`,
			wantErr:   true,
		},
		{
			name:      "not json",
			direction: models.DirectionFASToFSR,
			raw:       `{`,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tt.direction, []byte(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, ErrInvalidStructure)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Problems)
			assert.Equal(t, tt.direction, validationErr.Direction)
		})
	}
}

func TestValidator_UnknownDirection(t *testing.T) {
	t.Parallel()

	v, err := NewValidator()
	require.NoError(t, err)

	err = v.Validate(models.Direction("sideways"), []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidStructure)
}
