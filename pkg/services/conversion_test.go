package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/events"
	"github.com/dukex/soarbridge/pkg/mocks"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/dukex/soarbridge/pkg/persistence/file"
	"github.com/dukex/soarbridge/pkg/schema"
	"github.com/dukex/soarbridge/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newService(t *testing.T, opts ...ConversionOption) *Conversion {
	t.Helper()

	validator, err := schema.NewValidator()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conv := converter.New(converter.WithLogger(logger), converter.WithClock(func() time.Time { return fixedNow }))

	opts = append([]ConversionOption{WithClock(func() time.Time { return fixedNow })}, opts...)

	return NewConversion(conv, validator, logger, opts...)
}

func fsrDocument(t *testing.T) []byte {
	t.Helper()

	workflow := testutil.CreateTestWorkflow("Triage",
		testutil.CreateTestStep(testutil.WithStepName("Set"), testutil.WithStepType(testutil.SetVariableType)),
		testutil.CreateTestStep(testutil.WithStepName("Mystery"), testutil.WithStepType(testutil.UnknownType)),
	)

	raw, err := json.Marshal(testutil.CreateTestWorkflowExport(workflow))
	require.NoError(t, err)

	return raw
}

func fasDocument(t *testing.T) []byte {
	t.Helper()

	playbook := &models.Playbook{
		UUID:  "pb-1",
		Name:  "Enrich",
		Steps: []*models.PlaybookStep{testutil.CreateTestPlaybookStep()},
	}

	raw, err := json.Marshal(testutil.CreateTestPlaybookExport(playbook, &models.Playbook{UUID: "pb-2", Name: "Other"}))
	require.NoError(t, err)

	return raw
}

func TestConversion_Convert_RecordsAndPublishes(t *testing.T) {
	store := &mocks.MockPersistence{}
	bus := &mocks.MockEventBus{}

	var saved *models.ConversionRecord

	store.On("SaveConversion", mock.Anything, mock.AnythingOfType("*models.ConversionRecord")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.ConversionRecord) }).
		Return(nil).Once()
	bus.On("Publish", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(e events.ConversionCompleted) bool {
		return e.Direction == models.DirectionFSRToFAS && e.Items == 1 && e.ReplacedSteps == 1
	})).Return(nil).Once()

	service := newService(t, WithPersistence(store), WithPublisher(bus))

	resp, err := service.Convert(t.Context(), ConvertRequest{Document: fsrDocument(t)})
	require.NoError(t, err)

	assert.Equal(t, models.DirectionFSRToFAS, resp.Direction)
	assert.Equal(t, 1, resp.Collections)
	assert.Equal(t, 1, resp.Items)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 1, resp.Summary.TotalUnknownSteps)
	assert.Contains(t, string(resp.Output), `"type": "playbook_collections"`)

	require.NotNil(t, saved)
	assert.Equal(t, resp.ConversionID, saved.ID)
	assert.Equal(t, models.ConversionStatusSucceeded, saved.Status)
	assert.Equal(t, fixedNow, saved.CreatedAt)
	assert.JSONEq(t, string(resp.Output), string(saved.Output))

	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestConversion_Convert_ExplicitDirection(t *testing.T) {
	service := newService(t)

	resp, err := service.Convert(t.Context(), ConvertRequest{
		Direction: models.DirectionFASToFSR,
		Document:  fasDocument(t),
	})
	require.NoError(t, err)

	assert.Equal(t, models.DirectionFASToFSR, resp.Direction)
	assert.Equal(t, 2, resp.Items)
	assert.Nil(t, resp.Summary)
	assert.Contains(t, string(resp.Output), `"type": "workflow_collections"`)
}

func TestConversion_Convert_FormatMismatchIsRecorded(t *testing.T) {
	store := &mocks.MockPersistence{}
	bus := &mocks.MockEventBus{}

	store.On("SaveConversion", mock.Anything, mock.MatchedBy(func(r *models.ConversionRecord) bool {
		return r.Status == models.ConversionStatusFailed &&
			r.Error == "Input must be a FAS playbook_collections export" &&
			r.Output == nil
	})).Return(nil).Once()
	bus.On("Publish", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("events.ConversionFailed")).Return(nil).Once()

	service := newService(t, WithPersistence(store), WithPublisher(bus))

	_, err := service.Convert(t.Context(), ConvertRequest{
		Direction: models.DirectionFASToFSR,
		Document:  fsrDocument(t),
	})
	require.Error(t, err)

	assert.True(t, converter.IsFormatMismatch(err))
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Input must be a FAS playbook_collections export", err.Error())

	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestConversion_Convert_RequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      ConvertRequest
		expected error
	}{
		{
			name:     "empty document",
			req:      ConvertRequest{},
			expected: ErrEmptyDocument,
		},
		{
			name:     "undetectable format",
			req:      ConvertRequest{Document: []byte(`{"type": "something_else"}`)},
			expected: ErrUndetectableFormat,
		},
		{
			name:     "not json with auto direction",
			req:      ConvertRequest{Direction: DirectionAuto, Document: []byte(`not json`)},
			expected: ErrUndetectableFormat,
		},
		{
			name:     "unknown direction",
			req:      ConvertRequest{Direction: "sideways", Document: []byte(`{}`)},
			expected: ErrInvalidDirection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mocks.MockPersistence{}
			service := newService(t, WithPersistence(store))

			_, err := service.Convert(t.Context(), tt.req)
			require.Error(t, err)

			assert.ErrorIs(t, err, tt.expected)
			assert.True(t, IsValidationError(err))
			store.AssertNotCalled(t, "SaveConversion", mock.Anything, mock.Anything)
		})
	}
}

func TestConversion_Convert_SchemaViolation(t *testing.T) {
	service := newService(t)

	_, err := service.Convert(t.Context(), ConvertRequest{
		Direction: models.DirectionFSRToFAS,
		Document:  []byte(`{"type": "workflow_collections", "data": [{"workflows": [{"steps": "oops"}]}]}`),
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, schema.ErrInvalidStructure)
	assert.True(t, IsValidationError(err))

	var validationErr *schema.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Problems)
}

func TestConversion_Convert_SideEffectFailuresAreNotFatal(t *testing.T) {
	store := &mocks.MockPersistence{}
	bus := &mocks.MockEventBus{}

	store.On("SaveConversion", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	service := newService(t, WithPersistence(store), WithPublisher(bus))

	resp, err := service.Convert(t.Context(), ConvertRequest{Document: fasDocument(t)})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ConversionID)

	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestConversion_History(t *testing.T) {
	service := newService(t, WithPersistence(file.NewPersistence(t.TempDir())))

	first, err := service.Convert(t.Context(), ConvertRequest{Document: fsrDocument(t)})
	require.NoError(t, err)

	_, err = service.Convert(t.Context(), ConvertRequest{Direction: models.DirectionFSRToFAS, Document: fasDocument(t)})
	require.Error(t, err)

	record, err := service.ConversionByID(t.Context(), first.ConversionID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversionStatusSucceeded, record.Status)
	assert.Equal(t, 1, record.Summary.TotalUnknownSteps)

	failed, err := service.ListConversions(t.Context(), ListConversionsRequest{Status: models.ConversionStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed.Conversions, 1)
	assert.Equal(t, "Input must be a FortiSOAR workflow_collections export", failed.Conversions[0].Error)

	all, err := service.ListConversions(t.Context(), ListConversionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)

	require.NoError(t, service.DeleteConversion(t.Context(), first.ConversionID))

	_, err = service.ConversionByID(t.Context(), first.ConversionID)
	assert.True(t, IsNotFoundError(err))
}

func TestConversion_ListConversions_Validation(t *testing.T) {
	store := &mocks.MockPersistence{}
	service := newService(t, WithPersistence(store))

	tests := []struct {
		name     string
		req      ListConversionsRequest
		expected error
	}{
		{name: "direction", req: ListConversionsRequest{Direction: "up"}, expected: ErrInvalidDirection},
		{name: "status", req: ListConversionsRequest{Status: "pending"}, expected: ErrInvalidStatus},
		{name: "negative limit", req: ListConversionsRequest{Limit: -1}, expected: ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ListConversions(t.Context(), tt.req)
			require.ErrorIs(t, err, tt.expected)
		})
	}

	store.On("ListConversions", mock.Anything, persistence.ListConversionsOptions{Limit: 5, Direction: models.DirectionFASToFSR}).
		Return(&persistence.ConversionListResult{Conversions: []*models.ConversionRecord{}}, nil).Once()

	_, err := service.ListConversions(t.Context(), ListConversionsRequest{Limit: 5, Direction: models.DirectionFASToFSR})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestConversion_WithoutPersistence(t *testing.T) {
	service := newService(t)

	_, err := service.ConversionByID(t.Context(), "id")
	require.ErrorIs(t, err, ErrPersistenceDisabled)

	_, err = service.ListConversions(t.Context(), ListConversionsRequest{})
	require.ErrorIs(t, err, ErrPersistenceDisabled)

	message, healthy := service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Equal(t, "Persistence layer not configured", message)
}

func TestConversion_HealthCheck(t *testing.T) {
	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused")).Once()

	service := newService(t, WithPersistence(store))

	message, healthy := service.HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Equal(t, "Persistence layer is unhealthy: connection refused", message)
}

func TestConversion_Detect(t *testing.T) {
	service := newService(t)

	detection, err := service.Detect(fasDocument(t))
	require.NoError(t, err)
	assert.Equal(t, converter.FormatFAS, detection.Format)
	assert.Equal(t, 2, detection.Items)

	_, err = service.Detect([]byte(`[]`))
	require.ErrorIs(t, err, ErrUndetectableFormat)
}

func TestConversion_Registry(t *testing.T) {
	service := newService(t)

	assert.NotNil(t, service.Registry())
}
