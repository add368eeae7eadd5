package postgresql_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/dukex/soarbridge/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"conversions", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("soarbridge_test"),
			postgres.WithUsername("soarbridge"),
			postgres.WithPassword("soarbridge"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func newRecord(direction models.Direction, status models.ConversionStatus, createdAt time.Time) *models.ConversionRecord {
	record := &models.ConversionRecord{
		ID:          uuid.NewString(),
		Direction:   direction,
		Status:      status,
		Collections: 1,
		Items:       2,
		CreatedAt:   createdAt,
	}

	if status == models.ConversionStatusFailed {
		record.Error = "Input must be a FortiSOAR workflow_collections export"

		return record
	}

	record.Output = json.RawMessage(`{"type": "playbook_collections", "data": []}`)

	if direction == models.DirectionFSRToFAS {
		record.Summary = models.NewConversionSummary()
		record.Summary.TotalUnknownSteps = 1
		record.Summary.UnknownStepTypes["abc"] = &models.UnknownTypeStat{Count: 1, Examples: []string{"Mystery"}}
	}

	return record
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	var exists bool

	err = db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_name = 'conversions' AND column_name = 'replaced_steps'
		)`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestConversionRepository_SaveAndGet(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	record := newRecord(models.DirectionFSRToFAS, models.ConversionStatusSucceeded, createdAt)

	require.NoError(t, p.SaveConversion(ctx, record))

	got, err := p.ConversionByID(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, models.DirectionFSRToFAS, got.Direction)
	assert.Equal(t, models.ConversionStatusSucceeded, got.Status)
	assert.Equal(t, 1, got.Collections)
	assert.Equal(t, 2, got.Items)
	assert.True(t, createdAt.Equal(got.CreatedAt))
	assert.JSONEq(t, string(record.Output), string(got.Output))
	require.NotNil(t, got.Summary)
	assert.Equal(t, 1, got.Summary.TotalUnknownSteps)
	assert.Equal(t, []string{"Mystery"}, got.Summary.UnknownStepTypes["abc"].Examples)
	assert.Empty(t, got.Error)
}

func TestConversionRepository_SaveUpserts(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	record := newRecord(models.DirectionFASToFSR, models.ConversionStatusSucceeded, time.Now())
	require.NoError(t, p.SaveConversion(ctx, record))

	record.Status = models.ConversionStatusFailed
	record.Error = "boom"
	record.Output = nil
	require.NoError(t, p.SaveConversion(ctx, record))

	got, err := p.ConversionByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversionStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
	assert.Nil(t, got.Output)
	assert.Nil(t, got.Summary)
}

func TestConversionRepository_SaveRejectsNonUUID(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	record := newRecord(models.DirectionFASToFSR, models.ConversionStatusSucceeded, time.Now())
	record.ID = "not-a-uuid"

	err := p.SaveConversion(ctx, record)
	require.Error(t, err)
	assert.True(t, persistence.IsInvalidConversion(err))
}

func TestConversionRepository_NotFound(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, err := p.ConversionByID(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, persistence.IsConversionNotFound(err))

	_, err = p.ConversionByID(ctx, "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsConversionNotFound(err))
}

func TestConversionRepository_List(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	oldest := newRecord(models.DirectionFSRToFAS, models.ConversionStatusSucceeded, base)
	middle := newRecord(models.DirectionFASToFSR, models.ConversionStatusFailed, base.Add(time.Hour))
	newest := newRecord(models.DirectionFSRToFAS, models.ConversionStatusSucceeded, base.Add(2*time.Hour))

	for _, record := range []*models.ConversionRecord{middle, oldest, newest} {
		require.NoError(t, p.SaveConversion(ctx, record))
	}

	tests := []struct {
		name     string
		opts     persistence.ListConversionsOptions
		expected []string
		total    int64
		hasNext  bool
	}{
		{
			name:     "all newest first",
			opts:     persistence.ListConversionsOptions{},
			expected: []string{newest.ID, middle.ID, oldest.ID},
			total:    3,
		},
		{
			name:     "by direction",
			opts:     persistence.ListConversionsOptions{Direction: models.DirectionFSRToFAS},
			expected: []string{newest.ID, oldest.ID},
			total:    2,
		},
		{
			name:     "by status",
			opts:     persistence.ListConversionsOptions{Status: models.ConversionStatusFailed},
			expected: []string{middle.ID},
			total:    1,
		},
		{
			name:     "first page",
			opts:     persistence.ListConversionsOptions{Limit: 2},
			expected: []string{newest.ID, middle.ID},
			total:    3,
			hasNext:  true,
		},
		{
			name:     "second page",
			opts:     persistence.ListConversionsOptions{Limit: 2, Offset: 2},
			expected: []string{oldest.ID},
			total:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.ListConversions(ctx, tt.opts)
			require.NoError(t, err)

			ids := make([]string, 0, len(result.Conversions))
			for _, record := range result.Conversions {
				ids = append(ids, record.ID)
			}

			assert.Equal(t, tt.expected, ids)
			assert.Equal(t, tt.total, result.TotalCount)
			assert.Equal(t, tt.hasNext, result.HasNextPage)
		})
	}
}

func TestConversionRepository_Delete(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	record := newRecord(models.DirectionFSRToFAS, models.ConversionStatusSucceeded, time.Now())
	require.NoError(t, p.SaveConversion(ctx, record))

	require.NoError(t, p.DeleteConversion(ctx, record.ID))

	_, err := p.ConversionByID(ctx, record.ID)
	assert.True(t, persistence.IsConversionNotFound(err))

	assert.NoError(t, p.DeleteConversion(ctx, record.ID))
	assert.NoError(t, p.DeleteConversion(ctx, "missing"))
}
