package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/google/uuid"
)

// ConversionRepository handles conversion record database operations.
type ConversionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConversionRepository creates a new conversion repository.
func NewConversionRepository(db *sql.DB, logger *slog.Logger) *ConversionRepository {
	return &ConversionRepository{db: db, logger: logger}
}

// Save inserts a record, or replaces the record with the same id.
func (r *ConversionRepository) Save(ctx context.Context, record *models.ConversionRecord) error {
	if _, err := uuid.Parse(record.ID); err != nil {
		return &persistence.ConversionError{
			Op:           "SaveConversion",
			ConversionID: record.ID,
			Err:          persistence.ErrInvalidConversion,
			Message:      "id must be a UUID",
		}
	}

	query := `
		INSERT INTO conversions (
			id, direction, status, collections, items,
			summary, error_message, output, created_at, replaced_steps
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			direction = EXCLUDED.direction,
			status = EXCLUDED.status,
			collections = EXCLUDED.collections,
			items = EXCLUDED.items,
			summary = EXCLUDED.summary,
			error_message = EXCLUDED.error_message,
			output = EXCLUDED.output,
			replaced_steps = EXCLUDED.replaced_steps
	`

	var summaryJSON sql.NullString

	if record.Summary != nil {
		data, err := json.Marshal(record.Summary)
		if err != nil {
			return fmt.Errorf("failed to serialize summary: %w", err)
		}

		summaryJSON = sql.NullString{String: string(data), Valid: true}
	}

	var outputJSON sql.NullString
	if len(record.Output) > 0 {
		outputJSON = sql.NullString{String: string(record.Output), Valid: true}
	}

	errorMessage := sql.NullString{String: record.Error, Valid: record.Error != ""}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		string(record.Direction),
		string(record.Status),
		record.Collections,
		record.Items,
		summaryJSON,
		errorMessage,
		outputJSON,
		record.CreatedAt.UTC(),
		record.Summary.Total(),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save conversion", "conversion_id", record.ID, "error", err)

		return fmt.Errorf("failed to save conversion %s: %w", record.ID, err)
	}

	return nil
}

const selectConversion = `
	SELECT
		id
	  , direction
	  , status
	  , collections
	  , items
	  , summary
	  , error_message
	  , output
	  , created_at
	FROM conversions
`

// GetByID returns the record with the given id.
func (r *ConversionRepository) GetByID(ctx context.Context, id string) (*models.ConversionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, persistence.NewConversionError("ConversionByID", id, persistence.ErrConversionNotFound)
	}

	row := r.db.QueryRowContext(ctx, selectConversion+" WHERE id = $1", id)

	record, err := scanConversion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewConversionError("ConversionByID", id, persistence.ErrConversionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch conversion %s: %w", id, err)
	}

	return record, nil
}

// List returns records newest first, filtered and paginated in SQL.
func (r *ConversionRepository) List(ctx context.Context, opts persistence.ListConversionsOptions) (*persistence.ConversionListResult, error) {
	opts = opts.Normalize()

	var (
		conditions []string
		args       []any
	)

	if opts.Direction != "" {
		args = append(args, string(opts.Direction))
		conditions = append(conditions, fmt.Sprintf("direction = $%d", len(args)))
	}

	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversions"+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		selectConversion, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	conversions := make([]*models.ConversionRecord, 0, opts.Limit)

	for rows.Next() {
		record, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}

		conversions = append(conversions, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating conversions: %w", err)
	}

	return &persistence.ConversionListResult{
		Conversions: conversions,
		TotalCount:  total,
		HasNextPage: int64(opts.Offset+len(conversions)) < total,
	}, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (r *ConversionRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	_, err := r.db.ExecContext(ctx, "DELETE FROM conversions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversion %s: %w", id, err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(row scanner) (*models.ConversionRecord, error) {
	var (
		record       models.ConversionRecord
		direction    string
		status       string
		summaryJSON  sql.NullString
		errorMessage sql.NullString
		outputJSON   sql.NullString
	)

	err := row.Scan(
		&record.ID,
		&direction,
		&status,
		&record.Collections,
		&record.Items,
		&summaryJSON,
		&errorMessage,
		&outputJSON,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Direction = models.Direction(direction)
	record.Status = models.ConversionStatus(status)
	record.Error = errorMessage.String
	record.CreatedAt = record.CreatedAt.UTC()

	if summaryJSON.Valid {
		record.Summary = &models.ConversionSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), record.Summary); err != nil {
			return nil, fmt.Errorf("failed to deserialize summary: %w", err)
		}
	}

	if outputJSON.Valid {
		record.Output = json.RawMessage(outputJSON.String)
	}

	return &record, nil
}
