package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/google/uuid"
)

const conversionsDir = "conversions"

// ConversionRepository stores one JSON file per conversion record.
type ConversionRepository struct {
	root string
}

// NewConversionRepository creates a new conversion repository.
func NewConversionRepository(root string) *ConversionRepository {
	return &ConversionRepository{root: root}
}

func (fp *Persistence) SaveConversion(ctx context.Context, record *models.ConversionRecord) error {
	return fp.conversionRepo.Save(ctx, record)
}

func (fp *Persistence) ConversionByID(ctx context.Context, id string) (*models.ConversionRecord, error) {
	return fp.conversionRepo.GetByID(ctx, id)
}

func (fp *Persistence) ListConversions(ctx context.Context, opts persistence.ListConversionsOptions) (*persistence.ConversionListResult, error) {
	return fp.conversionRepo.List(ctx, opts)
}

func (fp *Persistence) DeleteConversion(ctx context.Context, id string) error {
	return fp.conversionRepo.Delete(ctx, id)
}

func (cr *ConversionRepository) filePath(id string) string {
	return filepath.Clean(path.Join(cr.root, conversionsDir, id+".json"))
}

// Save writes the record, replacing any record with the same id.
func (cr *ConversionRepository) Save(_ context.Context, record *models.ConversionRecord) error {
	if _, err := uuid.Parse(record.ID); err != nil {
		return &persistence.ConversionError{
			Op:           "SaveConversion",
			ConversionID: record.ID,
			Err:          persistence.ErrInvalidConversion,
			Message:      "id must be a UUID",
		}
	}

	err := os.MkdirAll(path.Join(cr.root, conversionsDir), 0750)
	if err != nil {
		return fmt.Errorf("failed to create conversions directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversion %s: %w", record.ID, err)
	}

	return os.WriteFile(cr.filePath(record.ID), data, 0600)
}

// GetByID reads the record with the given id.
func (cr *ConversionRepository) GetByID(_ context.Context, id string) (*models.ConversionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, persistence.NewConversionError("ConversionByID", id, persistence.ErrConversionNotFound)
	}

	body, err := os.ReadFile(cr.filePath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewConversionError("ConversionByID", id, persistence.ErrConversionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch conversion %s: %w", id, err)
	}

	var record models.ConversionRecord

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversion %s: %w", id, err)
	}

	return &record, nil
}

// List loads every record from disk and pages them in memory.
func (cr *ConversionRepository) List(ctx context.Context, opts persistence.ListConversionsOptions) (*persistence.ConversionListResult, error) {
	root := os.DirFS(path.Join(cr.root, conversionsDir))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list conversion files: %w", err)
	}

	records := make([]*models.ConversionRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		record, err := cr.GetByID(ctx, id)
		if err != nil {
			if persistence.IsConversionNotFound(err) {
				continue
			}

			return nil, fmt.Errorf("failed to load conversion %s: %w", id, err)
		}

		records = append(records, record)
	}

	return persistence.Paginate(records, opts), nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (cr *ConversionRepository) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	err := os.Remove(cr.filePath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete conversion %s: %w", id, err)
	}

	return nil
}
