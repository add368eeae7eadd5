// Package persistence provides the storage abstraction for conversion history.
package persistence

import (
	"context"
	"slices"

	"github.com/dukex/soarbridge/pkg/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Persistence interface {
	SaveConversion(ctx context.Context, record *models.ConversionRecord) error
	ConversionByID(ctx context.Context, id string) (*models.ConversionRecord, error)
	ListConversions(ctx context.Context, opts ListConversionsOptions) (*ConversionListResult, error)
	DeleteConversion(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// ListConversionsOptions filters and paginates the conversion history. Records are listed
// newest first.
type ListConversionsOptions struct {
	Limit     int
	Offset    int
	Direction models.Direction
	Status    models.ConversionStatus
}

// Normalize applies the default and maximum page size.
func (o ListConversionsOptions) Normalize() ListConversionsOptions {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	return o
}

// Matches reports whether record passes the filters of o.
func (o ListConversionsOptions) Matches(record *models.ConversionRecord) bool {
	if o.Direction != "" && record.Direction != o.Direction {
		return false
	}

	if o.Status != "" && record.Status != o.Status {
		return false
	}

	return true
}

type ConversionListResult struct {
	Conversions []*models.ConversionRecord `json:"conversions"`
	TotalCount  int64                      `json:"total_count"`
	HasNextPage bool                       `json:"has_next_page"`
}

// Paginate filters, sorts and pages an in-memory record set. Stores without a query engine
// use it to answer ListConversions.
func Paginate(records []*models.ConversionRecord, opts ListConversionsOptions) *ConversionListResult {
	opts = opts.Normalize()

	filtered := make([]*models.ConversionRecord, 0, len(records))
	for _, record := range records {
		if opts.Matches(record) {
			filtered = append(filtered, record)
		}
	}

	slices.SortStableFunc(filtered, func(a, b *models.ConversionRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	result := &ConversionListResult{
		Conversions: []*models.ConversionRecord{},
		TotalCount:  int64(len(filtered)),
	}

	if opts.Offset >= len(filtered) {
		return result
	}

	end := min(opts.Offset+opts.Limit, len(filtered))
	result.Conversions = filtered[opts.Offset:end]
	result.HasNextPage = end < len(filtered)

	return result
}
