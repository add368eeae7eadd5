// Package redis provides Redis persistence for conversion history.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "soarbridge"
	recordKey        = "conversion:"
	indexKey         = "conversions"
)

// Persistence stores each record as a JSON string and indexes ids in a sorted set
// scored by creation time.
type Persistence struct {
	client goredis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewPersistence connects to the server described by a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPersistenceWithClient(client, logger), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(client goredis.UniversalClient, logger *slog.Logger) *Persistence {
	return &Persistence{
		client: client,
		prefix: defaultKeyPrefix,
		logger: logger.With("module", "redis_persistence"),
	}
}

func (p *Persistence) key(parts ...string) string {
	key := p.prefix + ":"
	for _, part := range parts {
		key += part
	}

	return key
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// SaveConversion writes the record and its index entry in one transaction.
func (p *Persistence) SaveConversion(ctx context.Context, record *models.ConversionRecord) error {
	if _, err := uuid.Parse(record.ID); err != nil {
		return &persistence.ConversionError{
			Op:           "SaveConversion",
			ConversionID: record.ID,
			Err:          persistence.ErrInvalidConversion,
			Message:      "id must be a UUID",
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal conversion %s: %w", record.ID, err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, p.key(recordKey, record.ID), data, 0)
		pipe.ZAdd(ctx, p.key(indexKey), goredis.Z{
			Score:  float64(record.CreatedAt.UnixMilli()),
			Member: record.ID,
		})

		return nil
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to save conversion", "conversion_id", record.ID, "error", err)

		return fmt.Errorf("failed to save conversion %s: %w", record.ID, err)
	}

	return nil
}

func (p *Persistence) ConversionByID(ctx context.Context, id string) (*models.ConversionRecord, error) {
	data, err := p.client.Get(ctx, p.key(recordKey, id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewConversionError("ConversionByID", id, persistence.ErrConversionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch conversion %s: %w", id, err)
	}

	var record models.ConversionRecord

	err = json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversion %s: %w", id, err)
	}

	return &record, nil
}

// ListConversions loads every indexed record and pages them in memory. Index entries
// whose record has gone are skipped.
func (p *Persistence) ListConversions(ctx context.Context, opts persistence.ListConversionsOptions) (*persistence.ConversionListResult, error) {
	ids, err := p.client.ZRevRange(ctx, p.key(indexKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}

	if len(ids) == 0 {
		return persistence.Paginate(nil, opts), nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = p.key(recordKey, id)
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversions: %w", err)
	}

	records := make([]*models.ConversionRecord, 0, len(values))

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			p.logger.DebugContext(ctx, "Skipping stale index entry", "conversion_id", ids[i])

			continue
		}

		var record models.ConversionRecord

		err := json.Unmarshal([]byte(raw), &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversion %s: %w", ids[i], err)
		}

		records = append(records, &record)
	}

	return persistence.Paginate(records, opts), nil
}

func (p *Persistence) DeleteConversion(ctx context.Context, id string) error {
	_, err := p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, p.key(recordKey, id))
		pipe.ZRem(ctx, p.key(indexKey), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete conversion %s: %w", id, err)
	}

	return nil
}
