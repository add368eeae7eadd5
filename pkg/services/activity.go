package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/dukex/soarbridge/pkg/eventbus"
	"github.com/dukex/soarbridge/pkg/events"
	"github.com/dukex/soarbridge/pkg/models"
)

// ActivityStats is a running tally of the conversion events seen by one process.
type ActivityStats struct {
	Completed        int                      `json:"completed"`
	Failed           int                      `json:"failed"`
	ByDirection      map[models.Direction]int `json:"by_direction"`
	ReplacedSteps    int                      `json:"replaced_steps"`
	LastConversionID string                   `json:"last_conversion_id,omitempty"`
	LastEventAt      *time.Time               `json:"last_event_at,omitempty"`
}

// Activity consumes conversion events from the bus and keeps ActivityStats.
type Activity struct {
	mu     sync.RWMutex
	stats  ActivityStats
	logger *slog.Logger
}

func NewActivity(logger *slog.Logger) *Activity {
	return &Activity{
		stats:  ActivityStats{ByDirection: map[models.Direction]int{}},
		logger: logger.With("module", "activity"),
	}
}

// Register installs the event handlers on sub. The caller starts the subscription.
func (a *Activity) Register(sub eventbus.EventSubscriber) error {
	if err := sub.Handle(events.ConversionCompletedEvent, a.handleCompleted); err != nil {
		return fmt.Errorf("failed to register %s handler: %w", events.ConversionCompletedEvent, err)
	}

	if err := sub.Handle(events.ConversionFailedEvent, a.handleFailed); err != nil {
		return fmt.Errorf("failed to register %s handler: %w", events.ConversionFailedEvent, err)
	}

	return nil
}

func (a *Activity) handleCompleted(ctx context.Context, event any) error {
	completed, ok := event.(*events.ConversionCompleted)
	if !ok {
		return fmt.Errorf("unexpected %T for %s", event, events.ConversionCompletedEvent)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.Completed++
	a.stats.ReplacedSteps += completed.ReplacedSteps
	a.stats.ByDirection[completed.Direction]++
	a.touch(completed.BaseEvent)

	a.logger.DebugContext(ctx, "Conversion completed event received",
		"conversion_id", completed.ConversionID,
		"replaced_steps", completed.ReplacedSteps)

	return nil
}

func (a *Activity) handleFailed(ctx context.Context, event any) error {
	failed, ok := event.(*events.ConversionFailed)
	if !ok {
		return fmt.Errorf("unexpected %T for %s", event, events.ConversionFailedEvent)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.Failed++
	a.stats.ByDirection[failed.Direction]++
	a.touch(failed.BaseEvent)

	a.logger.DebugContext(ctx, "Conversion failed event received",
		"conversion_id", failed.ConversionID,
		"error", failed.Error)

	return nil
}

func (a *Activity) touch(event events.BaseEvent) {
	a.stats.LastConversionID = event.ConversionID

	at := event.Timestamp
	a.stats.LastEventAt = &at
}

// Snapshot returns a copy of the current tally.
func (a *Activity) Snapshot() ActivityStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := a.stats
	stats.ByDirection = maps.Clone(a.stats.ByDirection)

	if a.stats.LastEventAt != nil {
		at := *a.stats.LastEventAt
		stats.LastEventAt = &at
	}

	return stats
}
