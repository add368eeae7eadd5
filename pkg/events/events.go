// Package events defines the notifications published when a conversion finishes.
package events

import (
	"time"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic is the Kafka topic carrying conversion events.
const Topic = "soarbridge.conversions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ConversionCompletedEvent EventType = "conversion.completed"
	ConversionFailedEvent    EventType = "conversion.failed"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	ConversionID string         `json:"conversion_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a new event of the given type.
func NewBaseEvent(eventType EventType, conversionID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		ConversionID: conversionID,
	}
}

// ConversionCompleted is published after a conversion output was produced and stored.
type ConversionCompleted struct {
	BaseEvent

	Direction     models.Direction `json:"direction"`
	Collections   int              `json:"collections"`
	Items         int              `json:"items"`
	ReplacedSteps int              `json:"replaced_steps"`
	Duration      time.Duration    `json:"duration"`
}

func (c ConversionCompleted) GetType() EventType {
	return ConversionCompletedEvent
}

// ConversionFailed is published when a request was rejected or the mapping failed.
type ConversionFailed struct {
	BaseEvent

	Direction models.Direction `json:"direction"`
	Error     string           `json:"error"`
	Duration  time.Duration    `json:"duration"`
}

func (c ConversionFailed) GetType() EventType {
	return ConversionFailedEvent
}
