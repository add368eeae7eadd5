package models

import (
	"encoding/json"
	"time"
)

// Direction names which schema a conversion reads and which it writes.
type Direction string

const (
	DirectionFSRToFAS Direction = "fsr-to-fas"
	DirectionFASToFSR Direction = "fas-to-fsr"
)

// Valid reports whether d is one of the two supported directions.
func (d Direction) Valid() bool {
	return d == DirectionFSRToFAS || d == DirectionFASToFSR
}

// SourceType is the top-level discriminator the direction expects on its input.
func (d Direction) SourceType() string {
	if d == DirectionFASToFSR {
		return PlaybookCollectionsType
	}

	return WorkflowCollectionsType
}

// ConversionStatus is the outcome stored with a ConversionRecord.
type ConversionStatus string

const (
	ConversionStatusSucceeded ConversionStatus = "succeeded"
	ConversionStatusFailed    ConversionStatus = "failed"
)

// ConversionRecord is the persisted trace of one conversion request.
type ConversionRecord struct {
	ID          string             `json:"id"`
	Direction   Direction          `json:"direction"`
	Status      ConversionStatus   `json:"status"`
	Collections int                `json:"collections"`
	Items       int                `json:"items"`
	Summary     *ConversionSummary `json:"summary,omitempty"`
	Error       string             `json:"error,omitempty"`
	Output      json.RawMessage    `json:"output,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Detection is the advisory result of inspecting an arbitrary document.
type Detection struct {
	Format      string `json:"format"`
	Collections int    `json:"collections"`
	Items       int    `json:"items"`
	HasVersions bool   `json:"hasVersions"`
}

// Direction suggests the conversion that reads the detected format.
func (d *Detection) Direction() Direction {
	if d.Format == "fas" {
		return DirectionFASToFSR
	}

	return DirectionFSRToFAS
}
