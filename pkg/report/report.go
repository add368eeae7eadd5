// Package report aggregates what a conversion replaced into a models.ConversionSummary.
package report

import (
	"fmt"

	"github.com/dukex/soarbridge/pkg/models"
)

// UnknownTypeLabel is the type reported for steps whose type is in no registry.
const UnknownTypeLabel = "Unknown Step Type"

// Definition identifies the playbook a replaced step belongs to.
type Definition struct {
	Name string
	UUID string
}

// Item is one replaced step.
type Item struct {
	Name         string
	UUID         string
	Type         string
	StepTypeUUID string
	Category     models.StepCategory
}

// Recorder receives one Item per replaced step.
type Recorder interface {
	Record(def Definition, item Item)
}

// Collector is a Recorder that builds a ConversionSummary. A Collector serves a single
// conversion call and is not safe for concurrent use.
type Collector struct {
	summary     *models.ConversionSummary
	unsupported map[string]*models.PlaybookUnsupported
	unknown     map[string]*models.PlaybookUnknown
	starts      map[string]*models.PlaybookManualStarts
	recorded    int
}

func NewCollector() *Collector {
	return &Collector{
		summary:     models.NewConversionSummary(),
		unsupported: map[string]*models.PlaybookUnsupported{},
		unknown:     map[string]*models.PlaybookUnknown{},
		starts:      map[string]*models.PlaybookManualStarts{},
	}
}

func (c *Collector) Record(def Definition, item Item) {
	key := def.UUID
	if key == "" {
		key = "name:" + def.Name
	}

	c.recorded++

	switch item.Category {
	case models.CategoryUnsupported:
		c.recordUnsupported(key, def, item)
	case models.CategoryUnknown:
		c.recordUnknown(key, def, item)
	case models.CategoryFlattenedTrigger:
		c.recordStart(key, def, item)
	default:
		c.recorded--
	}
}

// Recorded returns the number of items counted so far.
func (c *Collector) Recorded() int {
	return c.recorded
}

// Summary returns the aggregated summary.
func (c *Collector) Summary() *models.ConversionSummary {
	return c.summary
}

func (c *Collector) recordUnsupported(key string, def Definition, item Item) {
	entry, ok := c.unsupported[key]
	if !ok {
		entry = &models.PlaybookUnsupported{Name: def.Name, UUID: def.UUID, UnsupportedSteps: []*models.ConvertedStep{}}
		c.unsupported[key] = entry
		c.summary.PlaybooksWithUnsupported = append(c.summary.PlaybooksWithUnsupported, entry)
	}

	entry.UnsupportedSteps = append(entry.UnsupportedSteps, &models.ConvertedStep{
		Name:     item.Name,
		Type:     item.Type,
		UUID:     item.UUID,
		Category: item.Category,
	})

	c.summary.TotalUnsupportedSteps++
	c.summary.UnsupportedByType[item.Type]++
}

func (c *Collector) recordUnknown(key string, def Definition, item Item) {
	entry, ok := c.unknown[key]
	if !ok {
		entry = &models.PlaybookUnknown{Name: def.Name, UUID: def.UUID, UnknownSteps: []*models.ConvertedStep{}}
		c.unknown[key] = entry
		c.summary.PlaybooksWithUnknown = append(c.summary.PlaybooksWithUnknown, entry)
	}

	entry.UnknownSteps = append(entry.UnknownSteps, &models.ConvertedStep{
		Name:         item.Name,
		Type:         UnknownTypeLabel,
		UUID:         item.UUID,
		StepTypeUUID: item.StepTypeUUID,
		Category:     item.Category,
	})

	c.summary.TotalUnknownSteps++

	typeKey := fmt.Sprintf("UUID: %s", item.StepTypeUUID)

	stat, ok := c.summary.UnknownStepTypes[typeKey]
	if !ok {
		stat = &models.UnknownTypeStat{Examples: []string{}}
		c.summary.UnknownStepTypes[typeKey] = stat
	}

	stat.Count++
	stat.Examples = append(stat.Examples, item.Name)
}

func (c *Collector) recordStart(key string, def Definition, item Item) {
	entry, ok := c.starts[key]
	if !ok {
		entry = &models.PlaybookManualStarts{Name: def.Name, UUID: def.UUID, ManualStarts: []*models.ManualStart{}}
		c.starts[key] = entry
		c.summary.PlaybooksWithManualStarts = append(c.summary.PlaybooksWithManualStarts, entry)
	}

	entry.ManualStarts = append(entry.ManualStarts, &models.ManualStart{Name: item.Name, UUID: item.UUID})
	c.summary.TotalManualStartsConverted++
}
