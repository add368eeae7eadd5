package converter

import (
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/payload"
	"github.com/dukex/soarbridge/pkg/timeconv"
)

const (
	versionName = "Version 1"
	versionNote = "Converted from FSR"
)

// newVersion snapshots a converted playbook as its first published version. FAS rejects
// playbook imports that carry no version.
func (c *Converter) newVersion(playbook *models.Playbook) *models.Version {
	now := timeconv.Format(c.now())

	snapshot := models.VersionJSON{
		UUID:        playbook.UUID,
		Debug:       boolOr(playbook.Debug, false),
		Steps:       make([]*models.VersionStep, 0, len(playbook.Steps)),
		Groups:      cloneList(playbook.Groups),
		Routes:      make([]*models.VersionRoute, 0, len(playbook.Routes)),
		Parameters:  payload.CloneValue(playbook.Parameters),
		TriggerStep: playbook.TriggerStep,
	}

	for _, step := range playbook.Steps {
		snapshot.Steps = append(snapshot.Steps, &models.VersionStep{
			ID:        step.UUID,
			Top:       payload.Int(step.Top),
			Left:      payload.Int(step.Left),
			Name:      step.Name,
			UUID:      step.UUID,
			Group:     payload.CloneValue(step.WorkflowGroup),
			StepType:  step.StepType,
			Arguments: payload.Clone(step.Arguments),
		})
	}

	for _, route := range playbook.Routes {
		snapshot.Routes = append(snapshot.Routes, &models.VersionRoute{
			Data:       payload.Clone(route.Data),
			Name:       route.Name,
			UUID:       route.UUID,
			SourceStep: route.SourceStep,
			TargetStep: route.TargetStep,
		})
	}

	return &models.Version{
		UUID:         c.ids.NewID(),
		CreateDate:   now,
		ModifyDate:   now,
		DeletedAt:    nil,
		Name:         versionName,
		WorkflowName: playbook.Name,
		Note:         versionNote,
		JSON:         snapshot,
		Draft:        false,
		Published:    true,
		Workflow:     playbook.UUID,
		CreateUser:   playbook.CreateUser,
		ModifyUser:   nil,
	}
}
