package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dukex/soarbridge/pkg/fallback"
	"github.com/dukex/soarbridge/pkg/models"
	cli "github.com/urfave/cli/v3"
)

// RecoveredStep is one placeholder found in a converted FAS export.
type RecoveredStep struct {
	Playbook     string               `json:"playbook"`
	PlaybookUUID string               `json:"playbookUuid"`
	Category     models.StepCategory  `json:"category"`
	Note         string               `json:"note"`
	Original     *models.WorkflowStep `json:"original"`
}

func RecoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "recover",
		Usage: "Extract the original FSR steps preserved in a converted FAS export",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
			&cli.StringFlag{
				Name:  "step",
				Usage: "Only recover the step with this uuid",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			document, err := readInput(command)
			if err != nil {
				return err
			}

			recovered, err := recoverSteps(document, command.String("step"))
			if err != nil {
				return err
			}

			if id := command.String("step"); id != "" {
				if len(recovered) == 0 {
					return fmt.Errorf("no preserved step with uuid %s", id)
				}

				return writeJSON(command, recovered[0].Original)
			}

			return writeJSON(command, recovered)
		},
	}
}

func recoverSteps(document []byte, stepID string) ([]*RecoveredStep, error) {
	var doc models.PlaybookExport
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode playbook export: %w", err)
	}

	if doc.Type != models.PlaybookCollectionsType {
		return nil, fmt.Errorf("expected a %s export, got %q", models.PlaybookCollectionsType, doc.Type)
	}

	recovered := []*RecoveredStep{}

	for _, collection := range doc.Data {
		if collection == nil {
			continue
		}

		for _, playbook := range collection.Playbooks {
			if playbook == nil {
				continue
			}

			for _, step := range playbook.Steps {
				if step == nil || !fallback.IsEncoded(step) {
					continue
				}

				preserved, category, err := fallback.Decode(step)
				if err != nil {
					return nil, fmt.Errorf("playbook %s: %w", playbook.Name, err)
				}

				if stepID != "" && preserved.UUID != stepID {
					continue
				}

				recovered = append(recovered, &RecoveredStep{
					Playbook:     playbook.Name,
					PlaybookUUID: playbook.UUID,
					Category:     category,
					Note:         preserved.ConversionNote,
					Original:     preserved.Restore(),
				})
			}
		}
	}

	return recovered, nil
}
