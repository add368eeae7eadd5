package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "List step references that point at missing steps",
		Flags: []cli.Flag{inputFlag(), outputFlag()},
		Action: func(_ context.Context, command *cli.Command) error {
			document, err := readInput(command)
			if err != nil {
				return err
			}

			warnings, err := referenceWarnings(document)
			if err != nil {
				return err
			}

			lines := make([]string, 0, len(warnings))
			for _, warning := range warnings {
				lines = append(lines, warning.String())
			}

			return writeJSON(command, map[string]any{
				"dangling": len(lines),
				"warnings": lines,
			})
		},
	}
}

func referenceWarnings(document []byte) ([]converter.ReferenceWarning, error) {
	detection, err := detectOrFail(document)
	if err != nil {
		return nil, err
	}

	warnings := []converter.ReferenceWarning{}

	if detection.Format == converter.FormatFAS {
		var doc models.PlaybookExport
		if err := json.Unmarshal(document, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode playbook export: %w", err)
		}

		for _, collection := range doc.Data {
			if collection == nil {
				continue
			}

			for _, playbook := range collection.Playbooks {
				if playbook != nil {
					warnings = append(warnings, converter.CheckPlaybookReferences(playbook)...)
				}
			}
		}

		return warnings, nil
	}

	var doc models.WorkflowExport
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode workflow export: %w", err)
	}

	for _, collection := range doc.Data {
		if collection == nil {
			continue
		}

		for _, workflow := range collection.Workflows {
			if workflow != nil {
				warnings = append(warnings, converter.CheckWorkflowReferences(workflow)...)
			}
		}
	}

	return warnings, nil
}
