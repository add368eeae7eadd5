package main

import (
	"context"

	cli "github.com/urfave/cli/v3"
)

func DetectCommand() *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Report which export format a document is",
		Flags: []cli.Flag{inputFlag(), outputFlag()},
		Action: func(_ context.Context, command *cli.Command) error {
			document, err := readInput(command)
			if err != nil {
				return err
			}

			detection, err := detectOrFail(document)
			if err != nil {
				return err
			}

			return writeJSON(command, map[string]any{
				"format":      detection.Format,
				"collections": detection.Collections,
				"items":       detection.Items,
				"hasVersions": detection.HasVersions,
				"direction":   detection.Direction(),
			})
		},
	}
}
