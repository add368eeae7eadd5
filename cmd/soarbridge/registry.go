package main

import (
	"context"
	"fmt"

	"github.com/dukex/soarbridge/pkg/cmd"
	"github.com/dukex/soarbridge/pkg/log"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func RegistryCommand() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "Print the effective step type registry",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (yaml, json)",
				Value: "yaml",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			registry, err := cmd.NewRegistry(log.WithModule("registry"), command.String("step-types"))
			if err != nil {
				return err
			}

			switch command.String("format") {
			case "json":
				return writeJSON(command, registry)
			case "yaml":
				data, err := yaml.Marshal(registry)
				if err != nil {
					return err
				}

				return writeOutput(command, data)
			default:
				return fmt.Errorf("unsupported format: %s", command.String("format"))
			}
		},
	}
}
