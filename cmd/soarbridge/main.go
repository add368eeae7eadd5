// Package main provides the soarbridge command line converter.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/soarbridge/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "soarbridge",
		Usage:                 "Convert automation exports between FortiSOAR and FortiAnalyzer",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "step-types",
				Usage:   "YAML file overlaying the built-in step type registry",
				Sources: cli.EnvVars("STEP_TYPES_FILE"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"), command.String("log-format"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			ConvertCommand(),
			DetectCommand(),
			CheckCommand(),
			RecoverCommand(),
			RegistryCommand(),
		},
	}
}

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
