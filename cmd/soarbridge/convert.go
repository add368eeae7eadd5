package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/soarbridge/pkg/cmd"
	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/eventbus"
	"github.com/dukex/soarbridge/pkg/log"
	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/dukex/soarbridge/pkg/schema"
	"github.com/dukex/soarbridge/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func ConvertCommand() *cli.Command {
	return &cli.Command{
		Name:    "convert",
		Aliases: []string{"c"},
		Usage:   "Convert a workflow_collections or playbook_collections export",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
			&cli.StringFlag{
				Name:    "direction",
				Aliases: []string{"d"},
				Usage:   "Conversion direction (auto, fsr-to-fas, fas-to-fsr)",
				Value:   string(services.DirectionAuto),
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print the replaced-step summary to stderr",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Record the conversion in this history store",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Publish conversion events (none, gochannel, kafka)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("convert")

			document, err := readInput(command)
			if err != nil {
				return err
			}

			service, cleanup, err := newConversionService(ctx, command, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := service.Convert(ctx, services.ConvertRequest{
				Direction: models.Direction(command.String("direction")),
				Document:  document,
			})
			if err != nil {
				return err
			}

			if command.Bool("summary") {
				printSummary(command, result)
			}

			return writeOutput(command, result.Output)
		},
	}
}

func newConversionService(ctx context.Context, command *cli.Command, logger *slog.Logger) (*services.Conversion, func(), error) {
	registry, err := cmd.NewRegistry(logger, command.String("step-types"))
	if err != nil {
		return nil, nil, err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, nil, err
	}

	var (
		opts    []services.ConversionOption
		store   persistence.Persistence
		bus     eventbus.EventBus
		cleanup = func() {
			if bus != nil {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}

			if store != nil {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}
		}
	)

	if url := command.String("database-url"); url != "" {
		store, err = cmd.NewPersistence(ctx, logger, url)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, services.WithPersistence(store))
	}

	bus, err = cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	if bus != nil {
		opts = append(opts, services.WithPublisher(bus))
	}

	conv := converter.New(converter.WithRegistry(registry), converter.WithLogger(logger))

	return services.NewConversion(conv, validator, logger, opts...), cleanup, nil
}

func printSummary(command *cli.Command, result *services.ConvertResponse) {
	w := stderr(command)

	fmt.Fprintf(w, "conversion %s (%s): %d collection(s), %d item(s)\n",
		result.ConversionID, result.Direction, result.Collections, result.Items)

	summary := result.Summary
	if summary == nil {
		return
	}

	fmt.Fprintf(w, "  unsupported steps: %d\n", summary.TotalUnsupportedSteps)
	fmt.Fprintf(w, "  unknown steps:     %d\n", summary.TotalUnknownSteps)
	fmt.Fprintf(w, "  flattened starts:  %d\n", summary.TotalManualStartsConverted)

	for id, stat := range summary.UnknownStepTypes {
		fmt.Fprintf(w, "  unknown type %s: %d (e.g. %v)\n", id, stat.Count, stat.Examples)
	}
}

func detectOrFail(document []byte) (*models.Detection, error) {
	detection := converter.Detect(document)
	if detection == nil {
		return nil, services.ErrUndetectableFormat
	}

	return detection, nil
}
