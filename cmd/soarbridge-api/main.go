package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dukex/soarbridge/pkg/cmd"
	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/eventbus"
	"github.com/dukex/soarbridge/pkg/log"
	"github.com/dukex/soarbridge/pkg/otelhelper"
	"github.com/dukex/soarbridge/pkg/schema"
	"github.com/dukex/soarbridge/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort = 9091
	serviceName = "soarbridge-api"
)

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Serve export conversions over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Conversion history URL (postgres://, redis://, file path); history is disabled when empty",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka, none)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "step-types",
				Usage:   "YAML file overlaying the built-in step type registry",
				Sources: cli.EnvVars("STEP_TYPES_FILE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing soarbridge API")

	registry, err := cmd.NewRegistry(logger, command.String("step-types"))
	if err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}

	var opts []services.ConversionOption

	if url := command.String("database-url"); url != "" {
		persistence, err := cmd.NewPersistence(ctx, logger, url)
		if err != nil {
			return err
		}

		defer func() {
			if err := persistence.Close(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
			}
		}()

		opts = append(opts, services.WithPersistence(persistence))
	} else {
		logger.WarnContext(ctx, "No database URL configured, conversion history is disabled")
	}

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
	if err != nil {
		return err
	}

	var activity *services.Activity

	if eventBus != nil {
		defer func() {
			if err := eventBus.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		}()

		activity, err = subscribeActivity(ctx, eventBus, logger)
		if err != nil {
			return err
		}

		opts = append(opts, services.WithPublisher(eventBus))
	}

	if command.Bool("tracing") {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		opts = append(opts, services.WithTracer(tracer))
	}

	conv := converter.New(converter.WithRegistry(registry), converter.WithLogger(logger))
	conversion := services.NewConversion(conv, validator, logger, opts...)

	return NewAPI(logger, conversion, activity).Start(command.Int("port"))
}

// subscribeActivity feeds the bus's conversion events into a new Activity tally.
func subscribeActivity(ctx context.Context, bus eventbus.EventSubscriber, logger *slog.Logger) (*services.Activity, error) {
	activity := services.NewActivity(logger)

	if err := activity.Register(bus); err != nil {
		return nil, err
	}

	if err := bus.Subscribe(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to conversion events: %w", err)
	}

	return activity, nil
}
