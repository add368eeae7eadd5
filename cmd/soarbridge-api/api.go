// Package main provides the soarbridge conversion API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/soarbridge/pkg/services"
	"github.com/dukex/soarbridge/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// maxDocumentSize bounds request bodies.
const maxDocumentSize = 64 * 1024 * 1024

type API struct {
	logger     *slog.Logger
	conversion *services.Conversion
	activity   *services.Activity
	validate   *validator.Validate
}

func NewAPI(logger *slog.Logger, conversion *services.Conversion, activity *services.Activity) *API {
	return &API{
		logger:     logger,
		conversion: conversion,
		activity:   activity,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.conversion, a.activity, a.validate)

	app := fiber.New(fiber.Config{
		BodyLimit: maxDocumentSize,
	})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("soarbridge API")
	})

	c := app.Group("/conversions")
	c.Get("/", handlers.GetConversions)
	c.Post("/", handlers.CreateConversion)
	c.Get("/:id", handlers.GetConversion)
	c.Get("/:id/output", handlers.GetConversionOutput)
	c.Delete("/:id", handlers.DeleteConversion)

	app.Post("/convert/:direction?", handlers.ConvertDocument)
	app.Post("/detect", handlers.Detect)
	app.Get("/step-types", handlers.GetStepTypes)
	app.Get("/activity", handlers.GetActivity)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Starting soarbridge API", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
