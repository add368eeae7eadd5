package web

import (
	"errors"

	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/schema"
	"github.com/dukex/soarbridge/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var validationErr *schema.ValidationError

	switch {
	case converter.IsFormatMismatch(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("format_mismatch").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.As(err, &validationErr):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("invalid_structure").
			WithDetail(validationErr.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsNotFoundError(err):
		return notFound(c, "conversion not found")

	case errors.Is(err, services.ErrPersistenceDisabled):
		problem := problems.NewStatusProblem(501).
			WithInstance(c.Path()).
			WithType("history_disabled").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotImplemented).JSON(problem)

	case errors.Is(err, services.ErrEventsDisabled):
		problem := problems.NewStatusProblem(501).
			WithInstance(c.Path()).
			WithType("events_disabled").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotImplemented).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
