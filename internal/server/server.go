package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/config"
	"github.com/patholens/patholens-api/internal/respond"
)

// New builds the fiber application with the shared error boundary. All error
// translation into the response envelope happens here, in one place.
func New(cfg config.Config, logger *slog.Logger) *fiber.App {
	development := cfg.IsDevelopment()

	return fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             int(cfg.MaxImageBytes) + 1<<20,
		DisableStartupMessage: !development,
		ErrorHandler:          errorHandler(logger, development),
	})
}

func errorHandler(logger *slog.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperr.As(err); ok {
			switch appErr.Kind {
			case apperr.KindInternal:
				logger.Error("request failed",
					"method", c.Method(),
					"path", c.Path(),
					"error", appErr.Err,
				)
				message := appErr.Message
				if development && appErr.Err != nil {
					message = appErr.Err.Error()
				}
				return respond.Fail(c, appErr.HTTPStatus(), message, nil)
			case apperr.KindUpstream:
				logger.Error("upstream dependency failed",
					"method", c.Method(),
					"path", c.Path(),
					"error", appErr.Err,
				)
				return respond.Fail(c, appErr.HTTPStatus(), appErr.Message, nil)
			default:
				return respond.Fail(c, appErr.HTTPStatus(), appErr.Message, appErr.Fields)
			}
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return respond.Fail(c, fiberErr.Code, fiberErr.Message, nil)
		}

		logger.Error("unhandled error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		message := "Internal server error"
		if development {
			message = err.Error()
		}
		return respond.Fail(c, fiber.StatusInternalServerError, message, nil)
	}
}
