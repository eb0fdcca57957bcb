package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	requestTimeout = 5 * time.Second

	categorySuccess = "success"
	categoryWarning = "warning"
)

// notice is the body of a redirect response.
type notice struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// requesterID returns the user id stored by AuthRequired.
func requesterID(c *fiber.Ctx) uint {
	uid, _ := middleware.UserIDFromContext(c.UserContext())
	return uid
}

// parsePage reads the page query parameter. Missing or non-numeric values
// mean page 1; out-of-range numbers are left for the feed to reject.
func parsePage(c *fiber.Ctx) int {
	return c.QueryInt("page", 1)
}

// requestContext bounds store reads made on behalf of c.
func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// redirect answers with 303 See Other to location and a notice body.
func redirect(c *fiber.Ctx, location, message, category string) error {
	c.Location(location)
	return c.Status(fiber.StatusSeeOther).JSON(notice{Message: message, Category: category})
}

// mapServiceError picks the HTTP status for err from its AppError code.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound, models.CodeTargetNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation, models.CodeSelfFollowRejected:
		return fiber.StatusBadRequest
	case models.CodeDuplicateUsername:
		return fiber.StatusConflict
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status mapServiceError picks. Errors that
// are not AppErrors are logged and hidden behind INTERNAL_ERROR.
func respondError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}
