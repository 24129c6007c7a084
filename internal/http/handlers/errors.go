package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// ErrorHandler turns classified errors into {"error": msg} responses.
// Server-side failures are logged in full and answered generically.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := domain.Message(err)

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrMalformedPayload):
		code = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		code = fiber.StatusConflict
	}

	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		if fe != nil {
			msg = "something went wrong, please try again"
		}
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
