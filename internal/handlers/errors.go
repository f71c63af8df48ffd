package handlers

import (
	"errors"
	"log"

	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

// errorStatus maps a service error onto the HTTP status and body used by
// every dashboard endpoint.
func errorStatus(err error) (int, fiber.Map) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, fiber.Map{"error": "Not found"}
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, fiber.Map{"error": "Forbidden"}
	case errors.Is(err, services.ErrInvalidStateTransition):
		return fiber.StatusConflict, fiber.Map{"error": "Status change not allowed"}
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest, fiber.Map{"error": "Invalid request"}
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, fiber.Map{"error": "Already exists"}
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, fiber.Map{"error": "Invalid email or password"}
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized, fiber.Map{"error": "Not signed in"}
	case errors.Is(err, services.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable,
			fiber.Map{"error": "Storage service is not configured", "retryable": false}
	case errors.Is(err, services.ErrTransient):
		return fiber.StatusServiceUnavailable,
			fiber.Map{"error": "Service temporarily unavailable", "retryable": true}
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": "Failed to process request"}
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return respondErrorWith(c, err, nil)
}

// respondErrorWith adds extra fields to the error body, for operations that
// partly succeeded.
func respondErrorWith(c *fiber.Ctx, err error, extra fiber.Map) error {
	status, body := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	for key, value := range extra {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}
