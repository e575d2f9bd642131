package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel failure classes shared by the services. Handlers translate them
// into HTTP responses with ToFiber; anything unrecognized becomes a 500.
var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ToFiber converts a service error into the fiber error rendered by the
// app-level error handler as {"error": message}.
func ToFiber(err error) *fiber.Error {
	return fiber.NewError(Status(err), err.Error())
}
