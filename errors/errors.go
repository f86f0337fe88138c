package errors

import (
	"github.com/gofiber/fiber/v2"
)

// RaiseError writes the {"error": message} body the booking clients expect.
func RaiseError(context *fiber.Ctx, status int, message string) error {
	return context.Status(status).JSON(fiber.Map{"error": message})
}

func RaisePermissionsError(context *fiber.Ctx, message string) error {
	return RaiseError(context, fiber.StatusForbidden, message)
}

func RaiseUnauthorizedError(context *fiber.Ctx, message string) error {
	return RaiseError(context, fiber.StatusUnauthorized, message)
}

func RaiseInternalServerError(context *fiber.Ctx, message string) error {
	return RaiseError(context, fiber.StatusInternalServerError, message)
}

func RaiseBadRequestError(context *fiber.Ctx, message string) error {
	return RaiseError(context, fiber.StatusBadRequest, message)
}

func RaiseNotFoundError(context *fiber.Ctx, message string) error {
	return RaiseError(context, fiber.StatusNotFound, message)
}

func RaiseConflictError(context *fiber.Ctx, message string) error {
	return RaiseError(context, fiber.StatusConflict, message)
}

// Handler is the fiber ErrorHandler: errors that escape a handler, including
// *fiber.Error from routing, are rendered in the same JSON shape.
func Handler(context *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"
	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
		message = e.Message
	}
	return RaiseError(context, status, message)
}
