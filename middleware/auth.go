package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	apierrors "conference-booking/errors"
	"conference-booking/model"
)

const IdentityKey = "identity"

func Authorize(signKey []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   signKey,
		ErrorHandler: jwtError,
		ContextKey:   IdentityKey,
	})
}

// RequireAdmin must run after Authorize.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdminRole(c) {
			return apierrors.RaisePermissionsError(c, "only admin can perform this operation")
		}
		return c.Next()
	}
}

func IsAdminRole(c *fiber.Ctx) bool {
	token, ok := c.Locals(IdentityKey).(*jwt.Token)
	if !ok {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == model.RoleAdmin
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return apierrors.RaiseBadRequestError(c, "Missing or malformed JWT")
	}
	return apierrors.RaiseUnauthorizedError(c, "Invalid or expired JWT")
}
