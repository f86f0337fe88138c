package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"conference-booking/database"
	apierrors "conference-booking/errors"
)

const tokenTTL = 8 * time.Hour

func isPasswordHashCorrect(dbHash, pass string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(dbHash), []byte(pass))
	return err == nil
}

func (h *Handler) Login(c *fiber.Ctx) error {
	type Credentials struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	creds := new(Credentials)
	if err := c.BodyParser(creds); err != nil {
		return apierrors.RaiseBadRequestError(c, "Invalid JSON")
	}

	user, err := h.store.GetUserData(c.UserContext(), creds.Login)
	if errors.Is(err, database.ErrNotFound) {
		return apierrors.RaiseUnauthorizedError(c, "Invalid credentials")
	} else if err != nil {
		h.logger(c).WithError(err).Error("user lookup failed")
		return apierrors.RaiseInternalServerError(c, "Error on login request when comparing user data")
	}

	if !isPasswordHashCorrect(user.HashedPassword, creds.Password) {
		return apierrors.RaiseUnauthorizedError(c, "Invalid credentials")
	}

	if len(h.signKey) == 0 {
		h.logger(c).Error("SIGN is not configured, refusing to issue tokens")
		return apierrors.RaiseInternalServerError(c, "token signing is not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Login,
		"role":     user.Role,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})

	t, err := token.SignedString(h.signKey)
	if err != nil {
		return apierrors.RaiseInternalServerError(c, "cannot sign token")
	}

	return c.JSON(fiber.Map{"token": t})
}
