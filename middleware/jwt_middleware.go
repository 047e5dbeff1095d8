package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"taskhub/models"
	"taskhub/utils"
)

// Authenticator resolves an access token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protected rejects requests without a valid access token. The token is read
// from the Authorization header, then the access_token cookie, then the
// token query parameter (browsers cannot set headers on websocket upgrades).
func Protected(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string
		if authHeader := c.Get("Authorization"); authHeader != "" {
			// Check if it's a Bearer token
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format", nil)
			}
			token = tokenParts[1]
		} else if cookie := c.Cookies("access_token"); cookie != "" {
			token = cookie
		} else {
			token = c.Query("token")
		}
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "No token, authorization denied", nil)
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Token is not valid", nil)
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// UserID returns the id stored by Protected, or 0 outside protected routes.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// CurrentUser returns the user stored by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
