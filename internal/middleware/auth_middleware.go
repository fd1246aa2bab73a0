package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	jwtPkg "github.com/kadraly/kadraly-backend/pkg/jwt"
)

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's identity in locals.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		userID, email, ok := identityFromClaims(claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token claims",
			})
		}

		c.Locals("userID", userID)
		c.Locals("userEmail", email)
		return c.Next()
	}
}

// AuthOptional resolves the identity when a token is present but lets
// anonymous requests through; guest endpoints combine it with access codes.
func AuthOptional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c)
		if err == nil {
			if userID, email, ok := identityFromClaims(claims); ok {
				c.Locals("userID", userID)
				c.Locals("userEmail", email)
			}
		}
		return c.Next()
	}
}

func claimsFromHeader(c *fiber.Ctx) (map[string]interface{}, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	claims, err := jwtPkg.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}

func identityFromClaims(claims map[string]interface{}) (uint, string, bool) {
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", false
	}
	email, ok := claims["email"].(string)
	if !ok {
		return 0, "", false
	}
	return uint(userIDFloat), email, true
}

// UserID reads the authenticated user from locals; zero means anonymous.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}
