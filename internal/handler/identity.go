package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kadraly/kadraly-backend/internal/access"
	"github.com/kadraly/kadraly-backend/internal/middleware"
)

// callerIdentity bundles whatever credentials the request carries: the JWT
// user (if any) and an access code from the X-Access-Code header or the code
// query parameter.
func callerIdentity(c *fiber.Ctx) access.Identity {
	code := c.Get("X-Access-Code")
	if code == "" {
		code = c.Query("code")
	}
	return access.Identity{
		UserID:     middleware.UserID(c),
		AccessCode: code,
	}
}
