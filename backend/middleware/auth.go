package middleware

import (
	"drivestudy/backend/config"
	"drivestudy/backend/models"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// AuthMiddleware validates the session token, assembles the explicit
// Session value (user identity plus the Drive token forwarded by the
// client) and stashes it for handlers. Core packages only ever receive
// the Session as an argument.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Invalid or missing session token")
		}

		c.Locals(sessionKey, models.Session{
			UserID:     userID,
			DriveToken: c.Get("X-Drive-Token"),
		})
		return c.Next()
	}
}

// SessionFromCtx returns the Session placed by AuthMiddleware.
func SessionFromCtx(c *fiber.Ctx) models.Session {
	sess, _ := c.Locals(sessionKey).(models.Session)
	return sess
}
