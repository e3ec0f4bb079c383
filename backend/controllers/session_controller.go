package controllers

import (
	"drivestudy/backend/config"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SessionController exchanges an externally-authenticated identity for
// a session token. The OAuth handshake itself happens outside this
// service; the client posts the resulting profile here.
type SessionController struct {
	Cfg *config.Config
}

func NewSessionController(cfg *config.Config) *SessionController {
	return &SessionController{Cfg: cfg}
}

func (sc *SessionController) CreateSession(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" {
		return utils.BadRequest(c, "Email is required")
	}

	token, err := utils.GenerateSessionToken(input.Email, sc.Cfg)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  fiber.Map{"email": input.Email, "name": input.Name},
	})
}
