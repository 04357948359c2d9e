package api

import (
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func muteUser(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	id, _ := c.ParamsInt("userId", 0)
	if err := services.MuteUser(user, uint(id)); err != nil {
		return remapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func unmuteUser(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	id, _ := c.ParamsInt("userId", 0)
	if err := services.UnmuteUser(user, uint(id)); err != nil {
		return remapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}
