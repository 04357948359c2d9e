package api

import (
	"github.com/commune-social/commune/pkg/internal/http/exts"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listCategory(c *fiber.Ctx) error {
	take := c.QueryInt("take", 0)
	offset := c.QueryInt("offset", 0)

	categories, err := services.ListCategory(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(categories)
}

func createCategory(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}
	if !user.IsPlatformAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "only platform admins can create categories")
	}

	var data struct {
		Slug        string `json:"slug" validate:"required,lowercase,max=96"`
		Name        string `json:"name" validate:"required,max=96"`
		Icon        string `json:"icon"`
		Description string `json:"description" validate:"max=256"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	category, err := services.NewCategory(data.Slug, data.Name, data.Icon, data.Description)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(category)
}
