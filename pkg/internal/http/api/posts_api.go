package api

import (
	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/http/exts"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func universalPostFilter(c *fiber.Ctx, tx *gorm.DB) (*gorm.DB, *models.Account) {
	var viewer *models.Account
	if user, authenticated := c.Locals("user").(models.Account); authenticated {
		viewer = &user
	}

	tx = services.FilterPostWithViewer(tx, viewer)

	if len(c.Query("type")) > 0 {
		tx = services.FilterPostWithType(tx, c.Query("type"))
	}
	if groupID := c.QueryInt("group", 0); groupID > 0 {
		tx = services.FilterPostWithGroup(tx, uint(groupID))
	}
	if authorID := c.QueryInt("author", 0); authorID > 0 {
		tx = services.FilterPostWithAuthor(tx, uint(authorID))
	}

	return tx, viewer
}

func listPost(c *fiber.Ctx) error {
	take := c.QueryInt("take", 0)
	offset := c.QueryInt("offset", 0)

	tx, viewer := universalPostFilter(c, database.C)

	// The count runs the store-side predicate only; the per-page redaction
	// pass can still drop rows, so it is an upper bound, not a page sum.
	count, err := services.CountPost(tx)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	items, err := services.ListPost(tx, viewer, take, offset, "pinned DESC, created_at DESC")
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func searchPost(c *fiber.Ctx) error {
	take := c.QueryInt("take", 0)
	offset := c.QueryInt("offset", 0)

	probe := c.Query("probe")
	if len(probe) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "probe is required")
	}

	tx, viewer := universalPostFilter(c, services.FilterPostWithFuzzySearch(database.C, probe))

	items, err := services.ListPost(tx, viewer, take, offset, "created_at DESC")
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(items)
}

func getPost(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("postId", 0)

	var viewer *models.Account
	if user, authenticated := c.Locals("user").(models.Account); authenticated {
		viewer = &user
	}

	item, err := services.GetPost(viewer, uint(id))
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(item)
}

func createPost(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	var data struct {
		Type        string   `json:"type"`
		Title       string   `json:"title" validate:"required,max=256"`
		Content     string   `json:"content" validate:"required"`
		Attachments []string `json:"attachments"`
		IsPrivate   bool     `json:"is_private"`
		IsAnonymous bool     `json:"is_ano"`
		GroupID     *uint    `json:"group_id"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.CreatePost(user, models.Post{
		Type:        data.Type,
		Title:       data.Title,
		Content:     data.Content,
		Attachments: datatypes.NewJSONSlice(data.Attachments),
		IsPrivate:   data.IsPrivate,
		IsAnonymous: data.IsAnonymous,
		GroupID:     data.GroupID,
	})
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(item)
}

func deletePost(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	id, _ := c.ParamsInt("postId", 0)
	if err := services.DeletePost(user, uint(id)); err != nil {
		return remapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func pinPost(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	var data struct {
		Pinned bool `json:"pinned"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	id, _ := c.ParamsInt("postId", 0)
	item, err := services.PinPost(user, uint(id), data.Pinned)
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(item)
}
