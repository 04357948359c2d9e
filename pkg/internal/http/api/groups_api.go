package api

import (
	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/http/exts"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listGroup(c *fiber.Ctx) error {
	take := c.QueryInt("take", 0)
	offset := c.QueryInt("offset", 0)

	var viewer *models.Account
	user, authenticated := c.Locals("user").(models.Account)
	if authenticated {
		viewer = &user
	}

	tx := services.FilterGroupWithViewer(database.C, viewer)

	if len(c.Query("category")) > 0 {
		tx = services.FilterGroupWithCategory(tx, c.Query("category"))
	}

	if len(c.Query("isMember")) > 0 {
		if !authenticated {
			return fiber.NewError(fiber.StatusUnauthorized)
		}
		tx = services.FilterGroupWithMembership(tx, user, c.QueryBool("isMember"))
	}

	items, err := services.ListGroups(tx, viewer, take, offset)
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(items)
}

func getGroup(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("groupId", 0)

	var viewer *models.Account
	if user, authenticated := c.Locals("user").(models.Account); authenticated {
		viewer = &user
	}

	group, err := services.GetGroupForViewer(viewer, uint(id))
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(group)
}

func createGroup(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	var data struct {
		Name         string `json:"name" validate:"required,max=96"`
		About        string `json:"about" validate:"max=256"`
		Description  string `json:"description" validate:"required"`
		Type         string `json:"type" validate:"required"`
		ActionRadius string `json:"action_radius"`
		Categories   []uint `json:"categories"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	group, err := services.NewGroup(user, models.Group{
		Name:         data.Name,
		About:        data.About,
		Description:  data.Description,
		Type:         models.GroupType(data.Type),
		ActionRadius: data.ActionRadius,
	}, data.Categories)
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(group)
}

func deleteGroup(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	id, _ := c.ParamsInt("groupId", 0)
	if err := services.DeleteGroup(user, uint(id)); err != nil {
		return remapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func enterGroup(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	id, _ := c.ParamsInt("groupId", 0)
	membership, err := services.JoinGroup(user, uint(id))
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"id":   membership.AccountID,
		"role": membership.Role,
	})
}

func leaveGroup(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	id, _ := c.ParamsInt("groupId", 0)
	if err := services.LeaveGroup(user, uint(id)); err != nil {
		return remapServiceError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func listGroupMember(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("groupId", 0)

	var viewer *models.Account
	if user, authenticated := c.Locals("user").(models.Account); authenticated {
		viewer = &user
	}

	members, err := services.ListGroupMembers(viewer, uint(id))
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(members)
}

func changeGroupMemberRole(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized)
	}

	groupID, _ := c.ParamsInt("groupId", 0)
	targetID, _ := c.ParamsInt("userId", 0)

	var data struct {
		Role string `json:"role" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	membership, err := services.ChangeMemberRole(user, uint(groupID), uint(targetID), models.GroupRole(data.Role))
	if err != nil {
		return remapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"id":   membership.AccountID,
		"role": membership.Role,
	})
}
