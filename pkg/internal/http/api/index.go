package api

import (
	"errors"

	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		groups := api.Group("/groups").Name("Groups API")
		{
			groups.Get("/", listGroup)
			groups.Post("/", createGroup)
			groups.Get("/:groupId", getGroup)
			groups.Delete("/:groupId", deleteGroup)
			groups.Post("/:groupId/enter", enterGroup)
			groups.Post("/:groupId/leave", leaveGroup)
			groups.Get("/:groupId/members", listGroupMember)
			groups.Put("/:groupId/members/:userId/role", changeGroupMemberRole)
		}

		posts := api.Group("/posts").Name("Posts API")
		{
			posts.Get("/", listPost)
			posts.Get("/search", searchPost)
			posts.Post("/", createPost)
			posts.Get("/:postId", getPost)
			posts.Delete("/:postId", deletePost)
			posts.Post("/:postId/pin", pinPost)
		}

		categories := api.Group("/categories").Name("Categories API")
		{
			categories.Get("/", listCategory)
			categories.Post("/", createCategory)
		}

		mutes := api.Group("/mutes").Name("Mutes API")
		{
			mutes.Post("/:userId", muteUser)
			mutes.Delete("/:userId", unmuteUser)
		}
	}
}

// remapServiceError turns the service error taxonomy into http statuses.
// Unknown errors are infrastructure failures and read as 500.
func remapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConstraintViolation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
