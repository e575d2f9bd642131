package user

import (
	"github.com/gofiber/fiber/v2"

	"backend-ripple/internal/auth"
	"backend-ripple/internal/httperr"
)

func RegisterRoutes(r fiber.Router, svc *Service, guard fiber.Handler) {
	r.Get("/profile/:query", func(c *fiber.Ctx) error {
		user, err := svc.Profile(c.Context(), c.Params("query"))
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.JSON(user)
	})

	r.Post("/follow/:id", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		followed, err := svc.ToggleFollow(c.Context(), actor.ID, c.Params("id"))
		if err != nil {
			return httperr.ToFiber(err)
		}
		if followed {
			return c.JSON(fiber.Map{"message": "user followed"})
		}
		return c.JSON(fiber.Map{"message": "user unfollowed"})
	})

	r.Put("/update", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Update(c.Context(), actor.ID, req)
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "user updated successfully", "user": user})
	})
}
