package post

import (
	"github.com/gofiber/fiber/v2"

	"backend-ripple/internal/auth"
	"backend-ripple/internal/httperr"
)

func RegisterRoutes(r fiber.Router, svc *Service, guard fiber.Handler) {
	// /feed and /user/:username before /:id, so they are not captured by it.
	r.Get("/feed", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		feed, err := svc.Feed(c.Context(), actor.ID)
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.JSON(feed)
	})

	r.Get("/user/:username", func(c *fiber.Ctx) error {
		posts, err := svc.UserPosts(c.Context(), c.Params("username"))
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.JSON(posts)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		post, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.JSON(post)
	})

	r.Post("/create", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.PostedBy != "" && req.PostedBy != actor.ID {
			return fiber.NewError(fiber.StatusForbidden, "cannot create a post for another user")
		}
		post, err := svc.Create(c.Context(), actor.ID, req)
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "post created successfully", "post": post})
	})

	r.Delete("/delete/:id", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		if err := svc.Delete(c.Context(), actor.ID, c.Params("id")); err != nil {
			return httperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "post deleted successfully"})
	})

	r.Put("/like/:id", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		liked, err := svc.ToggleLike(c.Context(), actor.ID, c.Params("id"))
		if err != nil {
			return httperr.ToFiber(err)
		}
		if liked {
			return c.JSON(fiber.Map{"message": "post liked successfully"})
		}
		return c.JSON(fiber.Map{"message": "post unliked successfully"})
	})

	r.Put("/reply/:id", guard, func(c *fiber.Ctx) error {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req ReplyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		reply, err := svc.Reply(c.Context(), actor, c.Params("id"), req.Text)
		if err != nil {
			return httperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "reply created successfully", "reply": reply})
	})
}
