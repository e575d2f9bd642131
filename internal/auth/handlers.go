package auth

import (
	"github.com/gofiber/fiber/v2"

	"backend-ripple/internal/httperr"
)

func RegisterRoutes(r fiber.Router, svc *Service, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	r.Post("/signup", limiter, func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Signup(c.Context(), req)
		if err != nil {
			return httperr.ToFiber(err)
		}
		token, err := svc.Issue(user.ID)
		if err != nil {
			return httperr.ToFiber(err)
		}
		SetSessionCookie(c, token, svc.TTL())
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	r.Post("/login", limiter, func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password required")
		}
		user, err := svc.Login(c.Context(), req)
		if err != nil {
			return httperr.ToFiber(err)
		}
		token, err := svc.Issue(user.ID)
		if err != nil {
			return httperr.ToFiber(err)
		}
		SetSessionCookie(c, token, svc.TTL())
		return c.JSON(user)
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		ClearSessionCookie(c)
		return c.JSON(fiber.Map{"message": "user logged out"})
	})
}
