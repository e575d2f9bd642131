package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session-token carrier.
const CookieName = "jwt"

const localsUserKey = "current_user"

// Protect verifies the session cookie, resolves the caller's user record, and
// stashes it in locals for downstream handlers. A token whose user no longer
// exists is as unauthorized as a bad token.
func Protect(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing session token")
		}

		userID, err := svc.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
		}

		user, err := svc.UserByID(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
		}

		c.Locals(localsUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the identity the guard resolved for this request.
func CurrentUser(c *fiber.Ctx) (User, bool) {
	user, ok := c.Locals(localsUserKey).(User)
	return user, ok
}

func SetSessionCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
