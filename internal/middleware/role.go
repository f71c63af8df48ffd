package middleware

import (
	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/gofiber/fiber/v2"
)

// DashboardHome sends a gated visitor from /dashboard to their role subtree.
func DashboardHome() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := CurrentProfile(c)
		if !ok {
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		return c.Redirect(profile.Role.HomePath(), fiber.StatusSeeOther)
	}
}

// RequireRole keeps a subtree to one role. Visitors with another role are
// redirected to their own subtree.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := CurrentProfile(c)
		if !ok {
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		if profile.Role != role {
			return c.Redirect(profile.Role.HomePath(), fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
