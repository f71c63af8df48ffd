package middleware

import (
	"strings"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/gofiber/fiber/v2"
)

const SessionCookieName = "fitzo_session"

// SessionToken reads the session token from the cookie, falling back to an
// Authorization: Bearer header for API clients.
func SessionToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(SessionCookieName)); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func SetSessionCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// CurrentProfile returns the profile the gate stored for this request.
func CurrentProfile(c *fiber.Ctx) (*models.Profile, bool) {
	profile, ok := c.Locals("profile").(*models.Profile)
	return profile, ok && profile != nil
}

func CurrentSession(c *fiber.Ctx) (*models.Session, bool) {
	session, ok := c.Locals("session").(*models.Session)
	return session, ok && session != nil
}
