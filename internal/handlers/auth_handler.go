package handlers

import (
	"context"
	"log"

	"github.com/AbelSturm/fitzoapp/internal/middleware"
	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type identityService interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	identity     identityService
	cookieSecure bool
}

func NewAuthHandler(identity identityService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{identity: identity, cookieSecure: cookieSecure}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":      "fitzo",
		"login":     middleware.LoginPath,
		"dashboard": "/dashboard",
	})
}

func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"login":    "/auth/login",
		"register": "/auth/register",
	})
}

// Register creates an account without a role. The visitor cannot enter the
// dashboard until an admin assigns one.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := h.identity.Register(c.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.identity.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	middleware.SetSessionCookie(c, result.Token, result.Session.ExpiresAt, h.cookieSecure)
	return c.JSON(fiber.Map{
		"token":    result.Token,
		"session":  result.Session,
		"redirect": "/dashboard",
	})
}

// Logout ends the current session if there is one. Calling it without a valid
// session still clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c); token != "" {
		session, err := h.identity.GetSession(c.Context(), token)
		if err == nil && session != nil {
			if err := h.identity.SignOut(c.Context(), session.ID); err != nil {
				log.Printf("logout: sign out session %s: %v", session.ID, err)
			}
		}
	}

	middleware.ClearSessionCookie(c, h.cookieSecure)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Redirect(middleware.LoginPath, fiber.StatusSeeOther)
}
