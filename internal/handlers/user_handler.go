package handlers

import (
	"context"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type userService interface {
	ListUsers(ctx context.Context, filter services.UserListFilter) ([]models.Profile, int, error)
	GetUser(ctx context.Context, userID string) (*models.Profile, error)
	UpdateUserRole(ctx context.Context, actor services.Actor, userID, rawRole string) (*models.Profile, error)
}

type UserHandler struct {
	service userService
}

func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// updateRoleRequest uses a pointer so {"role": null} clears the role.
type updateRoleRequest struct {
	Role *string `json:"role"`
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	users, total, err := h.service.ListUsers(c.Context(), services.UserListFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Role:   strings.TrimSpace(c.Query("role")),
		Offset: pageOffset(page, limit),
		Limit:  limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []models.Profile{}
	}
	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}

	user, err := h.service.GetUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	role := ""
	if req.Role != nil {
		role = *req.Role
	}

	user, err := h.service.UpdateUserRole(c.Context(), actor, userID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
