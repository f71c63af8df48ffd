package handlers

import (
	"context"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type athleteService interface {
	ListAthletes(ctx context.Context, actor services.Actor) ([]models.RosterEntry, error)
	AddAthleteByEmail(ctx context.Context, actor services.Actor, email string) (*models.AthleteSummary, error)
	RemoveAthlete(ctx context.Context, actor services.Actor, athleteID string) error
	UpdateAthleteStatus(ctx context.Context, actor services.Actor, athleteID, status string) error
	SearchAthletes(
		ctx context.Context,
		actor services.Actor,
		query string,
		offset, limit int,
	) ([]models.AthleteSummary, int, error)
	GetAthlete(ctx context.Context, actor services.Actor, athleteID string) (*models.AthleteDetail, error)
}

type AthleteHandler struct {
	service athleteService
}

func NewAthleteHandler(service athleteService) *AthleteHandler {
	return &AthleteHandler{service: service}
}

type addAthleteRequest struct {
	Email string `json:"email"`
}

func (h *AthleteHandler) List(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	athletes, err := h.service.ListAthletes(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	if athletes == nil {
		athletes = []models.RosterEntry{}
	}
	return c.JSON(fiber.Map{"athletes": athletes})
}

// Add links an existing athlete account to the trainer's roster.
func (h *AthleteHandler) Add(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req addAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "email is required")
	}

	athlete, err := h.service.AddAthleteByEmail(c.Context(), actor, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"athlete": athlete})
}

func (h *AthleteHandler) Search(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	page, limit := parsePagination(c)
	athletes, total, err := h.service.SearchAthletes(
		c.Context(),
		actor,
		strings.TrimSpace(c.Query("q")),
		pageOffset(page, limit),
		limit,
	)
	if err != nil {
		return respondError(c, err)
	}
	if athletes == nil {
		athletes = []models.AthleteSummary{}
	}
	return c.JSON(fiber.Map{
		"athletes":   athletes,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *AthleteHandler) Get(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	athleteID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid athlete id")
	}

	detail, err := h.service.GetAthlete(c.Context(), actor, athleteID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *AthleteHandler) Remove(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	athleteID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid athlete id")
	}

	if err := h.service.RemoveAthlete(c.Context(), actor, athleteID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AthleteHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	athleteID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid athlete id")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != models.RelationshipActive && status != models.RelationshipInactive {
		return badRequest(c, "status must be active or inactive")
	}

	if err := h.service.UpdateAthleteStatus(c.Context(), actor, athleteID, status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"athlete_id": athleteID, "status": status})
}
