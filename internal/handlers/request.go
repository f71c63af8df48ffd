package handlers

import (
	"strings"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/middleware"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dueDateLayout = "2006-01-02"

// currentActor builds the service actor from the profile the gate stored.
func currentActor(c *fiber.Ctx) (services.Actor, bool) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: profile.ID, Role: profile.Role}, true
}

// parseIDParam reads a uuid path parameter and returns it in canonical form.
func parseIDParam(c *fiber.Ctx, name string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// parseDueDate accepts RFC 3339 timestamps and plain dates. An empty value
// means no due date.
func parseDueDate(raw *string) (*time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	value := strings.TrimSpace(*raw)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		utc := parsed.UTC()
		return &utc, true
	}
	parsed, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not signed in"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

type contentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r contentRequest) payload() services.ContentPayload {
	return services.ContentPayload{Title: r.Title, Description: r.Description}
}

type assignRequest struct {
	AthleteIDs []string `json:"athlete_ids"`
	DueDate    *string  `json:"due_date"`
}

func (r assignRequest) input() (services.AssignInput, bool) {
	dueDate, ok := parseDueDate(r.DueDate)
	if !ok {
		return services.AssignInput{}, false
	}
	return services.AssignInput{AssigneeIDs: r.AthleteIDs, DueDate: dueDate}, true
}

type statusRequest struct {
	Status string `json:"status"`
}
