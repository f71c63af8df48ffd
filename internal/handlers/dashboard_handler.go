package handlers

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/middleware"
	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type questionnaireOverview interface {
	ListQuestionnaires(ctx context.Context, actor services.Actor) ([]models.Questionnaire, error)
	ListAthleteAssignments(ctx context.Context, actor services.Actor, athleteID string) ([]models.QuestionnaireAssignment, error)
}

type workoutOverview interface {
	ListWorkouts(ctx context.Context, actor services.Actor) ([]models.Workout, error)
	ListAthleteAssignments(ctx context.Context, actor services.Actor, athleteID string) ([]models.WorkoutAssignment, error)
}

type rosterOverview interface {
	ListAthletes(ctx context.Context, actor services.Actor) ([]models.RosterEntry, error)
}

type userOverview interface {
	ListUsers(ctx context.Context, filter services.UserListFilter) ([]models.Profile, int, error)
}

// DashboardHandler serves the landing summary of each role subtree.
type DashboardHandler struct {
	questionnaires questionnaireOverview
	workouts       workoutOverview
	athletes       rosterOverview
	users          userOverview
}

func NewDashboardHandler(
	questionnaires questionnaireOverview,
	workouts workoutOverview,
	athletes rosterOverview,
	users userOverview,
) *DashboardHandler {
	return &DashboardHandler{
		questionnaires: questionnaires,
		workouts:       workouts,
		athletes:       athletes,
		users:          users,
	}
}

type statusCounts map[models.AssignmentStatus]int

func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	profile, _ := middleware.CurrentProfile(c)

	if actor.Role == models.RoleAthlete {
		return h.athleteSummary(c, actor, profile)
	}

	questionnaires, err := h.questionnaires.ListQuestionnaires(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	workouts, err := h.workouts.ListWorkouts(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	athletes, err := h.athletes.ListAthletes(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}

	body := fiber.Map{
		"profile":             profile,
		"questionnaire_count": len(questionnaires),
		"workout_count":       len(workouts),
		"athlete_count":       len(athletes),
	}
	if actor.IsAdmin() {
		_, total, err := h.users.ListUsers(c.Context(), services.UserListFilter{Limit: 1})
		if err != nil {
			return respondError(c, err)
		}
		body["user_count"] = total
	}
	return c.JSON(body)
}

func (h *DashboardHandler) athleteSummary(c *fiber.Ctx, actor services.Actor, profile *models.Profile) error {
	questionnaires, err := h.questionnaires.ListAthleteAssignments(c.Context(), actor, actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	workouts, err := h.workouts.ListAthleteAssignments(c.Context(), actor, actor.ID)
	if err != nil {
		return respondError(c, err)
	}

	questionnaireCounts := statusCounts{}
	for _, assignment := range questionnaires {
		questionnaireCounts[assignment.Status]++
	}
	workoutCounts := statusCounts{}
	for _, assignment := range workouts {
		workoutCounts[assignment.Status]++
	}

	return c.JSON(fiber.Map{
		"profile":        profile,
		"questionnaires": questionnaireCounts,
		"workouts":       workoutCounts,
	})
}
