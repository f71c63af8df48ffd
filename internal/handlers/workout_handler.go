package handlers

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type workoutService interface {
	CreateWorkout(
		ctx context.Context,
		actor services.Actor,
		payload services.ContentPayload,
		items []services.ExerciseItem,
	) (*models.Workout, error)
	UpdateWorkout(
		ctx context.Context,
		actor services.Actor,
		workoutID string,
		payload services.ContentPayload,
		items []services.ExerciseItem,
	) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, actor services.Actor, workoutID string) error
	GetWorkout(ctx context.Context, actor services.Actor, workoutID string) (*models.Workout, error)
	ListWorkouts(ctx context.Context, actor services.Actor) ([]models.Workout, error)
	AssignWorkout(
		ctx context.Context,
		actor services.Actor,
		workoutID string,
		input services.AssignInput,
	) ([]models.WorkoutAssignment, error)
	ListAssignments(ctx context.Context, actor services.Actor, workoutID string) ([]models.WorkoutAssignment, error)
	ListAthleteAssignments(ctx context.Context, actor services.Actor, athleteID string) ([]models.WorkoutAssignment, error)
	GetAthleteAssignment(ctx context.Context, actor services.Actor, assignmentID string) (*models.WorkoutAssignment, error)
	UpdateAssignmentStatus(
		ctx context.Context,
		actor services.Actor,
		assignmentID string,
		requested string,
	) (*models.WorkoutAssignment, error)
	AssignmentBelongsTo(ctx context.Context, assignmentID, workoutID string) error
}

type WorkoutHandler struct {
	service workoutService
}

func NewWorkoutHandler(service workoutService) *WorkoutHandler {
	return &WorkoutHandler{service: service}
}

type exerciseRequest struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  int    `json:"reps"`
	Rest  int    `json:"rest"`
	Notes string `json:"notes"`
	Order *int   `json:"exercise_order"`
}

type workoutRequest struct {
	contentRequest
	Exercises []exerciseRequest `json:"exercises"`
}

func (r workoutRequest) items() []services.ExerciseItem {
	items := make([]services.ExerciseItem, 0, len(r.Exercises))
	for _, exercise := range r.Exercises {
		items = append(items, services.ExerciseItem{
			Name:        exercise.Name,
			Sets:        exercise.Sets,
			Reps:        exercise.Reps,
			RestSeconds: exercise.Rest,
			Notes:       exercise.Notes,
			Order:       exercise.Order,
		})
	}
	return items
}

func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	workouts, err := h.service.ListWorkouts(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	return c.JSON(fiber.Map{"workouts": workouts})
}

func (h *WorkoutHandler) Create(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	req, ok, err := parseWorkoutRequest(c)
	if !ok {
		return err
	}

	workout, err := h.service.CreateWorkout(c.Context(), actor, req.payload(), req.items())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"workout": workout})
}

func (h *WorkoutHandler) Get(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}

	workout, err := h.service.GetWorkout(c.Context(), actor, workoutID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workout": workout})
}

// Edit returns the workout for an edit form.
func (h *WorkoutHandler) Edit(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}

	workout, err := h.service.GetWorkout(c.Context(), actor, workoutID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workout": workout, "editable": true})
}

func (h *WorkoutHandler) Update(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}

	req, ok, err := parseWorkoutRequest(c)
	if !ok {
		return err
	}

	workout, err := h.service.UpdateWorkout(c.Context(), actor, workoutID, req.payload(), req.items())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workout": workout})
}

func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}

	if err := h.service.DeleteWorkout(c.Context(), actor, workoutID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *WorkoutHandler) ListAssignments(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}

	assignments, err := h.service.ListAssignments(c.Context(), actor, workoutID)
	if err != nil {
		return respondError(c, err)
	}
	if assignments == nil {
		assignments = []models.WorkoutAssignment{}
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}

func (h *WorkoutHandler) Assign(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}

	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.AthleteIDs) == 0 {
		return badRequest(c, "athlete_ids must contain at least one item")
	}
	input, ok := req.input()
	if !ok {
		return badRequest(c, "due_date must be YYYY-MM-DD or RFC 3339")
	}

	assignments, err := h.service.AssignWorkout(c.Context(), actor, workoutID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignments": assignments})
}

func (h *WorkoutHandler) UpdateAssignmentStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout id")
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.service.AssignmentBelongsTo(c.Context(), assignmentID, workoutID); err != nil {
		return respondError(c, err)
	}

	assignment, err := h.service.UpdateAssignmentStatus(c.Context(), actor, assignmentID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

func (h *WorkoutHandler) AthleteList(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	assignments, err := h.service.ListAthleteAssignments(c.Context(), actor, actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	if assignments == nil {
		assignments = []models.WorkoutAssignment{}
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}

func (h *WorkoutHandler) AthleteGet(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	assignment, err := h.service.GetAthleteAssignment(c.Context(), actor, assignmentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

func (h *WorkoutHandler) AthleteUpdateStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	assignment, err := h.service.UpdateAssignmentStatus(c.Context(), actor, assignmentID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

func parseWorkoutRequest(c *fiber.Ctx) (workoutRequest, bool, error) {
	var req workoutRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false, badRequest(c, "Invalid request body")
	}
	if validationErr := validateContentRequest(req.contentRequest); validationErr != "" {
		return req, false, badRequest(c, validationErr)
	}
	if validationErr := validateExerciseRequests(req.Exercises); validationErr != "" {
		return req, false, badRequest(c, validationErr)
	}
	return req, true, nil
}
