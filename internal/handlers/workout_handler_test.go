package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubWorkoutService struct {
	workout      *models.Workout
	err          error
	assignments  []models.WorkoutAssignment
	assignment   *models.WorkoutAssignment
	belongsErr   error
	calls        int
	lastActor    services.Actor
	lastID       string
	lastItems    []services.ExerciseItem
	lastAssign   services.AssignInput
	lastStatus   string
	lastAthlete  string
	lastWorkouts string
}

func (s *stubWorkoutService) CreateWorkout(
	_ context.Context,
	actor services.Actor,
	_ services.ContentPayload,
	items []services.ExerciseItem,
) (*models.Workout, error) {
	s.calls++
	s.lastActor = actor
	s.lastItems = items
	return s.workout, s.err
}

func (s *stubWorkoutService) UpdateWorkout(
	_ context.Context,
	actor services.Actor,
	workoutID string,
	_ services.ContentPayload,
	items []services.ExerciseItem,
) (*models.Workout, error) {
	s.calls++
	s.lastActor = actor
	s.lastID = workoutID
	s.lastItems = items
	return s.workout, s.err
}

func (s *stubWorkoutService) DeleteWorkout(_ context.Context, _ services.Actor, workoutID string) error {
	s.calls++
	s.lastID = workoutID
	return s.err
}

func (s *stubWorkoutService) GetWorkout(_ context.Context, _ services.Actor, workoutID string) (*models.Workout, error) {
	s.calls++
	s.lastID = workoutID
	return s.workout, s.err
}

func (s *stubWorkoutService) ListWorkouts(_ context.Context, actor services.Actor) ([]models.Workout, error) {
	s.calls++
	s.lastActor = actor
	if s.workout == nil {
		return nil, s.err
	}
	return []models.Workout{*s.workout}, s.err
}

func (s *stubWorkoutService) AssignWorkout(
	_ context.Context,
	_ services.Actor,
	workoutID string,
	input services.AssignInput,
) ([]models.WorkoutAssignment, error) {
	s.calls++
	s.lastID = workoutID
	s.lastAssign = input
	return s.assignments, s.err
}

func (s *stubWorkoutService) ListAssignments(_ context.Context, _ services.Actor, workoutID string) ([]models.WorkoutAssignment, error) {
	s.calls++
	s.lastWorkouts = workoutID
	return s.assignments, s.err
}

func (s *stubWorkoutService) ListAthleteAssignments(_ context.Context, _ services.Actor, athleteID string) ([]models.WorkoutAssignment, error) {
	s.calls++
	s.lastAthlete = athleteID
	return s.assignments, s.err
}

func (s *stubWorkoutService) GetAthleteAssignment(_ context.Context, _ services.Actor, assignmentID string) (*models.WorkoutAssignment, error) {
	s.calls++
	s.lastID = assignmentID
	return s.assignment, s.err
}

func (s *stubWorkoutService) UpdateAssignmentStatus(
	_ context.Context,
	actor services.Actor,
	assignmentID string,
	requested string,
) (*models.WorkoutAssignment, error) {
	s.calls++
	s.lastActor = actor
	s.lastID = assignmentID
	s.lastStatus = requested
	return s.assignment, s.err
}

func (s *stubWorkoutService) AssignmentBelongsTo(_ context.Context, _ string, _ string) error {
	return s.belongsErr
}

func newWorkoutApp(service *stubWorkoutService, profile *models.Profile) *fiber.App {
	handler := NewWorkoutHandler(service)
	app := newProfileApp(profile)
	app.Get("/workouts", handler.List)
	app.Post("/workouts", handler.Create)
	app.Put("/workouts/:id", handler.Update)
	app.Get("/workouts/:id/edit", handler.Edit)
	app.Post("/workouts/:id/assignments", handler.Assign)
	app.Put("/workouts/:id/assignments/:assignmentId/status", handler.UpdateAssignmentStatus)
	app.Get("/athlete/workouts", handler.AthleteList)
	app.Get("/athlete/workouts/:id", handler.AthleteGet)
	app.Put("/athlete/workouts/:id/status", handler.AthleteUpdateStatus)
	return app
}

func TestCreateWorkoutForwardsExercises(t *testing.T) {
	service := &stubWorkoutService{workout: &models.Workout{ID: testContentID, Title: "Leg day"}}
	app := newWorkoutApp(service, trainerProfile())

	resp := doJSON(t, app, http.MethodPost, "/workouts", fiber.Map{
		"title": "Leg day",
		"exercises": []fiber.Map{
			{"name": "Squat", "sets": 5, "reps": 5, "rest": 180, "notes": "Belt on"},
			{"name": "Lunge", "sets": 3, "reps": 12, "rest": 60, "exercise_order": 4},
		},
	})
	expectStatus(t, resp, http.StatusCreated)

	if len(service.lastItems) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(service.lastItems))
	}
	first := service.lastItems[0]
	if first.Name != "Squat" || first.Sets != 5 || first.RestSeconds != 180 || first.Notes != "Belt on" {
		t.Fatalf("unexpected exercise %+v", first)
	}
	if service.lastItems[1].Order == nil || *service.lastItems[1].Order != 4 {
		t.Fatalf("expected explicit order 4, got %v", service.lastItems[1].Order)
	}
}

func TestCreateWorkoutRejectsNegativeValues(t *testing.T) {
	service := &stubWorkoutService{}
	app := newWorkoutApp(service, trainerProfile())

	resp := doJSON(t, app, http.MethodPost, "/workouts", fiber.Map{
		"title":     "Leg day",
		"exercises": []fiber.Map{{"name": "Squat", "sets": -1}},
	})
	expectStatus(t, resp, http.StatusBadRequest)
	if service.calls != 0 {
		t.Fatalf("service must not be called for invalid input")
	}
}

func TestUpdateWorkoutForwardsPathID(t *testing.T) {
	service := &stubWorkoutService{workout: &models.Workout{ID: testContentID}}
	app := newWorkoutApp(service, adminProfile())

	resp := doJSON(t, app, http.MethodPut, "/workouts/"+testContentID, fiber.Map{"title": "Push"})
	expectStatus(t, resp, http.StatusOK)
	if service.lastID != testContentID || service.lastActor.Role != models.RoleAdmin {
		t.Fatalf("unexpected forwarding %q %+v", service.lastID, service.lastActor)
	}
	if len(service.lastItems) != 0 {
		t.Fatalf("expected an empty exercise list, got %d", len(service.lastItems))
	}
}

func TestUpdateWorkoutMapsForbidden(t *testing.T) {
	service := &stubWorkoutService{err: services.ErrForbidden}
	app := newWorkoutApp(service, trainerProfile())

	resp := doJSON(t, app, http.MethodPut, "/workouts/"+testContentID, fiber.Map{"title": "Push"})
	expectStatus(t, resp, http.StatusForbidden)
}

func TestAssignWorkoutAcceptsTimestamp(t *testing.T) {
	service := &stubWorkoutService{assignments: []models.WorkoutAssignment{{}}}
	app := newWorkoutApp(service, trainerProfile())

	resp := doJSON(t, app, http.MethodPost, "/workouts/"+testContentID+"/assignments", fiber.Map{
		"athlete_ids": []string{testAthleteID},
		"due_date":    "2026-11-01T09:30:00+02:00",
	})
	expectStatus(t, resp, http.StatusCreated)
	if service.lastAssign.DueDate == nil || service.lastAssign.DueDate.Hour() != 7 {
		t.Fatalf("expected due date normalized to UTC, got %v", service.lastAssign.DueDate)
	}
}

func TestTrainerUpdatesWorkoutAssignmentStatus(t *testing.T) {
	service := &stubWorkoutService{
		assignment: &models.WorkoutAssignment{Assignment: models.Assignment{ID: testAssignmentID, Status: models.StatusCanceled}},
	}
	app := newWorkoutApp(service, trainerProfile())

	path := "/workouts/" + testContentID + "/assignments/" + testAssignmentID + "/status"
	resp := doJSON(t, app, http.MethodPut, path, fiber.Map{"status": "canceled"})
	expectStatus(t, resp, http.StatusOK)
	if service.lastStatus != "canceled" {
		t.Fatalf("unexpected status %q", service.lastStatus)
	}
}

func TestAthleteCompletesWorkout(t *testing.T) {
	service := &stubWorkoutService{
		assignment: &models.WorkoutAssignment{Assignment: models.Assignment{ID: testAssignmentID, Status: models.StatusCompleted}},
	}
	app := newWorkoutApp(service, athleteProfile())

	resp := doJSON(t, app, http.MethodPut, "/athlete/workouts/"+testAssignmentID+"/status", fiber.Map{"status": "completed"})
	expectStatus(t, resp, http.StatusOK)
	if service.lastActor.ID != testAthleteID || service.lastID != testAssignmentID {
		t.Fatalf("unexpected forwarding %+v %q", service.lastActor, service.lastID)
	}

	var payload struct {
		Assignment models.WorkoutAssignment `json:"assignment"`
	}
	decodeBody(t, resp, &payload)
	if payload.Assignment.Status != models.StatusCompleted {
		t.Fatalf("unexpected status %q", payload.Assignment.Status)
	}
}

func TestAthleteWorkoutListScopesToSelf(t *testing.T) {
	service := &stubWorkoutService{}
	app := newWorkoutApp(service, athleteProfile())

	resp := doJSON(t, app, http.MethodGet, "/athlete/workouts", nil)
	expectStatus(t, resp, http.StatusOK)
	if service.lastAthlete != testAthleteID {
		t.Fatalf("expected own scope, got %q", service.lastAthlete)
	}
}
