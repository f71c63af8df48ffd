package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/jackc/pgx/v5"
)

const (
	maxExerciseNameLength  = 200
	maxExerciseNotesLength = 2000
	maxExerciseCount       = 10000
	maxRestSeconds         = 24 * 60 * 60
)

type workoutStore interface {
	Create(ctx context.Context, input repository.ContentInput) (*models.Workout, error)
	Update(ctx context.Context, id string, input repository.ContentInput) (*models.Workout, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Workout, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Workout, error)
}

type exerciseStore interface {
	InsertMany(ctx context.Context, workoutID string, inputs []repository.ExerciseInput) ([]models.Exercise, error)
	DeleteByWorkout(ctx context.Context, workoutID string) error
	ListByWorkout(ctx context.Context, workoutID string) ([]models.Exercise, error)
}

type workoutAssignmentStore interface {
	CreateMany(ctx context.Context, inputs []repository.AssignmentInput) ([]models.WorkoutAssignment, error)
	GetByID(ctx context.Context, id string) (*models.WorkoutAssignment, error)
	ListByWorkout(ctx context.Context, workoutID string) ([]models.WorkoutAssignment, error)
	ListByAthlete(ctx context.Context, athleteID, assignedBy string) ([]models.WorkoutAssignment, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, current, next models.AssignmentStatus) (*models.WorkoutAssignment, error)
}

type workoutStores struct {
	workouts    workoutStore
	exercises   exerciseStore
	assignments workoutAssignmentStore
	roster      rosterLookup
}

func newWorkoutStores(db repository.DBTX) workoutStores {
	return workoutStores{
		workouts:    repository.NewWorkoutRepository(db),
		exercises:   repository.NewExerciseRepository(db),
		assignments: repository.NewWorkoutAssignmentRepository(db),
		roster:      repository.NewTrainerAthleteRepository(db),
	}
}

type WorkoutService struct {
	tx       repository.TxRunner
	stores   func(db repository.DBTX) workoutStores
	store    workoutStores
	profiles profileReader
	notifier Notifier
	baseURL  string
}

func NewWorkoutService(
	db repository.DBTX,
	tx repository.TxRunner,
	profiles profileReader,
	notifier Notifier,
	baseURL string,
) *WorkoutService {
	return &WorkoutService{
		tx:       tx,
		stores:   newWorkoutStores,
		store:    newWorkoutStores(db),
		profiles: profiles,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

type ExerciseItem struct {
	Name        string
	Sets        int
	Reps        int
	RestSeconds int
	Notes       string
	Order       *int
}

func normalizeExercises(items []ExerciseItem) ([]repository.ExerciseInput, error) {
	inputs := make([]repository.ExerciseInput, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		notes := strings.TrimSpace(item.Notes)
		if name == "" || len(name) > maxExerciseNameLength || len(notes) > maxExerciseNotesLength {
			return nil, fmt.Errorf("exercise %d: %w", i+1, ErrInvalidInput)
		}
		if item.Sets < 0 || item.Reps < 0 || item.RestSeconds < 0 {
			return nil, fmt.Errorf("exercise %d: negative values: %w", i+1, ErrInvalidInput)
		}
		if item.Sets > maxExerciseCount || item.Reps > maxExerciseCount || item.RestSeconds > maxRestSeconds || !orderInRange(item.Order) {
			return nil, fmt.Errorf("exercise %d: values out of range: %w", i+1, ErrInvalidInput)
		}
		inputs = append(inputs, repository.ExerciseInput{
			Name:        name,
			Sets:        item.Sets,
			Reps:        item.Reps,
			RestSeconds: item.RestSeconds,
			Notes:       notes,
			Order:       resolveOrder(item.Order, i),
		})
	}
	return inputs, nil
}

func (s *WorkoutService) CreateWorkout(
	ctx context.Context,
	actor Actor,
	payload ContentPayload,
	items []ExerciseItem,
) (*models.Workout, error) {
	if !canManageContent(actor, actor.ID) {
		return nil, ErrForbidden
	}
	payload, err := normalizeContentPayload(payload)
	if err != nil {
		return nil, err
	}
	inputs, err := normalizeExercises(items)
	if err != nil {
		return nil, err
	}

	var created *models.Workout
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		stores := s.stores(db)
		workout, err := stores.workouts.Create(ctx, repository.ContentInput{
			Title:       payload.Title,
			Description: payload.Description,
			CreatedBy:   actor.ID,
		})
		if err != nil {
			return classifyStoreError("create workout", err)
		}
		exercises, err := stores.exercises.InsertMany(ctx, workout.ID, inputs)
		if err != nil {
			return classifyStoreError("create exercises", err)
		}
		workout.Exercises = exercises
		workout.ExerciseCount = len(exercises)
		created = workout
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("create workout", err)
	}
	created.DescriptionHTML = describe(created.Description)
	return created, nil
}

// UpdateWorkout replaces the workout fields and every exercise in one
// transaction.
func (s *WorkoutService) UpdateWorkout(
	ctx context.Context,
	actor Actor,
	workoutID string,
	payload ContentPayload,
	items []ExerciseItem,
) (*models.Workout, error) {
	payload, err := normalizeContentPayload(payload)
	if err != nil {
		return nil, err
	}
	inputs, err := normalizeExercises(items)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireManaged(ctx, actor, workoutID); err != nil {
		return nil, err
	}

	var updated *models.Workout
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		stores := s.stores(db)
		workout, err := stores.workouts.Update(ctx, workoutID, repository.ContentInput{
			Title:       payload.Title,
			Description: payload.Description,
		})
		if err != nil {
			return classifyStoreError("update workout", err)
		}
		if err := stores.exercises.DeleteByWorkout(ctx, workoutID); err != nil {
			return classifyStoreError("clear exercises", err)
		}
		exercises, err := stores.exercises.InsertMany(ctx, workoutID, inputs)
		if err != nil {
			return classifyStoreError("replace exercises", err)
		}
		workout.Exercises = exercises
		workout.ExerciseCount = len(exercises)
		updated = workout
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("update workout", err)
	}
	updated.DescriptionHTML = describe(updated.Description)
	return updated, nil
}

func (s *WorkoutService) DeleteWorkout(ctx context.Context, actor Actor, workoutID string) error {
	if _, err := s.requireManaged(ctx, actor, workoutID); err != nil {
		return err
	}
	return classifyStoreError("delete workout", s.store.workouts.Delete(ctx, workoutID))
}

func (s *WorkoutService) GetWorkout(ctx context.Context, actor Actor, workoutID string) (*models.Workout, error) {
	workout, err := s.requireManaged(ctx, actor, workoutID)
	if err != nil {
		return nil, err
	}
	return s.withExercises(ctx, workout)
}

func (s *WorkoutService) ListWorkouts(ctx context.Context, actor Actor) ([]models.Workout, error) {
	owner, err := ownerFilter(actor)
	if err != nil {
		return nil, err
	}
	workouts, err := s.store.workouts.ListByOwner(ctx, owner)
	if err != nil {
		return nil, classifyStoreError("list workouts", err)
	}
	for i := range workouts {
		workouts[i].DescriptionHTML = describe(workouts[i].Description)
	}
	return workouts, nil
}

func (s *WorkoutService) AssignWorkout(
	ctx context.Context,
	actor Actor,
	workoutID string,
	input AssignInput,
) ([]models.WorkoutAssignment, error) {
	assignees, err := dedupeAssignees(input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	workout, err := s.requireManaged(ctx, actor, workoutID)
	if err != nil {
		return nil, err
	}
	athletes, err := loadAthletes(ctx, actor, s.profiles, s.store.roster, assignees)
	if err != nil {
		return nil, err
	}

	inputs := make([]repository.AssignmentInput, 0, len(assignees))
	for _, athleteID := range assignees {
		inputs = append(inputs, repository.AssignmentInput{
			ContentID:  workoutID,
			AssignedTo: athleteID,
			AssignedBy: actor.ID,
			DueDate:    input.DueDate,
		})
	}

	var assignments []models.WorkoutAssignment
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		created, err := s.stores(db).assignments.CreateMany(ctx, inputs)
		if err != nil {
			return classifyStoreError("create assignments", err)
		}
		assignments = created
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("assign workout", err)
	}

	notifyAssignees(ctx, s.notifier, models.ContentWorkout, workout.Title,
		s.baseURL+models.RoleAthlete.HomePath()+"/workouts", athletes)
	return assignments, nil
}

func (s *WorkoutService) ListAssignments(ctx context.Context, actor Actor, workoutID string) ([]models.WorkoutAssignment, error) {
	if _, err := s.requireManaged(ctx, actor, workoutID); err != nil {
		return nil, err
	}
	assignments, err := s.store.assignments.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, classifyStoreError("list assignments", err)
	}
	return assignments, nil
}

func (s *WorkoutService) ListAthleteAssignments(ctx context.Context, actor Actor, athleteID string) ([]models.WorkoutAssignment, error) {
	assignedBy, err := athleteAssignmentScope(actor, athleteID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.assignments.ListByAthlete(ctx, athleteID, assignedBy)
	if err != nil {
		return nil, classifyStoreError("list athlete workouts", err)
	}
	for i := range assignments {
		if assignments[i].Workout != nil {
			assignments[i].Workout.DescriptionHTML = describe(assignments[i].Workout.Description)
		}
	}
	return assignments, nil
}

func (s *WorkoutService) GetAthleteAssignment(ctx context.Context, actor Actor, assignmentID string) (*models.WorkoutAssignment, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAthlete || assignment.AssignedTo != actor.ID {
		return nil, ErrForbidden
	}

	workout, err := s.store.workouts.GetByID(ctx, assignment.ContentID)
	if err != nil {
		return nil, classifyStoreError("load workout", err)
	}
	workout, err = s.withExercises(ctx, workout)
	if err != nil {
		return nil, err
	}
	assignment.Workout = workout
	return assignment, nil
}

func (s *WorkoutService) UpdateAssignmentStatus(
	ctx context.Context,
	actor Actor,
	assignmentID string,
	requested string,
) (*models.WorkoutAssignment, error) {
	next, ok := models.ParseAssignmentStatus(models.ContentWorkout, requested)
	if !ok {
		return nil, fmt.Errorf("status %q: %w", requested, ErrInvalidInput)
	}
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAssignment(ctx, actor, assignment); err != nil {
		return nil, err
	}

	if !models.CanTransition(models.ContentWorkout, assignment.Status, next) {
		return nil, fmt.Errorf("%s -> %s: %w", assignment.Status, next, ErrInvalidStateTransition)
	}
	if assignment.Status == next {
		return assignment, nil
	}

	updated, err := s.store.assignments.UpdateStatusIfCurrent(ctx, assignmentID, assignment.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, classifyStoreError("update assignment status", err)
	}
	return updated, nil
}

func (s *WorkoutService) AssignmentBelongsTo(ctx context.Context, assignmentID, workoutID string) error {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.ContentID != workoutID {
		return ErrNotFound
	}
	return nil
}

func (s *WorkoutService) requireManaged(ctx context.Context, actor Actor, workoutID string) (*models.Workout, error) {
	workout, err := s.store.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, classifyStoreError("load workout", err)
	}
	if !canManageContent(actor, workout.CreatedBy) {
		return nil, ErrForbidden
	}
	return workout, nil
}

func (s *WorkoutService) withExercises(ctx context.Context, workout *models.Workout) (*models.Workout, error) {
	exercises, err := s.store.exercises.ListByWorkout(ctx, workout.ID)
	if err != nil {
		return nil, classifyStoreError("load exercises", err)
	}
	workout.Exercises = exercises
	workout.ExerciseCount = len(exercises)
	workout.DescriptionHTML = describe(workout.Description)
	return workout, nil
}

func (s *WorkoutService) loadAssignment(ctx context.Context, assignmentID string) (*models.WorkoutAssignment, error) {
	assignment, err := s.store.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, classifyStoreError("load assignment", err)
	}
	return assignment, nil
}

func (s *WorkoutService) authorizeAssignment(ctx context.Context, actor Actor, assignment *models.WorkoutAssignment) error {
	ownerID := ""
	if actor.Role == models.RoleTrainer && actor.ID != assignment.AssignedBy {
		workout, err := s.store.workouts.GetByID(ctx, assignment.ContentID)
		if err != nil {
			return classifyStoreError("load workout", err)
		}
		ownerID = workout.CreatedBy
	}
	if !canManageAssignment(actor, assignment.Assignment, ownerID) {
		return ErrForbidden
	}
	return nil
}
