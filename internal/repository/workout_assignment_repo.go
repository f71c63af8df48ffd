package repository

import (
	"context"
	"fmt"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type WorkoutAssignmentRepository struct {
	db DBTX
}

func NewWorkoutAssignmentRepository(db DBTX) *WorkoutAssignmentRepository {
	return &WorkoutAssignmentRepository{db: db}
}

func (r *WorkoutAssignmentRepository) CreateMany(ctx context.Context, inputs []AssignmentInput) ([]models.WorkoutAssignment, error) {
	if len(inputs) == 0 {
		return []models.WorkoutAssignment{}, nil
	}

	query := `
		INSERT INTO workout_assignments (workout_id, assigned_to, assigned_by, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, workout_id, assigned_to, assigned_by, assigned_at, due_date, status
	`
	batch := &pgx.Batch{}
	for _, input := range inputs {
		batch.Queue(query, input.ContentID, input.AssignedTo, input.AssignedBy, input.DueDate)
	}

	results := r.db.SendBatch(ctx, batch)
	assignments := make([]models.WorkoutAssignment, 0, len(inputs))
	for _, input := range inputs {
		assignment, err := scanAssignment(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("assign workout to %s: %w", input.AssignedTo, err)
		}
		assignments = append(assignments, models.WorkoutAssignment{Assignment: *assignment})
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *WorkoutAssignmentRepository) GetByID(ctx context.Context, id string) (*models.WorkoutAssignment, error) {
	query := `
		SELECT id, workout_id, assigned_to, assigned_by, assigned_at, due_date, status
		FROM workout_assignments
		WHERE id = $1
	`
	assignment, err := scanAssignment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &models.WorkoutAssignment{Assignment: *assignment}, nil
}

func (r *WorkoutAssignmentRepository) ListByWorkout(ctx context.Context, workoutID string) ([]models.WorkoutAssignment, error) {
	query := `
		SELECT a.id, a.workout_id, a.assigned_to, a.assigned_by, a.assigned_at, a.due_date, a.status,
			   p.id, p.name, p.email, p.avatar_url
		FROM workout_assignments a
		JOIN profiles p ON p.id = a.assigned_to
		WHERE a.workout_id = $1
		ORDER BY a.assigned_at DESC, a.id DESC
	`
	rows, err := r.db.Query(ctx, query, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.WorkoutAssignment, 0)
	for rows.Next() {
		var (
			assignment models.WorkoutAssignment
			athlete    models.AthleteSummary
			status     string
		)
		if err := rows.Scan(
			&assignment.ID,
			&assignment.ContentID,
			&assignment.AssignedTo,
			&assignment.AssignedBy,
			&assignment.AssignedAt,
			&assignment.DueDate,
			&status,
			&athlete.ID,
			&athlete.Name,
			&athlete.Email,
			&athlete.AvatarURL,
		); err != nil {
			return nil, err
		}
		assignment.Status = models.AssignmentStatus(status)
		assignment.Athlete = &athlete
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByAthlete reads through get_athlete_workouts. A non-empty assignedBy
// narrows the list to one trainer.
func (r *WorkoutAssignmentRepository) ListByAthlete(ctx context.Context, athleteID, assignedBy string) ([]models.WorkoutAssignment, error) {
	query := `
		SELECT assignment_id, workout_id, assigned_to, assigned_by, assigned_at, due_date, status,
			   title, description, created_by, created_at, updated_at, exercise_count
		FROM get_athlete_workouts($1)
		WHERE $2::uuid IS NULL OR assigned_by = $2::uuid
	`
	rows, err := r.db.Query(ctx, query, athleteID, nullableUUID(assignedBy))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.WorkoutAssignment, 0)
	for rows.Next() {
		var (
			assignment models.WorkoutAssignment
			workout    models.Workout
			status     string
		)
		if err := rows.Scan(
			&assignment.ID,
			&assignment.ContentID,
			&assignment.AssignedTo,
			&assignment.AssignedBy,
			&assignment.AssignedAt,
			&assignment.DueDate,
			&status,
			&workout.Title,
			&workout.Description,
			&workout.CreatedBy,
			&workout.CreatedAt,
			&workout.UpdatedAt,
			&workout.ExerciseCount,
		); err != nil {
			return nil, err
		}
		workout.ID = assignment.ContentID
		assignment.Status = models.AssignmentStatus(status)
		assignment.Workout = &workout
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdateStatusIfCurrent returns pgx.ErrNoRows when the row is missing or no
// longer holds current.
func (r *WorkoutAssignmentRepository) UpdateStatusIfCurrent(ctx context.Context, id string, current, next models.AssignmentStatus) (*models.WorkoutAssignment, error) {
	query := `
		UPDATE workout_assignments
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING id, workout_id, assigned_to, assigned_by, assigned_at, due_date, status
	`
	assignment, err := scanAssignment(r.db.QueryRow(ctx, query, id, string(current), string(next)))
	if err != nil {
		return nil, err
	}
	return &models.WorkoutAssignment{Assignment: *assignment}, nil
}
