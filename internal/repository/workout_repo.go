package repository

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type WorkoutRepository struct {
	db DBTX
}

func NewWorkoutRepository(db DBTX) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func (r *WorkoutRepository) Create(ctx context.Context, input ContentInput) (*models.Workout, error) {
	query := `
		INSERT INTO workouts (title, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, created_by, created_at, updated_at
	`
	return scanWorkout(r.db.QueryRow(ctx, query, input.Title, input.Description, input.CreatedBy))
}

func (r *WorkoutRepository) Update(ctx context.Context, id string, input ContentInput) (*models.Workout, error) {
	query := `
		UPDATE workouts
		SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, created_by, created_at, updated_at
	`
	return scanWorkout(r.db.QueryRow(ctx, query, id, input.Title, input.Description))
}

// Delete reports pgx.ErrNoRows when nothing was deleted.
func (r *WorkoutRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WorkoutRepository) GetByID(ctx context.Context, id string) (*models.Workout, error) {
	query := `
		SELECT id, title, description, created_by, created_at, updated_at
		FROM workouts
		WHERE id = $1
	`
	return scanWorkout(r.db.QueryRow(ctx, query, id))
}

// ListByOwner reads through get_trainer_workouts. An empty owner lists every
// workout.
func (r *WorkoutRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Workout, error) {
	query := `
		SELECT id, title, description, created_by, created_at, updated_at, exercise_count
		FROM get_trainer_workouts($1::uuid)
	`
	rows, err := r.db.Query(ctx, query, nullableUUID(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]models.Workout, 0)
	for rows.Next() {
		var workout models.Workout
		if err := rows.Scan(
			&workout.ID,
			&workout.Title,
			&workout.Description,
			&workout.CreatedBy,
			&workout.CreatedAt,
			&workout.UpdatedAt,
			&workout.ExerciseCount,
		); err != nil {
			return nil, err
		}
		workouts = append(workouts, workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var workout models.Workout
	err := row.Scan(
		&workout.ID,
		&workout.Title,
		&workout.Description,
		&workout.CreatedBy,
		&workout.CreatedAt,
		&workout.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &workout, nil
}
