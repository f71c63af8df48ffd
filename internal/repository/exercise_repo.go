package repository

import (
	"context"
	"fmt"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type ExerciseInput struct {
	Name        string
	Sets        int
	Reps        int
	RestSeconds int
	Notes       string
	Order       int
}

type ExerciseRepository struct {
	db DBTX
}

func NewExerciseRepository(db DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) InsertMany(ctx context.Context, workoutID string, inputs []ExerciseInput) ([]models.Exercise, error) {
	if len(inputs) == 0 {
		return []models.Exercise{}, nil
	}

	query := `
		INSERT INTO exercises (workout_id, name, sets, reps, rest, notes, exercise_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, workout_id, name, sets, reps, rest, notes, exercise_order
	`
	batch := &pgx.Batch{}
	for _, input := range inputs {
		batch.Queue(query, workoutID, input.Name, input.Sets, input.Reps, input.RestSeconds, input.Notes, input.Order)
	}

	results := r.db.SendBatch(ctx, batch)
	exercises := make([]models.Exercise, 0, len(inputs))
	for i := range inputs {
		exercise, err := scanExercise(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert exercise %d: %w", i+1, err)
		}
		exercises = append(exercises, *exercise)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *ExerciseRepository) DeleteByWorkout(ctx context.Context, workoutID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM exercises WHERE workout_id = $1`, workoutID)
	return err
}

func (r *ExerciseRepository) ListByWorkout(ctx context.Context, workoutID string) ([]models.Exercise, error) {
	query := `
		SELECT id, workout_id, name, sets, reps, rest, notes, exercise_order
		FROM exercises
		WHERE workout_id = $1
		ORDER BY exercise_order ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.Exercise, 0)
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

func scanExercise(row pgx.Row) (*models.Exercise, error) {
	var exercise models.Exercise
	err := row.Scan(
		&exercise.ID,
		&exercise.WorkoutID,
		&exercise.Name,
		&exercise.Sets,
		&exercise.Reps,
		&exercise.RestSeconds,
		&exercise.Notes,
		&exercise.Order,
	)
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}
