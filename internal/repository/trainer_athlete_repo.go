package repository

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/models"
)

type TrainerAthleteRepository struct {
	db DBTX
}

func NewTrainerAthleteRepository(db DBTX) *TrainerAthleteRepository {
	return &TrainerAthleteRepository{db: db}
}

func (r *TrainerAthleteRepository) Add(ctx context.Context, trainerID, athleteID string) error {
	query := `INSERT INTO trainer_athletes (trainer_id, athlete_id) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, trainerID, athleteID)
	return err
}

// Remove reports whether a relationship existed.
func (r *TrainerAthleteRepository) Remove(ctx context.Context, trainerID, athleteID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM trainer_athletes WHERE trainer_id = $1 AND athlete_id = $2`,
		trainerID, athleteID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TrainerAthleteRepository) UpdateStatus(ctx context.Context, trainerID, athleteID, status string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE trainer_athletes SET status = $3 WHERE trainer_id = $1 AND athlete_id = $2`,
		trainerID, athleteID, status,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetStatus returns pgx.ErrNoRows when the athlete is not on the roster.
func (r *TrainerAthleteRepository) GetStatus(ctx context.Context, trainerID, athleteID string) (string, error) {
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT status FROM trainer_athletes WHERE trainer_id = $1 AND athlete_id = $2`,
		trainerID, athleteID,
	).Scan(&status)
	return status, err
}

func (r *TrainerAthleteRepository) ListTrainerAthletes(ctx context.Context, trainerID string) ([]models.RosterEntry, error) {
	query := `
		SELECT athlete_id, name, email, avatar_url, status, created_at
		FROM get_trainer_athletes($1)
	`
	return r.list(ctx, query, trainerID)
}

func (r *TrainerAthleteRepository) ListAthleteTrainers(ctx context.Context, athleteID string) ([]models.RosterEntry, error) {
	query := `
		SELECT trainer_id, name, email, avatar_url, status, created_at
		FROM get_athlete_trainers($1)
	`
	return r.list(ctx, query, athleteID)
}

func (r *TrainerAthleteRepository) list(ctx context.Context, query string, actorID string) ([]models.RosterEntry, error) {
	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Name,
			&entry.Email,
			&entry.AvatarURL,
			&entry.Status,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
