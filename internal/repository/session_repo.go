package repository

import (
	"context"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
)

type CreateSessionInput struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// SessionRepository stores login sessions in auth_sessions.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO auth_sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, created_at, expires_at
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, input.ID, input.UserID, input.ExpiresAt).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActive returns pgx.ErrNoRows for unknown and expired sessions alike.
func (r *SessionRepository) GetActive(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM auth_sessions
		WHERE id = $1 AND expires_at > NOW()
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes one session. Deleting a session that is already gone is not
// an error.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, sessionID)
	return err
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
