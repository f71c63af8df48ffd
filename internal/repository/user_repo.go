package repository

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/models"
)

// UserRepository reads and writes identity records in auth_users.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.AuthUser) error {
	query := `
		INSERT INTO auth_users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM auth_users
		WHERE email = $1
	`
	var user models.AuthUser
	err := r.db.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.AuthUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM auth_users
		WHERE id = $1
	`
	var user models.AuthUser
	err := r.db.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
