package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, role, name, email, avatar_url, locale, created_at, updated_at`

type CreateProfileInput struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

type UpdateProfileInput struct {
	Name      *string
	AvatarURL *string
	Locale    *string
}

type ProfileListFilter struct {
	Search string
	Role   models.Role
	Offset int
	Limit  int
}

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, input CreateProfileInput) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, name, email, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, input.ID, input.Name, input.Email, nullableText(string(input.Role))))
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *ProfileRepository) GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1 AND role = $2`
	return scanProfile(r.db.QueryRow(ctx, query, email, string(role)))
}

func (r *ProfileRepository) UpdatePartial(ctx context.Context, id string, input UpdateProfileInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET name = COALESCE($2, name),
			avatar_url = COALESCE($3, avatar_url),
			locale = COALESCE($4, locale),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, id, input.Name, input.AvatarURL, input.Locale))
}

// UpdateRole sets the role; an empty role clears it back to unassigned.
func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role models.Role) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, id, nullableText(string(role))))
}

func (r *ProfileRepository) List(ctx context.Context, filter ProfileListFilter) ([]models.Profile, int, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		whereParts = append(whereParts, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR email ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		whereParts = append(whereParts, fmt.Sprintf("role = $%d", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		WHERE %s
		ORDER BY name ASC, email ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, profileColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		profile models.Profile
		role    *string
	)
	err := row.Scan(
		&profile.ID,
		&role,
		&profile.Name,
		&profile.Email,
		&profile.AvatarURL,
		&profile.Locale,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if role != nil {
		profile.Role = models.Role(*role)
	}
	return &profile, nil
}
