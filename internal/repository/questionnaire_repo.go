package repository

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type ContentInput struct {
	Title       string
	Description string
	CreatedBy   string
}

type QuestionnaireRepository struct {
	db DBTX
}

func NewQuestionnaireRepository(db DBTX) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

func (r *QuestionnaireRepository) Create(ctx context.Context, input ContentInput) (*models.Questionnaire, error) {
	query := `
		INSERT INTO questionnaires (title, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, created_by, created_at, updated_at
	`
	return scanQuestionnaire(r.db.QueryRow(ctx, query, input.Title, input.Description, input.CreatedBy))
}

func (r *QuestionnaireRepository) Update(ctx context.Context, id string, input ContentInput) (*models.Questionnaire, error) {
	query := `
		UPDATE questionnaires
		SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, created_by, created_at, updated_at
	`
	return scanQuestionnaire(r.db.QueryRow(ctx, query, id, input.Title, input.Description))
}

// Delete reports pgx.ErrNoRows when nothing was deleted.
func (r *QuestionnaireRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM questionnaires WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *QuestionnaireRepository) GetByID(ctx context.Context, id string) (*models.Questionnaire, error) {
	query := `
		SELECT id, title, description, created_by, created_at, updated_at
		FROM questionnaires
		WHERE id = $1
	`
	return scanQuestionnaire(r.db.QueryRow(ctx, query, id))
}

// ListByOwner lists questionnaires with their question counts. An empty
// owner lists every questionnaire.
func (r *QuestionnaireRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Questionnaire, error) {
	query := `
		SELECT q.id, q.title, q.description, q.created_by, q.created_at, q.updated_at,
			   (SELECT COUNT(*) FROM questions qs WHERE qs.questionnaire_id = q.id)
		FROM questionnaires q
		WHERE $1::uuid IS NULL OR q.created_by = $1::uuid
		ORDER BY q.created_at DESC, q.id DESC
	`
	rows, err := r.db.Query(ctx, query, nullableUUID(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questionnaires := make([]models.Questionnaire, 0)
	for rows.Next() {
		var questionnaire models.Questionnaire
		if err := rows.Scan(
			&questionnaire.ID,
			&questionnaire.Title,
			&questionnaire.Description,
			&questionnaire.CreatedBy,
			&questionnaire.CreatedAt,
			&questionnaire.UpdatedAt,
			&questionnaire.QuestionCount,
		); err != nil {
			return nil, err
		}
		questionnaires = append(questionnaires, questionnaire)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questionnaires, nil
}

func scanQuestionnaire(row pgx.Row) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	err := row.Scan(
		&questionnaire.ID,
		&questionnaire.Title,
		&questionnaire.Description,
		&questionnaire.CreatedBy,
		&questionnaire.CreatedAt,
		&questionnaire.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}
