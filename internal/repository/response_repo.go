package repository

import (
	"context"
	"fmt"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type ResponseInput struct {
	QuestionID     string
	AssignmentID   string
	UserID         string
	ResponseText   *string
	ResponseNumber *float64
}

type ResponseRepository struct {
	db DBTX
}

func NewResponseRepository(db DBTX) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func (r *ResponseRepository) InsertMany(ctx context.Context, inputs []ResponseInput) ([]models.Response, error) {
	if len(inputs) == 0 {
		return []models.Response{}, nil
	}

	query := `
		INSERT INTO responses (question_id, assignment_id, user_id, response_text, response_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, question_id, assignment_id, user_id, response_text, response_number, submitted_at
	`
	batch := &pgx.Batch{}
	for _, input := range inputs {
		batch.Queue(query, input.QuestionID, input.AssignmentID, input.UserID, input.ResponseText, input.ResponseNumber)
	}

	results := r.db.SendBatch(ctx, batch)
	responses := make([]models.Response, 0, len(inputs))
	for _, input := range inputs {
		var response models.Response
		if err := results.QueryRow().Scan(
			&response.ID,
			&response.QuestionID,
			&response.AssignmentID,
			&response.UserID,
			&response.ResponseText,
			&response.ResponseNumber,
			&response.SubmittedAt,
		); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert response for question %s: %w", input.QuestionID, err)
		}
		responses = append(responses, response)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	return responses, nil
}

// ListByAssignment returns every stored response for the assignment with its
// question attached, oldest submission first.
func (r *ResponseRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Response, error) {
	query := `
		SELECT r.id, r.question_id, r.assignment_id, r.user_id, r.response_text, r.response_number, r.submitted_at,
			   q.id, q.questionnaire_id, q.text, q.type, q.question_order, q.created_at
		FROM responses r
		JOIN questions q ON q.id = r.question_id
		WHERE r.assignment_id = $1
		ORDER BY r.submitted_at ASC, q.question_order ASC, r.id ASC
	`
	rows, err := r.db.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]models.Response, 0)
	for rows.Next() {
		var (
			response     models.Response
			question     models.Question
			questionType string
		)
		if err := rows.Scan(
			&response.ID,
			&response.QuestionID,
			&response.AssignmentID,
			&response.UserID,
			&response.ResponseText,
			&response.ResponseNumber,
			&response.SubmittedAt,
			&question.ID,
			&question.QuestionnaireID,
			&question.Text,
			&questionType,
			&question.Order,
			&question.CreatedAt,
		); err != nil {
			return nil, err
		}
		question.Type = models.QuestionType(questionType)
		response.Question = &question
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *ResponseRepository) CountByAssignmentUser(ctx context.Context, assignmentID, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE assignment_id = $1 AND user_id = $2`,
		assignmentID, userID,
	).Scan(&count)
	return count, err
}
