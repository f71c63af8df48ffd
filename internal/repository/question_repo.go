package repository

import (
	"context"
	"fmt"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type QuestionInput struct {
	Text  string
	Type  models.QuestionType
	Order int
}

type QuestionRepository struct {
	db DBTX
}

func NewQuestionRepository(db DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// InsertMany inserts every question for one questionnaire in a single batch
// and returns them in input order.
func (r *QuestionRepository) InsertMany(ctx context.Context, questionnaireID string, inputs []QuestionInput) ([]models.Question, error) {
	if len(inputs) == 0 {
		return []models.Question{}, nil
	}

	query := `
		INSERT INTO questions (questionnaire_id, text, type, question_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, questionnaire_id, text, type, question_order, created_at
	`
	batch := &pgx.Batch{}
	for _, input := range inputs {
		batch.Queue(query, questionnaireID, input.Text, string(input.Type), input.Order)
	}

	results := r.db.SendBatch(ctx, batch)
	questions := make([]models.Question, 0, len(inputs))
	for i := range inputs {
		question, err := scanQuestion(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert question %d: %w", i+1, err)
		}
		questions = append(questions, *question)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM questions WHERE questionnaire_id = $1`, questionnaireID)
	return err
}

func (r *QuestionRepository) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.Question, error) {
	query := `
		SELECT id, questionnaire_id, text, type, question_order, created_at
		FROM questions
		WHERE questionnaire_id = $1
		ORDER BY question_order ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var (
		question     models.Question
		questionType string
	)
	err := row.Scan(
		&question.ID,
		&question.QuestionnaireID,
		&question.Text,
		&questionType,
		&question.Order,
		&question.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	question.Type = models.QuestionType(questionType)
	return &question, nil
}
