package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/jackc/pgx/v5"
)

type AssignmentInput struct {
	ContentID  string
	AssignedTo string
	AssignedBy string
	DueDate    *time.Time
}

type QuestionnaireAssignmentRepository struct {
	db DBTX
}

func NewQuestionnaireAssignmentRepository(db DBTX) *QuestionnaireAssignmentRepository {
	return &QuestionnaireAssignmentRepository{db: db}
}

func (r *QuestionnaireAssignmentRepository) CreateMany(ctx context.Context, inputs []AssignmentInput) ([]models.QuestionnaireAssignment, error) {
	if len(inputs) == 0 {
		return []models.QuestionnaireAssignment{}, nil
	}

	query := `
		INSERT INTO questionnaire_assignments (questionnaire_id, assigned_to, assigned_by, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, questionnaire_id, assigned_to, assigned_by, assigned_at, due_date, status
	`
	batch := &pgx.Batch{}
	for _, input := range inputs {
		batch.Queue(query, input.ContentID, input.AssignedTo, input.AssignedBy, input.DueDate)
	}

	results := r.db.SendBatch(ctx, batch)
	assignments := make([]models.QuestionnaireAssignment, 0, len(inputs))
	for _, input := range inputs {
		assignment, err := scanAssignment(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("assign questionnaire to %s: %w", input.AssignedTo, err)
		}
		assignments = append(assignments, models.QuestionnaireAssignment{Assignment: *assignment})
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *QuestionnaireAssignmentRepository) GetByID(ctx context.Context, id string) (*models.QuestionnaireAssignment, error) {
	query := `
		SELECT id, questionnaire_id, assigned_to, assigned_by, assigned_at, due_date, status
		FROM questionnaire_assignments
		WHERE id = $1
	`
	assignment, err := scanAssignment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &models.QuestionnaireAssignment{Assignment: *assignment}, nil
}

// ListByQuestionnaire returns every assignment of one questionnaire with the
// assigned athlete attached.
func (r *QuestionnaireAssignmentRepository) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.QuestionnaireAssignment, error) {
	query := `
		SELECT a.id, a.questionnaire_id, a.assigned_to, a.assigned_by, a.assigned_at, a.due_date, a.status,
			   p.id, p.name, p.email, p.avatar_url
		FROM questionnaire_assignments a
		JOIN profiles p ON p.id = a.assigned_to
		WHERE a.questionnaire_id = $1
		ORDER BY a.assigned_at DESC, a.id DESC
	`
	rows, err := r.db.Query(ctx, query, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.QuestionnaireAssignment, 0)
	for rows.Next() {
		var (
			assignment models.QuestionnaireAssignment
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

// ListByAthlete returns the athlete's assignments with the questionnaire
// attached. A non-empty assignedBy narrows the list to one trainer.
func (r *QuestionnaireAssignmentRepository) ListByAthlete(ctx context.Context, athleteID, assignedBy string) ([]models.QuestionnaireAssignment, error) {
	query := `
		SELECT a.id, a.questionnaire_id, a.assigned_to, a.assigned_by, a.assigned_at, a.due_date, a.status,
			   q.id, q.title, q.description, q.created_by, q.created_at, q.updated_at,
			   (SELECT COUNT(*) FROM questions qs WHERE qs.questionnaire_id = q.id)
		FROM questionnaire_assignments a
		JOIN questionnaires q ON q.id = a.questionnaire_id
		WHERE a.assigned_to = $1
		  AND ($2::uuid IS NULL OR a.assigned_by = $2::uuid)
		ORDER BY a.assigned_at DESC, a.id DESC
	`
	rows, err := r.db.Query(ctx, query, athleteID, nullableUUID(assignedBy))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.QuestionnaireAssignment, 0)
	for rows.Next() {
		var (
			assignment    models.QuestionnaireAssignment
			questionnaire models.Questionnaire
			status        string
		)
		if err := rows.Scan(
			&assignment.ID,
			&assignment.ContentID,
			&assignment.AssignedTo,
			&assignment.AssignedBy,
			&assignment.AssignedAt,
			&assignment.DueDate,
			&status,
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
		assignment.Status = models.AssignmentStatus(status)
		assignment.Questionnaire = &questionnaire
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdateStatusIfCurrent moves an assignment to next only while it still holds
// current. It returns pgx.ErrNoRows when the row is missing or has moved on.
func (r *QuestionnaireAssignmentRepository) UpdateStatusIfCurrent(ctx context.Context, id string, current, next models.AssignmentStatus) (*models.QuestionnaireAssignment, error) {
	query := `
		UPDATE questionnaire_assignments
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING id, questionnaire_id, assigned_to, assigned_by, assigned_at, due_date, status
	`
	assignment, err := scanAssignment(r.db.QueryRow(ctx, query, id, string(current), string(next)))
	if err != nil {
		return nil, err
	}
	return &models.QuestionnaireAssignment{Assignment: *assignment}, nil
}

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var (
		assignment models.Assignment
		status     string
	)
	err := row.Scan(
		&assignment.ID,
		&assignment.ContentID,
		&assignment.AssignedTo,
		&assignment.AssignedBy,
		&assignment.AssignedAt,
		&assignment.DueDate,
		&status,
	)
	if err != nil {
		return nil, err
	}
	assignment.Status = models.AssignmentStatus(status)
	return &assignment, nil
}
