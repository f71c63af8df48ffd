package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/jackc/pgx/v5"
)

const maxQuestionTextLength = 1000

type questionnaireStore interface {
	Create(ctx context.Context, input repository.ContentInput) (*models.Questionnaire, error)
	Update(ctx context.Context, id string, input repository.ContentInput) (*models.Questionnaire, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Questionnaire, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Questionnaire, error)
}

type questionStore interface {
	InsertMany(ctx context.Context, questionnaireID string, inputs []repository.QuestionInput) ([]models.Question, error)
	DeleteByQuestionnaire(ctx context.Context, questionnaireID string) error
	ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.Question, error)
}

type questionnaireAssignmentStore interface {
	CreateMany(ctx context.Context, inputs []repository.AssignmentInput) ([]models.QuestionnaireAssignment, error)
	GetByID(ctx context.Context, id string) (*models.QuestionnaireAssignment, error)
	ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.QuestionnaireAssignment, error)
	ListByAthlete(ctx context.Context, athleteID, assignedBy string) ([]models.QuestionnaireAssignment, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, current, next models.AssignmentStatus) (*models.QuestionnaireAssignment, error)
}

type responseStore interface {
	InsertMany(ctx context.Context, inputs []repository.ResponseInput) ([]models.Response, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Response, error)
	CountByAssignmentUser(ctx context.Context, assignmentID, userID string) (int, error)
}

type profileReader interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

type questionnaireStores struct {
	questionnaires questionnaireStore
	questions      questionStore
	assignments    questionnaireAssignmentStore
	responses      responseStore
	roster         rosterLookup
}

func newQuestionnaireStores(db repository.DBTX) questionnaireStores {
	return questionnaireStores{
		questionnaires: repository.NewQuestionnaireRepository(db),
		questions:      repository.NewQuestionRepository(db),
		assignments:    repository.NewQuestionnaireAssignmentRepository(db),
		responses:      repository.NewResponseRepository(db),
		roster:         repository.NewTrainerAthleteRepository(db),
	}
}

type QuestionnaireService struct {
	tx       repository.TxRunner
	stores   func(db repository.DBTX) questionnaireStores
	store    questionnaireStores
	profiles profileReader
	notifier Notifier
	baseURL  string
}

func NewQuestionnaireService(
	db repository.DBTX,
	tx repository.TxRunner,
	profiles profileReader,
	notifier Notifier,
	baseURL string,
) *QuestionnaireService {
	return &QuestionnaireService{
		tx:       tx,
		stores:   newQuestionnaireStores,
		store:    newQuestionnaireStores(db),
		profiles: profiles,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

type QuestionItem struct {
	Text  string
	Type  string
	Order *int
}

type ResponseItem struct {
	QuestionID     string
	ResponseText   *string
	ResponseNumber *float64
}

type AssignInput struct {
	AssigneeIDs []string
	DueDate     *time.Time
}

// QuestionnaireAssignmentDetail is what an athlete sees when opening one
// assignment.
type QuestionnaireAssignmentDetail struct {
	models.QuestionnaireAssignment
	HasSubmitted bool `json:"has_submitted"`
}

type SubmitResult struct {
	Responses  []models.Response              `json:"responses"`
	Assignment *models.QuestionnaireAssignment `json:"assignment,omitempty"`
}

func normalizeQuestions(items []QuestionItem) ([]repository.QuestionInput, error) {
	inputs := make([]repository.QuestionInput, 0, len(items))
	for i, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" || len(text) > maxQuestionTextLength || !orderInRange(item.Order) {
			return nil, fmt.Errorf("question %d: %w", i+1, ErrInvalidInput)
		}
		questionType := models.QuestionType(strings.ToLower(strings.TrimSpace(item.Type)))
		if questionType == "" {
			questionType = models.QuestionShortText
		}
		if !questionType.Valid() {
			return nil, fmt.Errorf("question %d type %q: %w", i+1, item.Type, ErrInvalidInput)
		}
		inputs = append(inputs, repository.QuestionInput{
			Text:  text,
			Type:  questionType,
			Order: resolveOrder(item.Order, i),
		})
	}
	return inputs, nil
}

// CreateQuestionnaire inserts the questionnaire and its questions in one
// transaction.
func (s *QuestionnaireService) CreateQuestionnaire(
	ctx context.Context,
	actor Actor,
	payload ContentPayload,
	items []QuestionItem,
) (*models.Questionnaire, error) {
	if !canManageContent(actor, actor.ID) {
		return nil, ErrForbidden
	}
	payload, err := normalizeContentPayload(payload)
	if err != nil {
		return nil, err
	}
	inputs, err := normalizeQuestions(items)
	if err != nil {
		return nil, err
	}

	var created *models.Questionnaire
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		stores := s.stores(db)
		questionnaire, err := stores.questionnaires.Create(ctx, repository.ContentInput{
			Title:       payload.Title,
			Description: payload.Description,
			CreatedBy:   actor.ID,
		})
		if err != nil {
			return classifyStoreError("create questionnaire", err)
		}
		questions, err := stores.questions.InsertMany(ctx, questionnaire.ID, inputs)
		if err != nil {
			return classifyStoreError("create questions", err)
		}
		questionnaire.Questions = questions
		questionnaire.QuestionCount = len(questions)
		created = questionnaire
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("create questionnaire", err)
	}
	created.DescriptionHTML = describe(created.Description)
	return created, nil
}

// UpdateQuestionnaire replaces the questionnaire fields and its full question
// list inside one transaction.
func (s *QuestionnaireService) UpdateQuestionnaire(
	ctx context.Context,
	actor Actor,
	questionnaireID string,
	payload ContentPayload,
	items []QuestionItem,
) (*models.Questionnaire, error) {
	payload, err := normalizeContentPayload(payload)
	if err != nil {
		return nil, err
	}
	inputs, err := normalizeQuestions(items)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireManaged(ctx, actor, questionnaireID); err != nil {
		return nil, err
	}

	var updated *models.Questionnaire
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		stores := s.stores(db)
		questionnaire, err := stores.questionnaires.Update(ctx, questionnaireID, repository.ContentInput{
			Title:       payload.Title,
			Description: payload.Description,
		})
		if err != nil {
			return classifyStoreError("update questionnaire", err)
		}
		if err := stores.questions.DeleteByQuestionnaire(ctx, questionnaireID); err != nil {
			return classifyStoreError("clear questions", err)
		}
		questions, err := stores.questions.InsertMany(ctx, questionnaireID, inputs)
		if err != nil {
			return classifyStoreError("replace questions", err)
		}
		questionnaire.Questions = questions
		questionnaire.QuestionCount = len(questions)
		updated = questionnaire
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("update questionnaire", err)
	}
	updated.DescriptionHTML = describe(updated.Description)
	return updated, nil
}

func (s *QuestionnaireService) DeleteQuestionnaire(ctx context.Context, actor Actor, questionnaireID string) error {
	if _, err := s.requireManaged(ctx, actor, questionnaireID); err != nil {
		return err
	}
	return classifyStoreError("delete questionnaire", s.store.questionnaires.Delete(ctx, questionnaireID))
}

func (s *QuestionnaireService) GetQuestionnaire(ctx context.Context, actor Actor, questionnaireID string) (*models.Questionnaire, error) {
	questionnaire, err := s.requireManaged(ctx, actor, questionnaireID)
	if err != nil {
		return nil, err
	}
	return s.withQuestions(ctx, questionnaire)
}

func (s *QuestionnaireService) ListQuestionnaires(ctx context.Context, actor Actor) ([]models.Questionnaire, error) {
	owner, err := ownerFilter(actor)
	if err != nil {
		return nil, err
	}
	questionnaires, err := s.store.questionnaires.ListByOwner(ctx, owner)
	if err != nil {
		return nil, classifyStoreError("list questionnaires", err)
	}
	for i := range questionnaires {
		questionnaires[i].DescriptionHTML = describe(questionnaires[i].Description)
	}
	return questionnaires, nil
}

// AssignQuestionnaire creates one pending assignment per distinct athlete.
func (s *QuestionnaireService) AssignQuestionnaire(
	ctx context.Context,
	actor Actor,
	questionnaireID string,
	input AssignInput,
) ([]models.QuestionnaireAssignment, error) {
	assignees, err := dedupeAssignees(input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	questionnaire, err := s.requireManaged(ctx, actor, questionnaireID)
	if err != nil {
		return nil, err
	}
	athletes, err := loadAthletes(ctx, actor, s.profiles, s.store.roster, assignees)
	if err != nil {
		return nil, err
	}

	inputs := make([]repository.AssignmentInput, 0, len(assignees))
	for _, athleteID := range assignees {
		inputs = append(inputs, repository.AssignmentInput{
			ContentID:  questionnaireID,
			AssignedTo: athleteID,
			AssignedBy: actor.ID,
			DueDate:    input.DueDate,
		})
	}

	var assignments []models.QuestionnaireAssignment
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		created, err := s.stores(db).assignments.CreateMany(ctx, inputs)
		if err != nil {
			return classifyStoreError("create assignments", err)
		}
		assignments = created
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("assign questionnaire", err)
	}

	notifyAssignees(ctx, s.notifier, models.ContentQuestionnaire, questionnaire.Title,
		s.baseURL+models.RoleAthlete.HomePath()+"/questionnaires", athletes)
	return assignments, nil
}

func (s *QuestionnaireService) ListAssignments(ctx context.Context, actor Actor, questionnaireID string) ([]models.QuestionnaireAssignment, error) {
	if _, err := s.requireManaged(ctx, actor, questionnaireID); err != nil {
		return nil, err
	}
	assignments, err := s.store.assignments.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, classifyStoreError("list assignments", err)
	}
	return assignments, nil
}

// ListAthleteAssignments lists an athlete's questionnaires. Trainers only see
// what they assigned; athletes only see their own.
func (s *QuestionnaireService) ListAthleteAssignments(ctx context.Context, actor Actor, athleteID string) ([]models.QuestionnaireAssignment, error) {
	assignedBy, err := athleteAssignmentScope(actor, athleteID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.assignments.ListByAthlete(ctx, athleteID, assignedBy)
	if err != nil {
		return nil, classifyStoreError("list athlete assignments", err)
	}
	for i := range assignments {
		if assignments[i].Questionnaire != nil {
			assignments[i].Questionnaire.DescriptionHTML = describe(assignments[i].Questionnaire.Description)
		}
	}
	return assignments, nil
}

// GetAthleteAssignment opens one assignment addressed to the athlete with the
// questionnaire and its questions.
func (s *QuestionnaireService) GetAthleteAssignment(ctx context.Context, actor Actor, assignmentID string) (*QuestionnaireAssignmentDetail, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAthlete || assignment.AssignedTo != actor.ID {
		return nil, ErrForbidden
	}

	questionnaire, err := s.store.questionnaires.GetByID(ctx, assignment.ContentID)
	if err != nil {
		return nil, classifyStoreError("load questionnaire", err)
	}
	questionnaire, err = s.withQuestions(ctx, questionnaire)
	if err != nil {
		return nil, err
	}
	assignment.Questionnaire = questionnaire

	submitted, err := s.HasSubmittedResponses(ctx, actor, assignmentID, "")
	if err != nil {
		return nil, err
	}
	return &QuestionnaireAssignmentDetail{QuestionnaireAssignment: *assignment, HasSubmitted: submitted}, nil
}

// UpdateAssignmentStatus applies a forward lifecycle move. Re-applying the
// current status returns the assignment unchanged.
func (s *QuestionnaireService) UpdateAssignmentStatus(
	ctx context.Context,
	actor Actor,
	assignmentID string,
	requested string,
) (*models.QuestionnaireAssignment, error) {
	next, ok := models.ParseAssignmentStatus(models.ContentQuestionnaire, requested)
	if !ok {
		return nil, fmt.Errorf("status %q: %w", requested, ErrInvalidInput)
	}
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAssignment(ctx, actor, assignment); err != nil {
		return nil, err
	}

	if !models.CanTransition(models.ContentQuestionnaire, assignment.Status, next) {
		return nil, fmt.Errorf("%s -> %s: %w", assignment.Status, next, ErrInvalidStateTransition)
	}
	if assignment.Status == next {
		return assignment, nil
	}

	updated, err := s.store.assignments.UpdateStatusIfCurrent(ctx, assignmentID, assignment.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, classifyStoreError("update assignment status", err)
	}
	return updated, nil
}

// SubmitResponses stores the athlete's answers and then marks the assignment
// completed. The two steps are separate: when the status step fails the
// stored responses remain and the error is returned with them.
func (s *QuestionnaireService) SubmitResponses(
	ctx context.Context,
	actor Actor,
	assignmentID string,
	items []ResponseItem,
) (*SubmitResult, error) {
	if len(items) == 0 {
		return nil, ErrInvalidInput
	}
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAthlete || assignment.AssignedTo != actor.ID {
		return nil, ErrForbidden
	}

	questions, err := s.store.questions.ListByQuestionnaire(ctx, assignment.ContentID)
	if err != nil {
		return nil, classifyStoreError("load questions", err)
	}
	inputs, err := buildResponseInputs(questions, assignmentID, actor.ID, items)
	if err != nil {
		return nil, err
	}

	responses, err := s.store.responses.InsertMany(ctx, inputs)
	if err != nil {
		return nil, classifyStoreError("save responses", err)
	}
	result := &SubmitResult{Responses: responses}

	if assignment.Status == models.StatusCompleted {
		result.Assignment = assignment
		return result, nil
	}
	updated, err := s.store.assignments.UpdateStatusIfCurrent(ctx, assignmentID, assignment.Status, models.StatusCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, loadErr := s.loadAssignment(ctx, assignmentID)
			if loadErr == nil && current.Status == models.StatusCompleted {
				result.Assignment = current
				return result, nil
			}
			return result, fmt.Errorf("responses saved, complete assignment: %w", ErrInvalidStateTransition)
		}
		return result, classifyStoreError("responses saved, complete assignment", err)
	}
	result.Assignment = updated
	return result, nil
}

func (s *QuestionnaireService) GetAssignmentResponses(ctx context.Context, actor Actor, assignmentID string) ([]models.Response, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAssignment(ctx, actor, assignment); err != nil {
		return nil, err
	}
	responses, err := s.store.responses.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, classifyStoreError("list responses", err)
	}
	return responses, nil
}

// HasSubmittedResponses reports whether userID stored any response for the
// assignment. An empty userID means the actor. The answer is advisory and
// never blocks another submission.
func (s *QuestionnaireService) HasSubmittedResponses(ctx context.Context, actor Actor, assignmentID, userID string) (bool, error) {
	if userID == "" {
		userID = actor.ID
	}
	if actor.Role == models.RoleAthlete && userID != actor.ID {
		return false, ErrForbidden
	}
	count, err := s.store.responses.CountByAssignmentUser(ctx, assignmentID, userID)
	if err != nil {
		return false, classifyStoreError("count responses", err)
	}
	return count > 0, nil
}

// AssignmentBelongsTo checks that the assignment is for the questionnaire.
func (s *QuestionnaireService) AssignmentBelongsTo(ctx context.Context, assignmentID, questionnaireID string) error {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.ContentID != questionnaireID {
		return ErrNotFound
	}
	return nil
}

func (s *QuestionnaireService) requireManaged(ctx context.Context, actor Actor, questionnaireID string) (*models.Questionnaire, error) {
	questionnaire, err := s.store.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, classifyStoreError("load questionnaire", err)
	}
	if !canManageContent(actor, questionnaire.CreatedBy) {
		return nil, ErrForbidden
	}
	return questionnaire, nil
}

func (s *QuestionnaireService) withQuestions(ctx context.Context, questionnaire *models.Questionnaire) (*models.Questionnaire, error) {
	questions, err := s.store.questions.ListByQuestionnaire(ctx, questionnaire.ID)
	if err != nil {
		return nil, classifyStoreError("load questions", err)
	}
	questionnaire.Questions = questions
	questionnaire.QuestionCount = len(questions)
	questionnaire.DescriptionHTML = describe(questionnaire.Description)
	return questionnaire, nil
}

func (s *QuestionnaireService) loadAssignment(ctx context.Context, assignmentID string) (*models.QuestionnaireAssignment, error) {
	assignment, err := s.store.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, classifyStoreError("load assignment", err)
	}
	return assignment, nil
}

func (s *QuestionnaireService) authorizeAssignment(ctx context.Context, actor Actor, assignment *models.QuestionnaireAssignment) error {
	ownerID := ""
	if actor.Role == models.RoleTrainer && actor.ID != assignment.AssignedBy {
		questionnaire, err := s.store.questionnaires.GetByID(ctx, assignment.ContentID)
		if err != nil {
			return classifyStoreError("load questionnaire", err)
		}
		ownerID = questionnaire.CreatedBy
	}
	if !canManageAssignment(actor, assignment.Assignment, ownerID) {
		return ErrForbidden
	}
	return nil
}

func buildResponseInputs(
	questions []models.Question,
	assignmentID string,
	userID string,
	items []ResponseItem,
) ([]repository.ResponseInput, error) {
	byID := make(map[string]models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	inputs := make([]repository.ResponseInput, 0, len(items))
	for _, item := range items {
		question, ok := byID[item.QuestionID]
		if !ok {
			return nil, fmt.Errorf("question %s is not part of this questionnaire: %w", item.QuestionID, ErrInvalidInput)
		}

		input := repository.ResponseInput{
			QuestionID:   question.ID,
			AssignmentID: assignmentID,
			UserID:       userID,
		}
		if question.Type.Numeric() {
			if item.ResponseNumber == nil {
				return nil, fmt.Errorf("question %s needs a number: %w", question.ID, ErrInvalidInput)
			}
			number := *item.ResponseNumber
			input.ResponseNumber = &number
		} else {
			if item.ResponseText == nil || strings.TrimSpace(*item.ResponseText) == "" {
				return nil, fmt.Errorf("question %s needs an answer: %w", question.ID, ErrInvalidInput)
			}
			text := strings.TrimSpace(*item.ResponseText)
			input.ResponseText = &text
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

func athleteAssignmentScope(actor Actor, athleteID string) (string, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return "", nil
	case models.RoleTrainer:
		return actor.ID, nil
	case models.RoleAthlete:
		if actor.ID != athleteID {
			return "", ErrForbidden
		}
		return "", nil
	default:
		return "", ErrForbidden
	}
}

// loadAthletes resolves assignees to athlete profiles in input order. A
// trainer may only assign athletes with an active relationship on their
// roster.
func loadAthletes(ctx context.Context, actor Actor, profiles profileReader, roster rosterLookup, ids []string) ([]models.Profile, error) {
	athletes := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := profiles.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("assignee %s: %w", id, ErrInvalidInput)
			}
			return nil, classifyStoreError("load assignee", err)
		}
		if profile.Role != models.RoleAthlete {
			return nil, fmt.Errorf("assignee %s is not an athlete: %w", id, ErrInvalidInput)
		}
		if actor.Role == models.RoleTrainer {
			status, err := roster.GetStatus(ctx, actor.ID, id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, fmt.Errorf("assignee %s is not on your roster: %w", id, ErrInvalidInput)
				}
				return nil, classifyStoreError("load relationship", err)
			}
			if status != models.RelationshipActive {
				return nil, fmt.Errorf("assignee %s is %s: %w", id, status, ErrInvalidInput)
			}
		}
		athletes = append(athletes, *profile)
	}
	return athletes, nil
}
