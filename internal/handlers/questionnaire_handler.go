package handlers

import (
	"context"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type questionnaireService interface {
	CreateQuestionnaire(
		ctx context.Context,
		actor services.Actor,
		payload services.ContentPayload,
		items []services.QuestionItem,
	) (*models.Questionnaire, error)
	UpdateQuestionnaire(
		ctx context.Context,
		actor services.Actor,
		questionnaireID string,
		payload services.ContentPayload,
		items []services.QuestionItem,
	) (*models.Questionnaire, error)
	DeleteQuestionnaire(ctx context.Context, actor services.Actor, questionnaireID string) error
	GetQuestionnaire(ctx context.Context, actor services.Actor, questionnaireID string) (*models.Questionnaire, error)
	ListQuestionnaires(ctx context.Context, actor services.Actor) ([]models.Questionnaire, error)
	AssignQuestionnaire(
		ctx context.Context,
		actor services.Actor,
		questionnaireID string,
		input services.AssignInput,
	) ([]models.QuestionnaireAssignment, error)
	ListAssignments(ctx context.Context, actor services.Actor, questionnaireID string) ([]models.QuestionnaireAssignment, error)
	ListAthleteAssignments(ctx context.Context, actor services.Actor, athleteID string) ([]models.QuestionnaireAssignment, error)
	GetAthleteAssignment(
		ctx context.Context,
		actor services.Actor,
		assignmentID string,
	) (*services.QuestionnaireAssignmentDetail, error)
	UpdateAssignmentStatus(
		ctx context.Context,
		actor services.Actor,
		assignmentID string,
		requested string,
	) (*models.QuestionnaireAssignment, error)
	SubmitResponses(
		ctx context.Context,
		actor services.Actor,
		assignmentID string,
		items []services.ResponseItem,
	) (*services.SubmitResult, error)
	GetAssignmentResponses(ctx context.Context, actor services.Actor, assignmentID string) ([]models.Response, error)
	AssignmentBelongsTo(ctx context.Context, assignmentID, questionnaireID string) error
}

type QuestionnaireHandler struct {
	service questionnaireService
}

func NewQuestionnaireHandler(service questionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: service}
}

var questionTypes = []models.QuestionType{
	models.QuestionShortText,
	models.QuestionLongText,
	models.QuestionNumber,
	models.QuestionScale,
}

type questionRequest struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Order *int   `json:"question_order"`
}

type questionnaireRequest struct {
	contentRequest
	Questions []questionRequest `json:"questions"`
}

func (r questionnaireRequest) items() []services.QuestionItem {
	items := make([]services.QuestionItem, 0, len(r.Questions))
	for _, question := range r.Questions {
		items = append(items, services.QuestionItem{
			Text:  question.Text,
			Type:  question.Type,
			Order: question.Order,
		})
	}
	return items
}

type responseRequest struct {
	QuestionID     string   `json:"question_id"`
	ResponseText   *string  `json:"response_text"`
	ResponseNumber *float64 `json:"response_number"`
}

type submitResponsesRequest struct {
	Responses []responseRequest `json:"responses"`
}

func (h *QuestionnaireHandler) List(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	questionnaires, err := h.service.ListQuestionnaires(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	if questionnaires == nil {
		questionnaires = []models.Questionnaire{}
	}
	return c.JSON(fiber.Map{"questionnaires": questionnaires})
}

func (h *QuestionnaireHandler) Create(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	req, ok, err := parseQuestionnaireRequest(c)
	if !ok {
		return err
	}

	questionnaire, err := h.service.CreateQuestionnaire(c.Context(), actor, req.payload(), req.items())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"questionnaire": questionnaire})
}

func (h *QuestionnaireHandler) Get(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}

	questionnaire, err := h.service.GetQuestionnaire(c.Context(), actor, questionnaireID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"questionnaire": questionnaire})
}

// Edit returns the questionnaire with what an edit form needs.
func (h *QuestionnaireHandler) Edit(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}

	questionnaire, err := h.service.GetQuestionnaire(c.Context(), actor, questionnaireID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"questionnaire":  questionnaire,
		"question_types": questionTypes,
	})
}

func (h *QuestionnaireHandler) Update(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}

	req, ok, err := parseQuestionnaireRequest(c)
	if !ok {
		return err
	}

	questionnaire, err := h.service.UpdateQuestionnaire(c.Context(), actor, questionnaireID, req.payload(), req.items())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"questionnaire": questionnaire})
}

func (h *QuestionnaireHandler) Delete(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}

	if err := h.service.DeleteQuestionnaire(c.Context(), actor, questionnaireID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *QuestionnaireHandler) ListAssignments(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}

	assignments, err := h.service.ListAssignments(c.Context(), actor, questionnaireID)
	if err != nil {
		return respondError(c, err)
	}
	if assignments == nil {
		assignments = []models.QuestionnaireAssignment{}
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}

func (h *QuestionnaireHandler) Assign(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}

	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.AthleteIDs) == 0 {
		return badRequest(c, "athlete_ids must contain at least one item")
	}
	input, ok := req.input()
	if !ok {
		return badRequest(c, "due_date must be YYYY-MM-DD or RFC 3339")
	}

	assignments, err := h.service.AssignQuestionnaire(c.Context(), actor, questionnaireID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignments": assignments})
}

func (h *QuestionnaireHandler) UpdateAssignmentStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.service.AssignmentBelongsTo(c.Context(), assignmentID, questionnaireID); err != nil {
		return respondError(c, err)
	}

	assignment, err := h.service.UpdateAssignmentStatus(c.Context(), actor, assignmentID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

func (h *QuestionnaireHandler) AssignmentResponses(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	questionnaireID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid questionnaire id")
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	if err := h.service.AssignmentBelongsTo(c.Context(), assignmentID, questionnaireID); err != nil {
		return respondError(c, err)
	}
	responses, err := h.service.GetAssignmentResponses(c.Context(), actor, assignmentID)
	if err != nil {
		return respondError(c, err)
	}
	if responses == nil {
		responses = []models.Response{}
	}
	return c.JSON(fiber.Map{"responses": responses})
}

// AthleteList lists the questionnaires assigned to the signed-in athlete.
func (h *QuestionnaireHandler) AthleteList(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	assignments, err := h.service.ListAthleteAssignments(c.Context(), actor, actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	if assignments == nil {
		assignments = []models.QuestionnaireAssignment{}
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}

// AthleteGet opens one assignment; the path id is the assignment id.
func (h *QuestionnaireHandler) AthleteGet(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	detail, err := h.service.GetAthleteAssignment(c.Context(), actor, assignmentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": detail})
}

func (h *QuestionnaireHandler) AthleteUpdateStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	assignment, err := h.service.UpdateAssignmentStatus(c.Context(), actor, assignmentID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

// SubmitResponses stores answers and completes the assignment. When the
// answers were stored but completing failed, the error body carries them.
func (h *QuestionnaireHandler) SubmitResponses(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}
	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid assignment id")
	}

	var req submitResponsesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateResponseRequests(req.Responses); validationErr != "" {
		return badRequest(c, validationErr)
	}

	items := make([]services.ResponseItem, 0, len(req.Responses))
	for _, response := range req.Responses {
		items = append(items, services.ResponseItem{
			QuestionID:     response.QuestionID,
			ResponseText:   response.ResponseText,
			ResponseNumber: response.ResponseNumber,
		})
	}

	result, err := h.service.SubmitResponses(c.Context(), actor, assignmentID, items)
	if err != nil {
		if result != nil {
			return respondErrorWith(c, err, fiber.Map{"responses": result.Responses})
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func parseQuestionnaireRequest(c *fiber.Ctx) (questionnaireRequest, bool, error) {
	var req questionnaireRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false, badRequest(c, "Invalid request body")
	}
	if validationErr := validateContentRequest(req.contentRequest); validationErr != "" {
		return req, false, badRequest(c, validationErr)
	}
	if validationErr := validateQuestionRequests(req.Questions); validationErr != "" {
		return req, false, badRequest(c, validationErr)
	}
	return req, true, nil
}
