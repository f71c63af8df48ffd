package handlers

import (
	"fmt"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
)

const maxProfileNameLength = 100

func validateProfileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if len(name) > maxProfileNameLength {
		return "name must be at most 100 characters"
	}
	return ""
}

func validateContentRequest(req contentRequest) string {
	if strings.TrimSpace(req.Title) == "" {
		return "title is required"
	}
	return ""
}

func validateQuestionRequests(questions []questionRequest) string {
	for i, question := range questions {
		if strings.TrimSpace(question.Text) == "" {
			return fmt.Sprintf("questions[%d].text is required", i)
		}
		questionType := strings.ToLower(strings.TrimSpace(question.Type))
		if questionType != "" && !models.QuestionType(questionType).Valid() {
			return fmt.Sprintf("questions[%d].type must be one of short_text, long_text, number, scale", i)
		}
	}
	return ""
}

func validateExerciseRequests(exercises []exerciseRequest) string {
	for i, exercise := range exercises {
		if strings.TrimSpace(exercise.Name) == "" {
			return fmt.Sprintf("exercises[%d].name is required", i)
		}
		if exercise.Sets < 0 || exercise.Reps < 0 || exercise.Rest < 0 {
			return fmt.Sprintf("exercises[%d] must not contain negative values", i)
		}
	}
	return ""
}

func validateResponseRequests(responses []responseRequest) string {
	if len(responses) == 0 {
		return "responses must contain at least one item"
	}
	for i, response := range responses {
		if strings.TrimSpace(response.QuestionID) == "" {
			return fmt.Sprintf("responses[%d].question_id is required", i)
		}
		if response.ResponseText == nil && response.ResponseNumber == nil {
			return fmt.Sprintf("responses[%d] needs response_text or response_number", i)
		}
	}
	return ""
}
