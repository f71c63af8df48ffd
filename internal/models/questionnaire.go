package models

import "time"

type QuestionType string

const (
	QuestionShortText QuestionType = "short_text"
	QuestionLongText  QuestionType = "long_text"
	QuestionNumber    QuestionType = "number"
	QuestionScale     QuestionType = "scale"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionShortText, QuestionLongText, QuestionNumber, QuestionScale:
		return true
	default:
		return false
	}
}

// Numeric questions expect response_number, the others response_text.
func (t QuestionType) Numeric() bool {
	return t == QuestionNumber || t == QuestionScale
}

type Questionnaire struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	QuestionCount   int        `json:"question_count"`
	Questions       []Question `json:"questions,omitempty"`
}

type Question struct {
	ID              string       `json:"id"`
	QuestionnaireID string       `json:"questionnaire_id"`
	Text            string       `json:"text"`
	Type            QuestionType `json:"type"`
	Order           int          `json:"question_order"`
	CreatedAt       time.Time    `json:"created_at"`
}

type QuestionnaireAssignment struct {
	Assignment
	Questionnaire *Questionnaire  `json:"questionnaire,omitempty"`
	Athlete       *AthleteSummary `json:"athlete,omitempty"`
}

type Response struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"question_id"`
	AssignmentID   string    `json:"assignment_id"`
	UserID         string    `json:"user_id"`
	ResponseText   *string   `json:"response_text,omitempty"`
	ResponseNumber *float64  `json:"response_number,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
	Question       *Question `json:"question,omitempty"`
}
