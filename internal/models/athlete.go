package models

import "time"

const (
	RelationshipActive   = "active"
	RelationshipInactive = "inactive"
)

// RosterEntry is one side of a trainer/athlete relationship as seen from the
// other side.
type RosterEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type AthleteDetail struct {
	Athlete                  AthleteSummary            `json:"athlete"`
	RelationshipStatus       string                    `json:"relationship_status,omitempty"`
	QuestionnaireAssignments []QuestionnaireAssignment `json:"questionnaire_assignments"`
	WorkoutAssignments       []WorkoutAssignment       `json:"workout_assignments"`
}
