package models

import (
	"strings"
	"time"
)

type ContentKind string

const (
	ContentQuestionnaire ContentKind = "questionnaire"
	ContentWorkout       ContentKind = "workout"
)

type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusCanceled   AssignmentStatus = "canceled"
)

// assignmentTransitions lists the forward moves allowed per content kind.
// Nothing ever moves back to pending.
var assignmentTransitions = map[ContentKind]map[AssignmentStatus][]AssignmentStatus{
	ContentQuestionnaire: {
		StatusPending:    {StatusInProgress, StatusCompleted},
		StatusInProgress: {StatusCompleted},
	},
	ContentWorkout: {
		StatusPending: {StatusCompleted, StatusCanceled},
	},
}

// ParseAssignmentStatus normalizes user input and checks it is a status the
// given kind can ever hold.
func ParseAssignmentStatus(kind ContentKind, raw string) (AssignmentStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "in-progress", "started", "start":
		normalized = string(StatusInProgress)
	case "complete", "done":
		normalized = string(StatusCompleted)
	case "cancel", "cancelled":
		normalized = string(StatusCanceled)
	}

	status := AssignmentStatus(normalized)
	if status == StatusPending {
		return status, true
	}
	for _, next := range assignmentTransitions[kind] {
		for _, candidate := range next {
			if candidate == status {
				return status, true
			}
		}
	}
	return "", false
}

// CanTransition reports whether an assignment of the given kind may move from
// current to next. Re-applying the current status is allowed and is a no-op.
func CanTransition(kind ContentKind, current, next AssignmentStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range assignmentTransitions[kind][current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(kind ContentKind, status AssignmentStatus) bool {
	return len(assignmentTransitions[kind][status]) == 0
}

// Assignment links one content item to one athlete.
type Assignment struct {
	ID         string           `json:"id"`
	ContentID  string           `json:"content_id"`
	AssignedTo string           `json:"assigned_to"`
	AssignedBy string           `json:"assigned_by"`
	AssignedAt time.Time        `json:"assigned_at"`
	DueDate    *time.Time       `json:"due_date,omitempty"`
	Status     AssignmentStatus `json:"status"`
}

type AthleteSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
