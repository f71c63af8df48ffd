package services

import (
	"context"
	"log"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/pkg/utils"
	"github.com/google/uuid"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 10000
	maxChildOrder        = 10000
)

// Actor is the authenticated caller as resolved by the access gate.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type rosterLookup interface {
	GetStatus(ctx context.Context, trainerID, athleteID string) (string, error)
}

type ContentPayload struct {
	Title       string
	Description string
}

func normalizeContentPayload(payload ContentPayload) (ContentPayload, error) {
	title := strings.TrimSpace(payload.Title)
	description := strings.TrimSpace(payload.Description)
	if title == "" || len(title) > maxTitleLength || len(description) > maxDescriptionLength {
		return ContentPayload{}, ErrInvalidInput
	}
	return ContentPayload{Title: title, Description: description}, nil
}

// resolveOrder keeps an explicit order and falls back to the 1-based position.
func resolveOrder(explicit *int, index int) int {
	if explicit != nil && *explicit > 0 {
		return *explicit
	}
	return index + 1
}

// orderInRange rejects explicit orders the order columns cannot hold.
func orderInRange(explicit *int) bool {
	return explicit == nil || *explicit <= maxChildOrder
}

// dedupeAssignees validates ids and drops repeats, keeping first-seen order.
func dedupeAssignees(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, raw := range ids {
		parsed, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, ErrInvalidInput
		}
		id := parsed.String()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, ErrInvalidInput
	}
	return unique, nil
}

// canManageContent reports whether the actor may edit, delete or assign
// content created by ownerID.
func canManageContent(actor Actor, ownerID string) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTrainer:
		return actor.ID != "" && actor.ID == ownerID
	default:
		return false
	}
}

func canManageAssignment(actor Actor, assignment models.Assignment, contentOwnerID string) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTrainer:
		return actor.ID == assignment.AssignedBy || actor.ID == contentOwnerID
	case models.RoleAthlete:
		return actor.ID == assignment.AssignedTo
	default:
		return false
	}
}

func ownerFilter(actor Actor) (string, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return "", nil
	case models.RoleTrainer:
		return actor.ID, nil
	default:
		return "", ErrForbidden
	}
}

func describe(description string) string {
	html, err := utils.RenderMarkdown(description)
	if err != nil {
		log.Printf("render description: %v", err)
		return ""
	}
	return html
}
