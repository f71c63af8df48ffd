package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/jackc/pgx/v5"
)

const maxAdminRoster = 500

type rosterStore interface {
	Add(ctx context.Context, trainerID, athleteID string) error
	Remove(ctx context.Context, trainerID, athleteID string) (bool, error)
	UpdateStatus(ctx context.Context, trainerID, athleteID, status string) (bool, error)
	GetStatus(ctx context.Context, trainerID, athleteID string) (string, error)
	ListTrainerAthletes(ctx context.Context, trainerID string) ([]models.RosterEntry, error)
	ListAthleteTrainers(ctx context.Context, athleteID string) ([]models.RosterEntry, error)
}

type profileDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.Profile, error)
	List(ctx context.Context, filter repository.ProfileListFilter) ([]models.Profile, int, error)
}

type questionnaireAssignmentLister interface {
	ListAthleteAssignments(ctx context.Context, actor Actor, athleteID string) ([]models.QuestionnaireAssignment, error)
}

type workoutAssignmentLister interface {
	ListAthleteAssignments(ctx context.Context, actor Actor, athleteID string) ([]models.WorkoutAssignment, error)
}

// AthleteService manages trainer rosters.
type AthleteService struct {
	roster         rosterStore
	profiles       profileDirectory
	questionnaires questionnaireAssignmentLister
	workouts       workoutAssignmentLister
}

func NewAthleteService(
	roster *repository.TrainerAthleteRepository,
	profiles *repository.ProfileRepository,
	questionnaires questionnaireAssignmentLister,
	workouts workoutAssignmentLister,
) *AthleteService {
	return &AthleteService{
		roster:         roster,
		profiles:       profiles,
		questionnaires: questionnaires,
		workouts:       workouts,
	}
}

// ListAthletes returns the trainer's roster. Admins see every athlete.
func (s *AthleteService) ListAthletes(ctx context.Context, actor Actor) ([]models.RosterEntry, error) {
	switch actor.Role {
	case models.RoleTrainer:
		entries, err := s.roster.ListTrainerAthletes(ctx, actor.ID)
		if err != nil {
			return nil, classifyStoreError("list roster", err)
		}
		return entries, nil
	case models.RoleAdmin:
		profiles, _, err := s.profiles.List(ctx, repository.ProfileListFilter{
			Role:  models.RoleAthlete,
			Limit: maxAdminRoster,
		})
		if err != nil {
			return nil, classifyStoreError("list athletes", err)
		}
		entries := make([]models.RosterEntry, 0, len(profiles))
		for _, profile := range profiles {
			entries = append(entries, models.RosterEntry{
				ID:        profile.ID,
				Name:      profile.Name,
				Email:     profile.Email,
				AvatarURL: profile.AvatarURL,
				CreatedAt: profile.CreatedAt,
			})
		}
		return entries, nil
	default:
		return nil, ErrForbidden
	}
}

func (s *AthleteService) ListAthleteTrainers(ctx context.Context, athleteID string) ([]models.RosterEntry, error) {
	entries, err := s.roster.ListAthleteTrainers(ctx, athleteID)
	if err != nil {
		return nil, classifyStoreError("list trainers", err)
	}
	return entries, nil
}

// AddAthleteByEmail puts the athlete with that email on the trainer's roster.
// Adding someone already on the roster succeeds.
func (s *AthleteService) AddAthleteByEmail(ctx context.Context, actor Actor, email string) (*models.AthleteSummary, error) {
	if actor.Role != models.RoleTrainer {
		return nil, ErrForbidden
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByEmailAndRole(ctx, normalized, models.RoleAthlete)
	if err != nil {
		return nil, classifyStoreError("find athlete", err)
	}
	if err := s.roster.Add(ctx, actor.ID, profile.ID); err != nil {
		classified := classifyStoreError("add athlete", err)
		if !errors.Is(classified, ErrConflict) {
			return nil, classified
		}
	}

	summary := athleteSummary(profile)
	return &summary, nil
}

func (s *AthleteService) RemoveAthlete(ctx context.Context, actor Actor, athleteID string) error {
	if actor.Role != models.RoleTrainer {
		return ErrForbidden
	}
	removed, err := s.roster.Remove(ctx, actor.ID, athleteID)
	if err != nil {
		return classifyStoreError("remove athlete", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *AthleteService) UpdateAthleteStatus(ctx context.Context, actor Actor, athleteID, status string) error {
	if actor.Role != models.RoleTrainer {
		return ErrForbidden
	}
	if status != models.RelationshipActive && status != models.RelationshipInactive {
		return fmt.Errorf("relationship status %q: %w", status, ErrInvalidInput)
	}
	updated, err := s.roster.UpdateStatus(ctx, actor.ID, athleteID, status)
	if err != nil {
		return classifyStoreError("update athlete status", err)
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// SearchAthletes matches athlete profiles by name or email.
func (s *AthleteService) SearchAthletes(ctx context.Context, actor Actor, query string, offset, limit int) ([]models.AthleteSummary, int, error) {
	if actor.Role != models.RoleTrainer && actor.Role != models.RoleAdmin {
		return nil, 0, ErrForbidden
	}
	profiles, total, err := s.profiles.List(ctx, repository.ProfileListFilter{
		Search: query,
		Role:   models.RoleAthlete,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, classifyStoreError("search athletes", err)
	}
	summaries := make([]models.AthleteSummary, 0, len(profiles))
	for i := range profiles {
		summaries = append(summaries, athleteSummary(&profiles[i]))
	}
	return summaries, total, nil
}

// GetAthlete returns the athlete with the assignments the actor can see.
// Trainers may only open athletes on their roster.
func (s *AthleteService) GetAthlete(ctx context.Context, actor Actor, athleteID string) (*models.AthleteDetail, error) {
	profile, err := s.profiles.GetByID(ctx, athleteID)
	if err != nil {
		return nil, classifyStoreError("load athlete", err)
	}
	if profile.Role != models.RoleAthlete {
		return nil, ErrNotFound
	}

	detail := &models.AthleteDetail{Athlete: athleteSummary(profile)}
	switch actor.Role {
	case models.RoleTrainer:
		status, err := s.roster.GetStatus(ctx, actor.ID, athleteID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrForbidden
			}
			return nil, classifyStoreError("load relationship", err)
		}
		detail.RelationshipStatus = status
	case models.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	detail.QuestionnaireAssignments, err = s.questionnaires.ListAthleteAssignments(ctx, actor, athleteID)
	if err != nil {
		return nil, err
	}
	detail.WorkoutAssignments, err = s.workouts.ListAthleteAssignments(ctx, actor, athleteID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func athleteSummary(profile *models.Profile) models.AthleteSummary {
	return models.AthleteSummary{
		ID:        profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
	}
}
