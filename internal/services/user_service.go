package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
)

type roleStores struct {
	profiles profileWriter
	sessions sessionStore
}

func newRoleStores(db repository.DBTX) roleStores {
	return roleStores{
		profiles: repository.NewProfileRepository(db),
		sessions: repository.NewSessionRepository(db),
	}
}

// UserService backs the admin user pages.
type UserService struct {
	tx       repository.TxRunner
	stores   func(db repository.DBTX) roleStores
	profiles profileDirectory
}

func NewUserService(tx repository.TxRunner, profiles *repository.ProfileRepository) *UserService {
	return &UserService{
		tx:       tx,
		stores:   newRoleStores,
		profiles: profiles,
	}
}

type UserListFilter struct {
	Query  string
	Role   string
	Offset int
	Limit  int
}

func (s *UserService) ListUsers(ctx context.Context, filter UserListFilter) ([]models.Profile, int, error) {
	var role models.Role
	if strings.TrimSpace(filter.Role) != "" {
		parsed, ok := models.ParseRole(filter.Role)
		if !ok {
			return nil, 0, fmt.Errorf("role %q: %w", filter.Role, ErrInvalidInput)
		}
		role = parsed
	}

	profiles, total, err := s.profiles.List(ctx, repository.ProfileListFilter{
		Search: filter.Query,
		Role:   role,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, classifyStoreError("list users", err)
	}
	return profiles, total, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, classifyStoreError("load user", err)
	}
	return profile, nil
}

// UpdateUserRole sets or clears a role and revokes the user's sessions so
// their next request goes through the gate again. An empty role clears it.
func (s *UserService) UpdateUserRole(ctx context.Context, actor Actor, userID, rawRole string) (*models.Profile, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var role models.Role
	if strings.TrimSpace(rawRole) != "" {
		parsed, ok := models.ParseRole(rawRole)
		if !ok {
			return nil, fmt.Errorf("role %q: %w", rawRole, ErrInvalidInput)
		}
		role = parsed
	}
	if userID == actor.ID && role == "" {
		return nil, fmt.Errorf("admins cannot clear their own role: %w", ErrInvalidInput)
	}

	var updated *models.Profile
	var revoked int64
	err := s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		stores := s.stores(db)
		profile, err := stores.profiles.UpdateRole(ctx, userID, role)
		if err != nil {
			return classifyStoreError("update role", err)
		}
		count, err := stores.sessions.DeleteByUserID(ctx, userID)
		if err != nil {
			return classifyStoreError("revoke sessions", err)
		}
		updated = profile
		revoked = count
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("update user role", err)
	}

	log.Printf("Admin %s set role of %s to %q, revoked %d sessions", actor.ID, userID, role, revoked)
	return updated, nil
}
