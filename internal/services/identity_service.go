package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/AbelSturm/fitzoapp/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
)

type authUserStore interface {
	CreateUser(ctx context.Context, user *models.AuthUser) error
	GetByEmail(ctx context.Context, email string) (*models.AuthUser, error)
}

type sessionStore interface {
	Create(ctx context.Context, input repository.CreateSessionInput) (*models.Session, error)
	GetActive(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type profileWriter interface {
	Create(ctx context.Context, input repository.CreateProfileInput) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.Profile, error)
}

type identityStores struct {
	users    authUserStore
	profiles profileWriter
}

func newIdentityStores(db repository.DBTX) identityStores {
	return identityStores{
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
	}
}

// IdentityService issues and resolves login sessions. The client holds a
// signed token naming a row in auth_sessions; deleting the row revokes it.
type IdentityService struct {
	tx        repository.TxRunner
	stores    func(db repository.DBTX) identityStores
	users     authUserStore
	sessions  sessionStore
	jwtSecret string
	ttl       time.Duration
	now       func() time.Time
}

func NewIdentityService(
	tx repository.TxRunner,
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	jwtSecret string,
	ttl time.Duration,
) *IdentityService {
	return &IdentityService{
		tx:        tx,
		stores:    newIdentityStores,
		users:     userRepo,
		sessions:  sessionRepo,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginResult struct {
	Token   string          `json:"-"`
	Session *models.Session `json:"session"`
}

// Register creates the auth user and a profile with no role. An admin has to
// assign a role before the account reaches any dashboard.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrInvalidInput)
	}
	name := strings.TrimSpace(input.Name)
	if len(name) > maxNameLength {
		return nil, ErrInvalidInput
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	return s.createAccount(ctx, email, input.Password, name, "")
}

func (s *IdentityService) createAccount(ctx context.Context, email, password, name string, role models.Role) (*models.Profile, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var profile *models.Profile
	err = s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		stores := s.stores(db)
		user := &models.AuthUser{Email: email, PasswordHash: hashed}
		if err := stores.users.CreateUser(ctx, user); err != nil {
			return classifyStoreError("create user", err)
		}
		created, err := stores.profiles.Create(ctx, repository.CreateProfileInput{
			ID:    user.ID,
			Name:  name,
			Email: email,
			Role:  role,
		})
		if err != nil {
			return classifyStoreError("create profile", err)
		}
		profile = created
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("register", err)
	}
	return profile, nil
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, classifyStoreError("lookup user", err)
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session, err := s.sessions.Create(ctx, repository.CreateSessionInput{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return nil, classifyStoreError("create session", err)
	}

	token, err := utils.GenerateToken(user.ID, session.ID, s.jwtSecret, s.ttl, now)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &LoginResult{Token: token, Session: session}, nil
}

// GetSession resolves a token to its live session. Any token problem and any
// missing or expired row report ErrUnauthenticated.
func (s *IdentityService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := utils.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	session, err := s.sessions.GetActive(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, classifyStoreError("load session", err)
	}
	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return nil, ErrUnauthenticated
	}
	return session, nil
}

// SignOut deletes the session row. Signing out a missing session succeeds.
func (s *IdentityService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return classifyStoreError("sign out", err)
	}
	return nil
}

// SignOutUser revokes every session the user holds.
func (s *IdentityService) SignOutUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, classifyStoreError("sign out user", err)
	}
	return count, nil
}

func (s *IdentityService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, classifyStoreError("purge sessions", err)
	}
	return count, nil
}

// EnsureAdmin makes sure an admin account exists for email. An existing
// account keeps its password and is promoted.
func (s *IdentityService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if errors.Is(err, pgx.ErrNoRows) {
		if len(password) < minPasswordLength {
			return fmt.Errorf("default admin password must be at least %d characters: %w", minPasswordLength, ErrInvalidInput)
		}
		if _, err := s.createAccount(ctx, normalized, password, "Admin", models.RoleAdmin); err != nil {
			return err
		}
		log.Printf("Created default admin %s", normalized)
		return nil
	}
	if err != nil {
		return classifyStoreError("lookup admin", err)
	}

	return s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		profiles := s.stores(db).profiles
		profile, err := profiles.GetByID(ctx, user.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			_, err = profiles.Create(ctx, repository.CreateProfileInput{
				ID:    user.ID,
				Name:  "Admin",
				Email: normalized,
				Role:  models.RoleAdmin,
			})
			return classifyStoreError("create admin profile", err)
		}
		if err != nil {
			return classifyStoreError("load admin profile", err)
		}
		if profile.Role == models.RoleAdmin {
			return nil
		}
		if _, err := profiles.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return classifyStoreError("promote admin", err)
		}
		log.Printf("Promoted %s to admin", normalized)
		return nil
	})
}

func normalizeEmail(raw string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid email format: %w", ErrInvalidInput)
	}
	return strings.ToLower(parsed.Address), nil
}
