package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Outcome string

const (
	OutcomeAllow              Outcome = "allow"
	OutcomeUnauthenticated    Outcome = "unauthenticated"
	OutcomeProfileUnavailable Outcome = "profile_unavailable"
	OutcomeRoleUnassigned     Outcome = "role_unassigned"
)

type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// Decision is the result of one gate evaluation. Session and Profile are set
// as far as evaluation got.
type Decision struct {
	Outcome    Outcome
	Session    *models.Session
	Profile    *models.Profile
	RedirectTo string
	Err        error
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Gate decides whether a visitor may enter the dashboard.
type Gate struct {
	identity     SessionResolver
	profiles     ProfileLookup
	cookieSecure bool
}

func NewGate(identity SessionResolver, profiles ProfileLookup, cookieSecure bool) *Gate {
	return &Gate{
		identity:     identity,
		profiles:     profiles,
		cookieSecure: cookieSecure,
	}
}

// Evaluate runs session, profile and role checks in order, once, without
// retries. Any denial after a session was found signs that session out.
func (g *Gate) Evaluate(ctx context.Context, token string) Decision {
	session, err := g.identity.GetSession(ctx, token)
	if err != nil || session == nil {
		return Decision{Outcome: OutcomeUnauthenticated, RedirectTo: LoginPath, Err: err}
	}

	decision := g.checkProfile(ctx, session)
	if !decision.Allowed() {
		if err := g.identity.SignOut(ctx, session.ID); err != nil {
			log.Printf("gate: sign out session %s: %v", session.ID, err)
		}
	}
	return decision
}

func (g *Gate) checkProfile(ctx context.Context, session *models.Session) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			decision = Decision{
				Outcome:    OutcomeProfileUnavailable,
				Session:    session,
				RedirectTo: LoginPath,
				Err:        fmt.Errorf("profile check panicked: %v", r),
			}
		}
	}()

	profile, err := g.profiles.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("no profile for user %s", session.UserID)
		}
		return Decision{Outcome: OutcomeProfileUnavailable, Session: session, RedirectTo: LoginPath, Err: err}
	}
	if profile == nil {
		return Decision{
			Outcome:    OutcomeProfileUnavailable,
			Session:    session,
			RedirectTo: LoginPath,
			Err:        fmt.Errorf("no profile for user %s", session.UserID),
		}
	}
	if !profile.HasRole() {
		return Decision{Outcome: OutcomeRoleUnassigned, Session: session, Profile: profile, RedirectTo: HomePath}
	}
	return Decision{Outcome: OutcomeAllow, Session: session, Profile: profile}
}

// Handler applies the gate to every request under the group it is mounted
// on.
func (g *Gate) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		decision := g.Evaluate(c.Context(), token)
		logDecision(c.Path(), decision)

		if !decision.Allowed() {
			if token != "" {
				ClearSessionCookie(c, g.cookieSecure)
			}
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.Redirect(decision.RedirectTo, fiber.StatusSeeOther)
		}

		c.Locals("session", decision.Session)
		c.Locals("profile", decision.Profile)
		c.Locals("user_id", decision.Profile.ID)
		c.Locals("role", decision.Profile.Role.String())
		return c.Next()
	}
}

func logDecision(path string, decision Decision) {
	userID := ""
	if decision.Session != nil {
		userID = decision.Session.UserID
	}
	switch {
	case decision.Allowed():
		log.Printf("gate: outcome=%s path=%s user=%s role=%s", decision.Outcome, path, userID, decision.Profile.Role)
	case decision.Err != nil && decision.Outcome != OutcomeUnauthenticated:
		log.Printf("gate: outcome=%s path=%s user=%s err=%v", decision.Outcome, path, userID, decision.Err)
	default:
		log.Printf("gate: outcome=%s path=%s user=%s", decision.Outcome, path, userID)
	}
}
