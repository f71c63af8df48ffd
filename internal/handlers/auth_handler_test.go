package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/middleware"
	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubIdentityService struct {
	profile       *models.Profile
	registerErr   error
	login         *services.LoginResult
	loginErr      error
	session       *models.Session
	sessionErr    error
	signedOut     []string
	lastRegister  services.RegisterInput
	lastEmail     string
	lastPassword  string
	lastToken     string
	sessionLookup int
}

func (s *stubIdentityService) Register(_ context.Context, input services.RegisterInput) (*models.Profile, error) {
	s.lastRegister = input
	return s.profile, s.registerErr
}

func (s *stubIdentityService) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	s.lastEmail = email
	s.lastPassword = password
	return s.login, s.loginErr
}

func (s *stubIdentityService) GetSession(_ context.Context, token string) (*models.Session, error) {
	s.sessionLookup++
	s.lastToken = token
	return s.session, s.sessionErr
}

func (s *stubIdentityService) SignOut(_ context.Context, sessionID string) error {
	s.signedOut = append(s.signedOut, sessionID)
	return nil
}

func newAuthApp(identity *stubIdentityService) *fiber.App {
	handler := NewAuthHandler(identity, true)
	app := fiber.New()
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/logout", handler.Logout)
	return app
}

func TestRegisterReturnsProfileWithoutRole(t *testing.T) {
	identity := &stubIdentityService{profile: &models.Profile{ID: testAthleteID, Email: "alex@fitzo.app"}}
	app := newAuthApp(identity)

	resp := doJSON(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"email":    "alex@fitzo.app",
		"password": "long-enough",
		"name":     "Alex",
	})
	expectStatus(t, resp, http.StatusCreated)
	if identity.lastRegister.Name != "Alex" || identity.lastRegister.Password != "long-enough" {
		t.Fatalf("unexpected register input %+v", identity.lastRegister)
	}

	var payload struct {
		Profile models.Profile `json:"profile"`
	}
	decodeBody(t, resp, &payload)
	if payload.Profile.Role != "" {
		t.Fatalf("new accounts must not have a role, got %q", payload.Profile.Role)
	}
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	app := newAuthApp(&stubIdentityService{registerErr: fmt.Errorf("create user: %w", services.ErrConflict)})

	resp := doJSON(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"email":    "alex@fitzo.app",
		"password": "long-enough",
	})
	expectStatus(t, resp, http.StatusConflict)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	expires := time.Date(2026, time.November, 1, 12, 0, 0, 0, time.UTC)
	identity := &stubIdentityService{login: &services.LoginResult{
		Token:   "signed-token",
		Session: &models.Session{ID: "sess-1", UserID: testTrainerID, ExpiresAt: expires},
	}}
	app := newAuthApp(identity)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "tess@fitzo.app",
		"password": "long-enough",
	})
	expectStatus(t, resp, http.StatusOK)

	cookie := resp.Header.Get("Set-Cookie")
	for _, want := range []string{middleware.SessionCookieName + "=signed-token", "HttpOnly", "secure", "SameSite=Lax"} {
		if !strings.Contains(cookie, want) {
			t.Fatalf("expected %q in cookie %q", want, cookie)
		}
	}
	if identity.lastEmail != "tess@fitzo.app" {
		t.Fatalf("unexpected email %q", identity.lastEmail)
	}
}

func TestLoginInvalidCredentialsIsUnauthorized(t *testing.T) {
	app := newAuthApp(&stubIdentityService{loginErr: services.ErrInvalidCredentials})

	resp := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "tess@fitzo.app",
		"password": "wrong",
	})
	expectStatus(t, resp, http.StatusUnauthorized)
	if resp.Header.Get("Set-Cookie") != "" {
		t.Fatalf("failed logins must not set a cookie")
	}
}

func TestLogoutSignsOutAndRedirects(t *testing.T) {
	identity := &stubIdentityService{session: &models.Session{ID: "sess-1"}}
	app := newAuthApp(identity)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "signed-token"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	expectStatus(t, resp, http.StatusSeeOther)
	if resp.Header.Get("Location") != middleware.LoginPath {
		t.Fatalf("unexpected redirect %q", resp.Header.Get("Location"))
	}
	if identity.lastToken != "signed-token" || len(identity.signedOut) != 1 || identity.signedOut[0] != "sess-1" {
		t.Fatalf("unexpected sign out %q %v", identity.lastToken, identity.signedOut)
	}
}

func TestLogoutWithoutSessionStillClearsCookie(t *testing.T) {
	identity := &stubIdentityService{sessionErr: errors.New("expired")}
	app := newAuthApp(identity)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "stale"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	expectStatus(t, resp, http.StatusSeeOther)
	if len(identity.signedOut) != 0 {
		t.Fatalf("nothing to sign out, got %v", identity.signedOut)
	}
	if !strings.Contains(resp.Header.Get("Set-Cookie"), middleware.SessionCookieName+"=") {
		t.Fatalf("expected cookie to be cleared")
	}

	resp = doJSON(t, app, http.MethodPost, "/auth/logout", nil)
	expectStatus(t, resp, http.StatusSeeOther)
	if identity.sessionLookup != 1 {
		t.Fatalf("logout without a token must not look up a session")
	}
}
