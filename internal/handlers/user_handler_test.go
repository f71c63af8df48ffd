package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubUserService struct {
	users      []models.Profile
	total      int
	user       *models.Profile
	err        error
	lastFilter services.UserListFilter
	lastActor  services.Actor
	lastID     string
	lastRole   string
	roleCalls  int
}

func (s *stubUserService) ListUsers(_ context.Context, filter services.UserListFilter) ([]models.Profile, int, error) {
	s.lastFilter = filter
	return s.users, s.total, s.err
}

func (s *stubUserService) GetUser(_ context.Context, userID string) (*models.Profile, error) {
	s.lastID = userID
	return s.user, s.err
}

func (s *stubUserService) UpdateUserRole(_ context.Context, actor services.Actor, userID, rawRole string) (*models.Profile, error) {
	s.roleCalls++
	s.lastActor = actor
	s.lastID = userID
	s.lastRole = rawRole
	return s.user, s.err
}

func newUserApp(service *stubUserService) *fiber.App {
	handler := NewUserHandler(service)
	app := newProfileApp(adminProfile())
	app.Get("/users", handler.List)
	app.Get("/users/:id", handler.Get)
	app.Put("/users/:id/role", handler.UpdateRole)
	return app
}

func TestListUsersForwardsFilters(t *testing.T) {
	service := &stubUserService{users: []models.Profile{{ID: testTrainerID}}, total: 1}
	app := newUserApp(service)

	resp := doJSON(t, app, http.MethodGet, "/users?q=tess&role=trainer&page=2&limit=5", nil)
	expectStatus(t, resp, http.StatusOK)
	want := services.UserListFilter{Query: "tess", Role: "trainer", Offset: 5, Limit: 5}
	if service.lastFilter != want {
		t.Fatalf("expected %+v, got %+v", want, service.lastFilter)
	}

	var payload struct {
		Pagination models.PaginationMeta `json:"pagination"`
	}
	decodeBody(t, resp, &payload)
	if payload.Pagination.Total != 1 || payload.Pagination.TotalPages != 1 {
		t.Fatalf("unexpected pagination %+v", payload.Pagination)
	}
}

func TestListUsersUnknownRoleFilterIsBadRequest(t *testing.T) {
	app := newUserApp(&stubUserService{err: services.ErrInvalidInput})

	resp := doJSON(t, app, http.MethodGet, "/users?role=coach", nil)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestUpdateRoleNullClearsRole(t *testing.T) {
	service := &stubUserService{user: &models.Profile{ID: testTrainerID}}
	app := newUserApp(service)

	resp := doJSON(t, app, http.MethodPut, "/users/"+testTrainerID+"/role", fiber.Map{"role": nil})
	expectStatus(t, resp, http.StatusOK)
	if service.lastRole != "" || service.lastID != testTrainerID || service.lastActor.ID != testAdminID {
		t.Fatalf("unexpected forwarding %q %q %+v", service.lastRole, service.lastID, service.lastActor)
	}
}

func TestUpdateRoleForwardsRole(t *testing.T) {
	service := &stubUserService{user: &models.Profile{ID: testAthleteID, Role: models.RoleAthlete}}
	app := newUserApp(service)

	resp := doJSON(t, app, http.MethodPut, "/users/"+testAthleteID+"/role", fiber.Map{"role": "athlete"})
	expectStatus(t, resp, http.StatusOK)
	if service.lastRole != "athlete" {
		t.Fatalf("unexpected role %q", service.lastRole)
	}
}

func TestUpdateRoleRejectsMalformedID(t *testing.T) {
	service := &stubUserService{}
	app := newUserApp(service)

	resp := doJSON(t, app, http.MethodPut, "/users/42/role", fiber.Map{"role": "admin"})
	expectStatus(t, resp, http.StatusBadRequest)
	if service.roleCalls != 0 {
		t.Fatalf("service must not be called for a malformed id")
	}
}
