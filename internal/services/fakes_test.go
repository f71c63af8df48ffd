package services

import (
	"context"
	"sync"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var testTime = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

const (
	trainerID      = "10000000-0000-0000-0000-000000000001"
	otherTrainerID = "10000000-0000-0000-0000-000000000002"
	adminID        = "10000000-0000-0000-0000-000000000003"
	athleteA       = "20000000-0000-0000-0000-00000000000a"
	athleteB       = "20000000-0000-0000-0000-00000000000b"
	athleteC       = "20000000-0000-0000-0000-00000000000c"
)

var (
	trainerActor = Actor{ID: trainerID, Role: models.RoleTrainer}
	otherTrainer = Actor{ID: otherTrainerID, Role: models.RoleTrainer}
	adminActor   = Actor{ID: adminID, Role: models.RoleAdmin}
	athleteActor = Actor{ID: athleteA, Role: models.RoleAthlete}
)

// stubTx runs fn directly. Stores are built by the service's factory, which
// the tests replace with in-memory fakes that ignore the db handle.
type stubTx struct {
	calls int
	err   error
}

func (t *stubTx) RunInTx(_ context.Context, fn func(db repository.DBTX) error) error {
	t.calls++
	if t.err != nil {
		return t.err
	}
	return fn(nil)
}

type stubUsers struct {
	byEmail   map[string]*models.AuthUser
	createErr error
	nextID    string
}

func (s *stubUsers) CreateUser(_ context.Context, user *models.AuthUser) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	user.ID = s.nextID
	user.CreatedAt = testTime
	s.byEmail[user.Email] = user
	return nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*models.AuthUser, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

type stubSessions struct {
	mu        sync.Mutex
	rows      map[string]*models.Session
	deletes   int
	deleteErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{rows: map[string]*models.Session{}}
}

func (s *stubSessions) Create(_ context.Context, input repository.CreateSessionInput) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := &models.Session{ID: input.ID, UserID: input.UserID, CreatedAt: testTime, ExpiresAt: input.ExpiresAt}
	s.rows[input.ID] = session
	return session, nil
}

func (s *stubSessions) GetActive(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.rows[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return session, nil
}

func (s *stubSessions) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, sessionID)
	return nil
}

func (s *stubSessions) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, session := range s.rows {
		if session.UserID == userID {
			delete(s.rows, id)
			count++
		}
	}
	return count, nil
}

func (s *stubSessions) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type stubProfiles struct {
	byID       map[string]*models.Profile
	getErr     error
	listResult []models.Profile
	listTotal  int
	lastFilter repository.ProfileListFilter
	lastUpdate repository.UpdateProfileInput
}

func newStubProfiles(profiles ...models.Profile) *stubProfiles {
	s := &stubProfiles{byID: map[string]*models.Profile{}}
	for i := range profiles {
		profile := profiles[i]
		s.byID[profile.ID] = &profile
	}
	return s
}

func (s *stubProfiles) Create(_ context.Context, input repository.CreateProfileInput) (*models.Profile, error) {
	profile := &models.Profile{
		ID:     input.ID,
		Name:   input.Name,
		Email:  input.Email,
		Role:   input.Role,
		Locale: models.DefaultLocale,
	}
	s.byID[input.ID] = profile
	return profile, nil
}

func (s *stubProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	profile, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (s *stubProfiles) GetByEmailAndRole(_ context.Context, email string, role models.Role) (*models.Profile, error) {
	for _, profile := range s.byID {
		if profile.Email == email && profile.Role == role {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubProfiles) UpdateRole(_ context.Context, id string, role models.Role) (*models.Profile, error) {
	profile, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	profile.Role = role
	copied := *profile
	return &copied, nil
}

func (s *stubProfiles) UpdatePartial(_ context.Context, id string, input repository.UpdateProfileInput) (*models.Profile, error) {
	s.lastUpdate = input
	profile, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if input.Name != nil {
		profile.Name = *input.Name
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = input.AvatarURL
	}
	if input.Locale != nil {
		profile.Locale = *input.Locale
	}
	copied := *profile
	return &copied, nil
}

func (s *stubProfiles) List(_ context.Context, filter repository.ProfileListFilter) ([]models.Profile, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, nil
}

func athleteProfile(id, email string) models.Profile {
	return models.Profile{ID: id, Role: models.RoleAthlete, Name: "Athlete " + id[len(id)-1:], Email: email, Locale: "en"}
}

type sentNotice struct {
	notice AssignmentNotice
}

type stubNotifier struct {
	sent []sentNotice
	err  error
}

func (n *stubNotifier) NotifyAssignment(_ context.Context, notice AssignmentNotice) error {
	n.sent = append(n.sent, sentNotice{notice: notice})
	return n.err
}
