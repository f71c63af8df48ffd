package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestQuestionnaireLifecycleAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	tx := repository.NewPoolTxRunner(pool)
	profiles := repository.NewProfileRepository(pool)
	service := NewQuestionnaireService(pool, tx, profiles, NoopNotifier{}, "http://localhost:8080")

	trainer := createTestAccount(t, ctx, pool, models.RoleTrainer)
	athlete := createTestAccount(t, ctx, pool, models.RoleAthlete)
	t.Cleanup(func() { cleanupTestUsers(t, pool, trainer, athlete) })
	actor := Actor{ID: trainer, Role: models.RoleTrainer}
	if err := repository.NewTrainerAthleteRepository(pool).Add(ctx, trainer, athlete); err != nil {
		t.Fatalf("add athlete to roster: %v", err)
	}

	created, err := service.CreateQuestionnaire(ctx, actor, ContentPayload{Title: "Intake"}, []QuestionItem{
		{Text: "Goals?", Type: "long_text"},
		{Text: "Weight", Type: "number"},
		{Text: "Sleep", Type: "scale"},
	})
	if err != nil {
		t.Fatalf("CreateQuestionnaire: %v", err)
	}
	if len(created.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(created.Questions))
	}

	updated, err := service.UpdateQuestionnaire(ctx, actor, created.ID, ContentPayload{Title: "Intake v2"}, []QuestionItem{
		{Text: "Goals?", Type: "long_text"},
		{Text: "Weight", Type: "number"},
	})
	if err != nil {
		t.Fatalf("UpdateQuestionnaire: %v", err)
	}
	if len(updated.Questions) != 2 || updated.Questions[0].Order != 1 || updated.Questions[1].Order != 2 {
		t.Fatalf("unexpected questions after update: %+v", updated.Questions)
	}

	assignments, err := service.AssignQuestionnaire(ctx, actor, created.ID, AssignInput{AssigneeIDs: []string{athlete, athlete}})
	if err != nil {
		t.Fatalf("AssignQuestionnaire: %v", err)
	}
	if len(assignments) != 1 || assignments[0].Status != models.StatusPending {
		t.Fatalf("expected one pending assignment, got %+v", assignments)
	}

	answer := "Run a marathon"
	weight := 72.5
	result, err := service.SubmitResponses(ctx, Actor{ID: athlete, Role: models.RoleAthlete}, assignments[0].ID, []ResponseItem{
		{QuestionID: updated.Questions[0].ID, ResponseText: &answer},
		{QuestionID: updated.Questions[1].ID, ResponseNumber: &weight},
	})
	if err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	if len(result.Responses) != 2 || result.Assignment.Status != models.StatusCompleted {
		t.Fatalf("unexpected submit result %+v", result)
	}

	if _, err := service.UpdateAssignmentStatus(ctx, actor, assignments[0].ID, "in_progress"); err == nil {
		t.Fatalf("expected completed assignment to stay completed")
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func createTestAccount(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role models.Role) string {
	t.Helper()

	identity := NewIdentityService(
		repository.NewPoolTxRunner(pool),
		repository.NewUserRepository(pool),
		repository.NewSessionRepository(pool),
		"integration-secret",
		time.Hour,
	)
	profile, err := identity.Register(ctx, RegisterInput{
		Email:    fmt.Sprintf("%s-%s@fitzo.test", role, uuid.NewString()),
		Password: "integration-pass",
	})
	if err != nil {
		t.Fatalf("Register %s: %v", role, err)
	}
	if _, err := repository.NewProfileRepository(pool).UpdateRole(ctx, profile.ID, role); err != nil {
		t.Fatalf("UpdateRole %s: %v", role, err)
	}
	return profile.ID
}

func cleanupTestUsers(t *testing.T, pool *pgxpool.Pool, userIDs ...string) {
	t.Helper()

	for _, userID := range userIDs {
		if _, err := pool.Exec(context.Background(), `DELETE FROM auth_users WHERE id = $1`, userID); err != nil {
			t.Errorf("cleanup user %s: %v", userID, err)
		}
	}
}
