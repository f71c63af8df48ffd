package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	testTrainerID    = "8a3c1b2e-58f4-4a8e-9f61-0a1f2b3c4d5e"
	testAthleteID    = "1f0e2d3c-4b5a-4697-8877-665544332211"
	testAdminID      = "c0ffee00-1234-4abc-8def-0123456789ab"
	testContentID    = "5b6c7d8e-9f00-4112-a233-445566778899"
	testAssignmentID = "9e8d7c6b-5a49-4382-b716-0f1e2d3c4b5a"
)

func newProfileApp(profile *models.Profile) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if profile != nil {
			c.Locals("profile", profile)
			c.Locals("user_id", profile.ID)
			c.Locals("role", profile.Role.String())
		}
		return c.Next()
	})
	return app
}

func trainerProfile() *models.Profile {
	return &models.Profile{ID: testTrainerID, Role: models.RoleTrainer, Name: "Tess", Email: "tess@fitzo.app"}
}

func athleteProfile() *models.Profile {
	return &models.Profile{ID: testAthleteID, Role: models.RoleAthlete, Name: "Alex", Email: "alex@fitzo.app"}
}

func adminProfile() *models.Profile {
	return &models.Profile{ID: testAdminID, Role: models.RoleAdmin, Name: "Ada", Email: "ada@fitzo.app"}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected %d, got %d: %s", want, resp.StatusCode, body)
	}
}
