package handlers

import (
	"context"
	"io"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
)

type profileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateName(ctx context.Context, userID, name string) (*models.Profile, error)
	UpdateLocale(ctx context.Context, userID, locale string) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID string, content []byte) (*models.Profile, error)
}

type trainerLister interface {
	ListAthleteTrainers(ctx context.Context, athleteID string) ([]models.RosterEntry, error)
}

type ProfileHandler struct {
	profiles profileService
	trainers trainerLister
}

func NewProfileHandler(profiles profileService, trainers trainerLister) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, trainers: trainers}
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

type updateSettingsRequest struct {
	Locale string `json:"locale"`
}

// GetProfile returns the caller's profile. Athletes also get the trainers
// they are linked to.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.profiles.GetProfile(c.Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}

	body := fiber.Map{"profile": profile}
	if actor.Role == models.RoleAthlete && h.trainers != nil {
		trainers, err := h.trainers.ListAthleteTrainers(c.Context(), actor.ID)
		if err != nil {
			return respondError(c, err)
		}
		if trainers == nil {
			trainers = []models.RosterEntry{}
		}
		body["trainers"] = trainers
	}
	return c.JSON(body)
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateProfileName(req.Name); validationErr != "" {
		return badRequest(c, validationErr)
	}

	profile, err := h.profiles.UpdateName(c.Context(), actor.ID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// UploadAvatar expects a multipart form with the image in the "avatar" field.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return badRequest(c, "avatar is required")
	}
	if fileHeader.Size <= 0 {
		return badRequest(c, "avatar is empty")
	}
	if fileHeader.Size > services.MaxAvatarBytes {
		return badRequest(c, "avatar exceeds 2MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarBytes+1))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to read file"})
	}

	profile, err := h.profiles.UploadAvatar(c.Context(), actor.ID, content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) GetSettings(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.profiles.GetProfile(c.Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"locale":            profile.Locale,
		"supported_locales": models.SupportedLocales,
	})
}

func (h *ProfileHandler) UpdateSettings(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := h.profiles.UpdateLocale(c.Context(), actor.ID, req.Locale)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"locale":            profile.Locale,
		"supported_locales": models.SupportedLocales,
	})
}
