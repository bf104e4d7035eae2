package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fitloop/plancoach/internal/models"
	"github.com/fitloop/plancoach/internal/store"
)

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You must be logged in.",
		})
	}

	profile, err := s.profiles.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}
		s.logger.Error("Failed to fetch profile", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch profile",
		})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// handleUpsertProfile replaces the caller's profile wholesale. The owning
// user is taken from the token, never from the body.
func (s *Server) handleUpsertProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You must be logged in.",
		})
	}

	var profile models.UserProfile
	if err := c.BodyParser(&profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	profile.ID = userID

	if profile.FitnessLevel != nil && !models.ValidFitnessLevel(*profile.FitnessLevel) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fitness level must be beginner, intermediate, or advanced",
		})
	}

	stored, err := s.profiles.Upsert(c.Context(), profile)
	if err != nil {
		s.logger.Error("Failed to upsert profile", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save profile",
		})
	}

	s.logger.Info("Profile saved", "user_id", userID)
	return c.JSON(fiber.Map{"profile": stored})
}
