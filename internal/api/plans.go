package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/fitloop/plancoach/internal/models"
	"github.com/fitloop/plancoach/internal/planner"
	"github.com/fitloop/plancoach/internal/store"
)

// handleGeneratePlan handles POST /api/plans/generate. One generation runs
// per user at a time; the plan it returns is transient until the caller
// explicitly saves it.
func (s *Server) handleGeneratePlan(c *fiber.Ctx) error {
	ctx := c.Context()

	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You must be logged in to create a plan.",
		})
	}

	var req models.GeneratePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Re-entry gate: reject overlapping generation requests from the same
	// user instead of queueing them.
	lockKey := fmt.Sprintf("generate:%s", userID)
	locked, err := s.db.Redis.SetNX(ctx, lockKey, "1", s.cfg.Planner.InFlightTTL).Result()
	if err != nil {
		s.logger.Error("Failed to acquire generation lock", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start plan generation",
		})
	}
	if !locked {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A plan generation is already in progress.",
		})
	}
	defer s.db.Redis.Del(ctx, lockKey)

	profile, err := s.resolveProfile(c, userID, req.UserProfile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	planData, err := s.planner.GeneratePlan(ctx, profile, req.UserPrompt)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrPrecondition):
			s.logger.Info("Plan generation rejected", "user_id", userID, "error", err)
		case errors.Is(err, planner.ErrCompletionTimeout):
			s.logger.Error("Plan generation timed out", "user_id", userID)
		default:
			s.logger.Error("Plan generation failed", "user_id", userID, "error", err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Type("json").Send(planData)
}

func (s *Server) resolveProfile(c *fiber.Ctx, userID string, supplied *models.UserProfile) (models.UserProfile, error) {
	if supplied != nil {
		profile := *supplied
		profile.ID = userID
		return profile, nil
	}

	profile, err := s.profiles.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return models.UserProfile{}, errors.New("Could not fetch your profile. Please complete it before generating a plan.")
		}
		return models.UserProfile{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}

// handleSavePlan handles POST /api/plans. Saving is insert-only: the same
// plan saved twice yields two records with distinct identities.
func (s *Server) handleSavePlan(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You must be logged in to save a plan.",
		})
	}

	var req models.SavePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.PlanData) == 0 || !gjson.ValidBytes(req.PlanData) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Plan data is required",
		})
	}

	plan, err := s.plans.Insert(c.Context(), userID, req.UserPrompt, req.PlanData)
	if err != nil {
		s.logger.Error("Failed to save workout plan", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save the plan.",
		})
	}

	s.publishPlanSaved(plan)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

// publishPlanSaved emits a plan.saved event for the stats worker. The save
// already succeeded, so a publish failure is logged, not surfaced.
func (s *Server) publishPlanSaved(plan models.WorkoutPlan) {
	event := models.PlanSavedEvent{
		PlanID:    plan.ID,
		UserID:    plan.UserID,
		CreatedAt: plan.CreatedAt,
	}
	eventBytes, _ := json.Marshal(event)
	msg := &sarama.ProducerMessage{
		Topic: s.cfg.Kafka.Topic,
		Value: sarama.StringEncoder(eventBytes),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.logger.Error("Failed to publish plan.saved event", "plan_id", plan.ID, "error", err)
	}
}

// handleListPlans handles GET /api/plans: the caller's saved plans, newest
// first, plus the per-user stats the worker maintains when present.
func (s *Server) handleListPlans(c *fiber.Ctx) error {
	ctx := c.Context()

	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You must be logged in.",
		})
	}

	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch workout plans", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch plans",
		})
	}

	resp := fiber.Map{"plans": plans}
	if count, err := s.db.Redis.Get(ctx, fmt.Sprintf("stats:%s:plans", userID)).Int(); err == nil {
		stats := models.PlanStats{SavedPlans: count}
		if last, err := s.db.Redis.Get(ctx, fmt.Sprintf("stats:%s:last_saved", userID)).Result(); err == nil {
			stats.LastSaved = last
		}
		resp["stats"] = stats
	}

	return c.JSON(resp)
}
