package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fitloop/plancoach/internal/config"
	"github.com/fitloop/plancoach/internal/models"
)

// CatalogSource supplies the authoritative exercise list.
type CatalogSource interface {
	List(ctx context.Context) ([]models.Exercise, error)
}

// Service runs the generation pipeline: fetch catalog, compose the prompt,
// call the completion API, validate the response. The catalog read and the
// completion call are sequential because the prompt is constrained by the
// catalog.
type Service struct {
	client   CompletionClient
	catalog  CatalogSource
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

func NewService(client CompletionClient, catalog CatalogSource, cfg config.PlannerConfig, logger *slog.Logger) *Service {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Service{
		client:   client,
		catalog:  catalog,
		logger:   logger,
		attempts: attempts,
		backoff:  cfg.RetryBackoff,
		timeout:  cfg.CompletionTimeout,
	}
}

// GeneratePlan produces plan data for the given profile and free-text
// request. Upstream failures, malformed responses, and catalog violations
// are retried up to the configured attempt bound; precondition failures and
// timeouts are terminal immediately. No partial plans are ever returned.
func (s *Service) GeneratePlan(ctx context.Context, profile models.UserProfile, userPrompt string) (json.RawMessage, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, failf(ErrPrecondition, "Please enter a prompt.")
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, failf(ErrPrecondition, "failed to fetch exercises: %v", err)
	}

	prompt, err := Compose(profile, userPrompt, catalog)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(s.backoff)
		}

		raw, err := s.complete(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrCompletionTimeout) {
				return nil, err
			}
			s.logger.Error("completion call failed", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		planData, err := ValidatePlanData(raw, catalog)
		if err != nil {
			// Keep the offending text around for diagnosis.
			s.logger.Error("completion response rejected", "attempt", attempt, "error", err, "raw", raw)
			lastErr = err
			continue
		}

		s.logger.Info("workout plan generated", "user_id", profile.ID, "attempts", attempt)
		return planData, nil
	}

	return nil, lastErr
}

func (s *Service) complete(ctx context.Context, prompt Prompt) (string, error) {
	cctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.client.Complete(cctx, prompt.System, prompt.User)
}
