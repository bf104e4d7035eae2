package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/fitloop/plancoach/internal/config"
	"github.com/fitloop/plancoach/internal/models"
	"github.com/fitloop/plancoach/pkg/database"
)

// Worker consumes plan.saved events and folds them into per-user stats in
// Redis. The stats are advisory: the plan history in Postgres stays the
// source of truth.
type Worker struct {
	cfg      *config.Config
	db       *database.Clients
	consumer sarama.ConsumerGroup
	ready    chan bool
}

func NewWorker(cfg *config.Config, db *database.Clients, consumer sarama.ConsumerGroup) *Worker {
	return &Worker{
		cfg:      cfg,
		db:       db,
		consumer: consumer,
		ready:    make(chan bool),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting stats worker", "topics", topics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for err := range w.consumer.Errors() {
			slog.Error("Kafka consumer error received", "error", err)
		}
	}()

	go func() {
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				slog.Error("Error from consumer.Consume", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			// Reset the ready channel after a new session is created
			w.ready = make(chan bool)
		}
	}()

	<-w.ready // Wait till the consumer has been set up
	slog.Info("Worker setup complete; consumer ready")

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled; shutting down worker")
	}

	slog.Info("Worker shutting down gracefully")
	return nil
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	close(w.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := w.processEvent(message.Value); err != nil {
			slog.Error("Failed to process plan event", "offset", message.Offset, "error", err)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (w *Worker) processEvent(value []byte) error {
	var event models.PlanSavedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to parse plan event: %w", err)
	}
	if event.UserID == "" {
		return fmt.Errorf("plan event has no user ID")
	}

	ctx := context.Background()
	countKey := fmt.Sprintf("stats:%s:plans", event.UserID)
	if err := w.db.Redis.Incr(ctx, countKey).Err(); err != nil {
		return fmt.Errorf("failed to update plan count: %w", err)
	}

	lastSavedKey := fmt.Sprintf("stats:%s:last_saved", event.UserID)
	if err := w.db.Redis.Set(ctx, lastSavedKey, event.CreatedAt.Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("failed to update last-saved timestamp: %w", err)
	}

	slog.Info("Plan stats updated", "user_id", event.UserID, "plan_id", event.PlanID)
	return nil
}
