// Package outbox persists notification events in the same database as the
// business writes and delivers them from a background worker, so that a
// moderation decision commits regardless of whether its notification can
// be sent right now.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/repository"
)

type Service interface {
	Enqueue(ctx context.Context, eventType domain.EventType, payload interface{}) error
}

type service struct {
	repo repository.OutboxRepository
	log  *zap.Logger
}

func NewService(repo repository.OutboxRepository, log *zap.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) Enqueue(ctx context.Context, eventType domain.EventType, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:      uuid.New(),
		Type:    eventType,
		Payload: body,
		Status:  domain.OutboxPending,
	}
	return s.repo.Enqueue(ctx, event)
}

// Dispatcher consumes a due event. Implemented by the notification service.
type Dispatcher interface {
	Deliver(ctx context.Context, event domain.OutboxEvent) error
}

// Worker polls for due events and hands them to the dispatcher. Failed
// deliveries are rescheduled with exponential backoff until the attempt
// budget runs out, then parked as FAILED.
type Worker struct {
	repo         repository.OutboxRepository
	dispatcher   Dispatcher
	pollInterval time.Duration
	maxAttempts  int
	batchSize    int
	log          *zap.Logger
}

func NewWorker(repo repository.OutboxRepository, dispatcher Dispatcher, pollInterval time.Duration, maxAttempts int, log *zap.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Worker{
		repo:         repo,
		dispatcher:   dispatcher,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		batchSize:    50,
		log:          log,
	}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	events, err := w.repo.ListDue(ctx, w.batchSize)
	if err != nil {
		w.log.Error("failed to list due outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		w.process(ctx, event)
	}
}

func (w *Worker) process(ctx context.Context, event domain.OutboxEvent) {
	err := w.dispatcher.Deliver(ctx, event)
	if err == nil {
		if markErr := w.repo.MarkDelivered(ctx, event.ID); markErr != nil {
			w.log.Error("failed to mark outbox event delivered",
				zap.String("event_id", event.ID.String()), zap.Error(markErr))
		}
		return
	}

	attempts := event.Attempts + 1
	if attempts >= w.maxAttempts {
		w.log.Error("outbox event exhausted its attempts",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		if markErr := w.repo.MarkFailed(ctx, event.ID, err.Error(), nil); markErr != nil {
			w.log.Error("failed to park outbox event",
				zap.String("event_id", event.ID.String()), zap.Error(markErr))
		}
		return
	}

	next := time.Now().Add(w.retryDelay(attempts))
	w.log.Warn("outbox delivery failed, rescheduling",
		zap.String("event_id", event.ID.String()),
		zap.Int("attempt", attempts),
		zap.Time("next_attempt_at", next),
		zap.Error(err))
	if markErr := w.repo.MarkFailed(ctx, event.ID, err.Error(), &next); markErr != nil {
		w.log.Error("failed to reschedule outbox event",
			zap.String("event_id", event.ID.String()), zap.Error(markErr))
	}
}

// retryDelay walks an exponential schedule to the given attempt number.
func (w *Worker) retryDelay(attempt int) time.Duration {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.pollInterval
	policy.MaxInterval = 10 * time.Minute
	policy.RandomizationFactor = 0

	delay := policy.NextBackOff()
	for i := 1; i < attempt; i++ {
		delay = policy.NextBackOff()
	}
	return delay
}
