package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contract-exchange/internal/domain"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, event *domain.OutboxEvent) error
	// ListDue returns pending events whose next attempt is due, oldest
	// first. The statement-scoped SKIP LOCKED only shields overlapping
	// polls, not the window up to MarkDelivered; the process runs a
	// single worker, and a duplicate delivery is acceptable.
	ListDue(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextAttemptAt *time.Time) error
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, event *domain.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, type, payload, status, next_attempt_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		event.ID, event.Type, event.Payload, event.Status,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
}

func (r *outboxRepository) ListDue(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	var events []domain.OutboxEvent
	query := `
		SELECT * FROM outbox_events
		WHERE status = 'PENDING' AND next_attempt_at <= NOW()
		ORDER BY next_attempt_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	err := r.db.SelectContext(ctx, &events, query, limit)
	return events, err
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = 'DELIVERED', attempts = attempts + 1, last_error = NULL, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// MarkFailed records a delivery failure. A nil nextAttemptAt means the
// attempt budget is exhausted and the event moves to FAILED terminally.
func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextAttemptAt *time.Time) error {
	if nextAttemptAt == nil {
		query := `
			UPDATE outbox_events
			SET status = 'FAILED', attempts = attempts + 1, last_error = $2, updated_at = NOW()
			WHERE id = $1`
		_, err := r.db.ExecContext(ctx, query, id, lastError)
		return err
	}

	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1, last_error = $2, next_attempt_at = $3, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, lastError, *nextAttemptAt)
	return err
}
