package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"contract-exchange/internal/domain"
)

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Enqueue(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *OutboxRepository) ListDue(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxEvent), args.Error(1)
}

func (m *OutboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextAttemptAt *time.Time) error {
	args := m.Called(ctx, id, lastError, nextAttemptAt)
	return args.Error(0)
}
