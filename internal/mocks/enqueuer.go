package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"contract-exchange/internal/domain"
)

type Enqueuer struct {
	mock.Mock
}

func (m *Enqueuer) Enqueue(ctx context.Context, eventType domain.EventType, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}
