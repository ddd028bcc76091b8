package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"contract-exchange/internal/domain"
)

type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) Deliver(ctx context.Context, event domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
