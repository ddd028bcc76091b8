package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"contract-exchange/internal/domain"
)

type ListingRepository struct {
	mock.Mock
}

func (m *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *ListingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, approvedBy *uuid.UUID, approvedAt *time.Time, expectedVersion int64) error {
	args := m.Called(ctx, id, status, approvedBy, approvedAt, expectedVersion)
	return args.Error(0)
}

func (m *ListingRepository) UpdateFields(ctx context.Context, listing *domain.Listing, expectedVersion int64) error {
	args := m.Called(ctx, listing, expectedVersion)
	return args.Error(0)
}

func (m *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ListingRepository) List(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]domain.Listing, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *ListingRepository) CountByStatus(ctx context.Context, status domain.ListingStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ListingRepository) GetLastActivityAt(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
