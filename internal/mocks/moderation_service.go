package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/service/moderation"
)

type ModerationService struct {
	mock.Mock
}

func (m *ModerationService) Approve(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) Reject(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) Hide(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) (*domain.Listing, error) {
	args := m.Called(ctx, actor, listingID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ModerationService) Delete(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) error {
	args := m.Called(ctx, actor, listingID, note)
	return args.Error(0)
}

func (m *ModerationService) ApplyApprovedChange(ctx context.Context, req *domain.ChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *ModerationService) ApplyApprovedDeletion(ctx context.Context, req *domain.ChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *ModerationService) SetAttachmentCleaner(cleaner moderation.AttachmentCleaner) {
	m.Called(cleaner)
}
