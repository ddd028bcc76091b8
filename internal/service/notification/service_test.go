package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/mocks"
	"contract-exchange/internal/service/notification"
)

type dispatcherMocks struct {
	notifRepo *mocks.NotificationRepository
	userRepo  *mocks.UserRepository
	email     *mocks.EmailService
}

func newDispatcher() (notification.Service, dispatcherMocks) {
	m := dispatcherMocks{
		notifRepo: new(mocks.NotificationRepository),
		userRepo:  new(mocks.UserRepository),
		email:     new(mocks.EmailService),
	}
	svc := notification.NewService(m.notifRepo, m.userRepo, m.email, zap.NewNop())
	return svc, m
}

func moderatedEvent(t *testing.T, payload domain.ListingEventPayload) domain.OutboxEvent {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return domain.OutboxEvent{
		ID:      uuid.New(),
		Type:    domain.EventListingModerated,
		Payload: body,
	}
}

func TestNotificationService_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("Submitted listing fans out to every admin", func(t *testing.T) {
		svc, m := newDispatcher()
		owner := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		admins := []domain.User{
			{ID: uuid.New(), FullName: "Admin One", Email: "one@example.com"},
			{ID: uuid.New(), FullName: "Admin Two", Email: "two@example.com"},
		}

		payload, _ := json.Marshal(domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: owner.ID, Title: "DOE Phase II contract", Status: domain.ListingPending,
		})
		event := domain.OutboxEvent{ID: uuid.New(), Type: domain.EventListingSubmitted, Payload: payload}

		m.userRepo.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
		m.userRepo.On("GetByRoles", ctx, []domain.UserRole{domain.RoleAdmin}).Return(admins, nil).Once()
		for _, admin := range admins {
			adminID := admin.ID
			m.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
				return n.UserID == adminID && n.Type == domain.NotifListingSubmitted
			})).Return(nil).Once()
			m.email.On("SendListingSubmittedEmail", ctx, admin.Email, admin.FullName, owner.FullName, "DOE Phase II contract").Return(nil).Once()
		}

		err := svc.Deliver(ctx, event)

		assert.NoError(t, err)
		m.notifRepo.AssertExpectations(t)
		m.email.AssertExpectations(t)
	})

	t.Run("Moderated listing notifies the owner", func(t *testing.T) {
		svc, m := newDispatcher()
		owner := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		event := moderatedEvent(t, domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: owner.ID, Title: "DOE Phase II contract", Status: domain.ListingActive,
		})

		m.userRepo.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
		m.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == owner.ID && n.Type == domain.NotifListingModerated
		})).Return(nil).Once()
		m.email.On("SendListingModeratedEmail", ctx, owner.Email, owner.FullName, "DOE Phase II contract", "ACTIVE", "").Return(nil).Once()

		assert.NoError(t, svc.Deliver(ctx, event))
		m.email.AssertExpectations(t)
	})

	t.Run("Moderator note reaches the owner", func(t *testing.T) {
		svc, m := newDispatcher()
		owner := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		note := "Contract number could not be verified"
		event := moderatedEvent(t, domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: owner.ID, Title: "DOE Phase II contract",
			Status: domain.ListingRejected, Note: &note,
		})

		m.userRepo.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
		m.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Message == `"DOE Phase II contract" is now REJECTED: Contract number could not be verified`
		})).Return(nil).Once()
		m.email.On("SendListingModeratedEmail", ctx, owner.Email, owner.FullName, "DOE Phase II contract", "REJECTED", note).Return(nil).Once()

		assert.NoError(t, svc.Deliver(ctx, event))
		m.notifRepo.AssertExpectations(t)
		m.email.AssertExpectations(t)
	})

	t.Run("Deleted listing reads as removed", func(t *testing.T) {
		svc, m := newDispatcher()
		owner := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		event := moderatedEvent(t, domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: owner.ID, Title: "DOE Phase II contract", Deleted: true,
		})

		m.userRepo.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
		m.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		m.email.On("SendListingModeratedEmail", ctx, owner.Email, owner.FullName, "DOE Phase II contract", "REMOVED", "").Return(nil).Once()

		assert.NoError(t, svc.Deliver(ctx, event))
		m.email.AssertExpectations(t)
	})

	t.Run("Email failure never fails the delivery", func(t *testing.T) {
		svc, m := newDispatcher()
		owner := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		event := moderatedEvent(t, domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: owner.ID, Title: "DOE Phase II contract", Status: domain.ListingActive,
		})

		m.userRepo.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
		m.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		m.email.On("SendListingModeratedEmail", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("mail provider down")).Once()

		assert.NoError(t, svc.Deliver(ctx, event))
	})

	t.Run("In-app persistence failure fails the delivery", func(t *testing.T) {
		svc, m := newDispatcher()
		owner := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		event := moderatedEvent(t, domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: owner.ID, Title: "DOE Phase II contract", Status: domain.ListingActive,
		})

		m.userRepo.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
		m.notifRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		err := svc.Deliver(ctx, event)

		assert.Error(t, err)
		m.email.AssertNotCalled(t, "SendListingModeratedEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing recipient is not an error", func(t *testing.T) {
		svc, m := newDispatcher()
		ownerID := uuid.New()
		event := moderatedEvent(t, domain.ListingEventPayload{
			ListingID: uuid.New(), OwnerID: ownerID, Title: "DOE Phase II contract", Status: domain.ListingActive,
		})

		m.userRepo.On("GetByID", ctx, ownerID).Return(nil, nil).Once()

		assert.NoError(t, svc.Deliver(ctx, event))
		m.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Failed apply is surfaced in the decision message", func(t *testing.T) {
		svc, m := newDispatcher()
		requester := &domain.User{ID: uuid.New(), FullName: "Dana Seller", Email: "dana@example.com"}
		payload, _ := json.Marshal(domain.ChangeRequestEventPayload{
			ChangeRequestID: uuid.New(),
			ListingID:       uuid.New(),
			ListingTitle:    "DOE Phase II contract",
			RequesterID:     requester.ID,
			RequestType:     domain.RequestChange,
			Status:          domain.RequestApproved,
			ApplyFailed:     true,
		})
		event := domain.OutboxEvent{ID: uuid.New(), Type: domain.EventChangeRequestDecided, Payload: payload}

		m.userRepo.On("GetByID", ctx, requester.ID).Return(requester, nil).Once()
		m.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Message == `Your change request for "DOE Phase II contract" was APPROVED, but applying it hit a problem and an administrator will follow up`
		})).Return(nil).Once()
		m.email.On("SendChangeRequestDecidedEmail", ctx, requester.Email, requester.FullName, "change", "DOE Phase II contract", "APPROVED", "").Return(nil).Once()

		assert.NoError(t, svc.Deliver(ctx, event))
		m.notifRepo.AssertExpectations(t)
	})

	t.Run("Unknown event type is dropped", func(t *testing.T) {
		svc, m := newDispatcher()
		event := domain.OutboxEvent{ID: uuid.New(), Type: "listing.archived", Payload: []byte(`{}`)}

		assert.NoError(t, svc.Deliver(ctx, event))
		m.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
