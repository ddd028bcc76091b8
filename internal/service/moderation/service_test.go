package moderation_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/mocks"
	"contract-exchange/internal/service/moderation"
)

func newEngine(t *testing.T) (moderation.Service, *mocks.ListingRepository, *mocks.AuditLogRepository, *mocks.Enqueuer) {
	t.Helper()
	listingRepo := new(mocks.ListingRepository)
	auditRepo := new(mocks.AuditLogRepository)
	enqueuer := new(mocks.Enqueuer)
	svc := moderation.NewService(listingRepo, auditRepo, enqueuer, zap.NewNop())
	return svc, listingRepo, auditRepo, enqueuer
}

func pendingListing(ownerID uuid.UUID) *domain.Listing {
	return &domain.Listing{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      "SBIR Phase II - Autonomous Sensor Array",
		Agency:     "DOD",
		Category:   "Defense",
		ValueCents: 75000000,
		Status:     domain.ListingPending,
		Version:    1,
	}
}

func TestModerationService_Approve(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("Success - pending listing goes active with approval stamp", func(t *testing.T) {
		svc, listingRepo, auditRepo, enqueuer := newEngine(t)
		listing := pendingListing(uuid.New())

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("UpdateStatus", ctx, listing.ID, domain.ListingActive, &admin.ID, mock.Anything, int64(1)).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()
		enqueuer.On("Enqueue", ctx, domain.EventListingModerated, mock.Anything).Return(nil).Once()

		result, err := svc.Approve(ctx, admin, listing.ID)

		assert.NoError(t, err)
		assert.Equal(t, domain.ListingActive, result.Status)
		assert.Equal(t, &admin.ID, result.ApprovedBy)
		assert.NotNil(t, result.ApprovedAt)
		assert.Equal(t, int64(2), result.Version)
		listingRepo.AssertExpectations(t)
	})

	t.Run("Non-admin actor is refused", func(t *testing.T) {
		svc, _, _, _ := newEngine(t)
		seller := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}

		result, err := svc.Approve(ctx, seller, uuid.New())

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Missing listing", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listingID := uuid.New()
		listingRepo.On("GetByID", ctx, listingID).Return(nil, nil).Once()

		result, err := svc.Approve(ctx, admin, listingID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})

	t.Run("Already active listing cannot be re-approved", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		listing.Status = domain.ListingActive

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()

		result, err := svc.Approve(ctx, admin, listing.ID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		listingRepo.AssertNotCalled(t, "UpdateStatus")
	})
}

func TestModerationService_Reject(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("Pending listing is rejected without approval stamp", func(t *testing.T) {
		svc, listingRepo, auditRepo, enqueuer := newEngine(t)
		listing := pendingListing(uuid.New())

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("UpdateStatus", ctx, listing.ID, domain.ListingRejected, (*uuid.UUID)(nil), mock.Anything, int64(1)).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()
		enqueuer.On("Enqueue", ctx, domain.EventListingModerated, mock.Anything).Return(nil).Once()

		result, err := svc.Reject(ctx, admin, listing.ID, nil)

		assert.NoError(t, err)
		assert.Equal(t, domain.ListingRejected, result.Status)
		assert.Nil(t, result.ApprovedBy)
	})

	t.Run("Rejection note travels with the event", func(t *testing.T) {
		svc, listingRepo, auditRepo, enqueuer := newEngine(t)
		listing := pendingListing(uuid.New())
		note := "Contract number could not be verified"

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("UpdateStatus", ctx, listing.ID, domain.ListingRejected, (*uuid.UUID)(nil), mock.Anything, int64(1)).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()
		enqueuer.On("Enqueue", ctx, domain.EventListingModerated, mock.MatchedBy(func(p domain.ListingEventPayload) bool {
			return p.Note != nil && *p.Note == note
		})).Return(nil).Once()

		_, err := svc.Reject(ctx, admin, listing.ID, &note)

		assert.NoError(t, err)
		enqueuer.AssertExpectations(t)
	})

	t.Run("Hidden listing cannot be rejected", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		listing.Status = domain.ListingHidden

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()

		_, err := svc.Reject(ctx, admin, listing.ID, nil)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestModerationService_Hide(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	for _, from := range []domain.ListingStatus{domain.ListingActive, domain.ListingSold} {
		t.Run("Hides from "+string(from), func(t *testing.T) {
			svc, listingRepo, auditRepo, enqueuer := newEngine(t)
			listing := pendingListing(uuid.New())
			listing.Status = from

			listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
			listingRepo.On("UpdateStatus", ctx, listing.ID, domain.ListingHidden, (*uuid.UUID)(nil), mock.Anything, int64(1)).Return(nil).Once()
			auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()
			enqueuer.On("Enqueue", ctx, domain.EventListingModerated, mock.Anything).Return(nil).Once()

			result, err := svc.Hide(ctx, admin, listing.ID, nil)

			assert.NoError(t, err)
			assert.Equal(t, domain.ListingHidden, result.Status)
		})
	}

	t.Run("Pending listing cannot be hidden", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listing := pendingListing(uuid.New())

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()

		_, err := svc.Hide(ctx, admin, listing.ID, nil)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestModerationService_Delete(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("Deletes regardless of status", func(t *testing.T) {
		svc, listingRepo, auditRepo, enqueuer := newEngine(t)
		listing := pendingListing(uuid.New())
		listing.Status = domain.ListingSold

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("Delete", ctx, listing.ID).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()
		enqueuer.On("Enqueue", ctx, domain.EventListingModerated, mock.Anything).Return(nil).Once()

		err := svc.Delete(ctx, admin, listing.ID, nil)

		assert.NoError(t, err)
		listingRepo.AssertExpectations(t)
	})
}

func TestModerationService_ApplyApprovedChange(t *testing.T) {
	ctx := context.Background()

	newRequest := func(listingID uuid.UUID, changes string) *domain.ChangeRequest {
		return &domain.ChangeRequest{
			ID:               uuid.New(),
			ListingID:        listingID,
			RequesterID:      uuid.New(),
			RequestType:      domain.RequestChange,
			Status:           domain.RequestApproved,
			RequestedChanges: json.RawMessage(changes),
		}
	}

	t.Run("Merges whitelisted fields and converts money to cents", func(t *testing.T) {
		svc, listingRepo, auditRepo, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		listing.Status = domain.ListingActive
		req := newRequest(listing.ID, `{"title":"Updated Title","value":150000}`)

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("UpdateFields", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.Title == "Updated Title" && l.ValueCents == 15000000
		}), int64(1)).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()

		err := svc.ApplyApprovedChange(ctx, req)

		assert.NoError(t, err)
		listingRepo.AssertExpectations(t)
	})

	t.Run("Rounds half-up when converting to cents", func(t *testing.T) {
		svc, listingRepo, auditRepo, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		req := newRequest(listing.ID, `{"value":10.005}`)

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("UpdateFields", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.ValueCents == 1001
		}), int64(1)).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()

		assert.NoError(t, svc.ApplyApprovedChange(ctx, req))
	})

	t.Run("Array payload fails validation before any read", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		req := newRequest(uuid.New(), `["title","value"]`)

		err := svc.ApplyApprovedChange(ctx, req)

		assert.ErrorIs(t, err, domain.ErrValidation)
		listingRepo.AssertNotCalled(t, "GetByID")
		listingRepo.AssertNotCalled(t, "UpdateFields")
	})

	t.Run("Null payload fails validation", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		req := newRequest(uuid.New(), `null`)

		err := svc.ApplyApprovedChange(ctx, req)

		assert.ErrorIs(t, err, domain.ErrValidation)
		listingRepo.AssertNotCalled(t, "UpdateFields")
	})

	t.Run("Wrong-typed field fails the whole merge", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		req := newRequest(listing.ID, `{"title":42}`)

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()

		err := svc.ApplyApprovedChange(ctx, req)

		assert.ErrorIs(t, err, domain.ErrValidation)
		listingRepo.AssertNotCalled(t, "UpdateFields")
	})

	t.Run("Version conflict surfaces", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		req := newRequest(listing.ID, `{"title":"Race"}`)

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("UpdateFields", ctx, mock.Anything, int64(1)).Return(domain.ErrVersionConflict).Once()

		err := svc.ApplyApprovedChange(ctx, req)

		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}

func TestModerationService_ApplyApprovedDeletion(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the listing and keeps the request as record", func(t *testing.T) {
		svc, listingRepo, auditRepo, enqueuer := newEngine(t)
		listing := pendingListing(uuid.New())
		listing.Status = domain.ListingActive
		adminID := uuid.New()
		req := &domain.ChangeRequest{
			ID:          uuid.New(),
			ListingID:   listing.ID,
			RequesterID: listing.OwnerID,
			RequestType: domain.RequestDeletion,
			Status:      domain.RequestApproved,
			ProcessedBy: &adminID,
		}

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("Delete", ctx, listing.ID).Return(nil).Once()
		auditRepo.On("Create", ctx, mock.Anything).Return(nil).Maybe()
		enqueuer.On("Enqueue", ctx, domain.EventListingModerated, mock.Anything).Return(nil).Once()

		assert.NoError(t, svc.ApplyApprovedDeletion(ctx, req))
		listingRepo.AssertExpectations(t)
	})

	t.Run("Wrong request type is rejected", func(t *testing.T) {
		svc, _, _, _ := newEngine(t)
		req := &domain.ChangeRequest{ID: uuid.New(), RequestType: domain.RequestChange}

		err := svc.ApplyApprovedDeletion(ctx, req)

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Delete failure surfaces", func(t *testing.T) {
		svc, listingRepo, _, _ := newEngine(t)
		listing := pendingListing(uuid.New())
		req := &domain.ChangeRequest{
			ID:          uuid.New(),
			ListingID:   listing.ID,
			RequesterID: listing.OwnerID,
			RequestType: domain.RequestDeletion,
		}

		listingRepo.On("GetByID", ctx, listing.ID).Return(listing, nil).Once()
		listingRepo.On("Delete", ctx, listing.ID).Return(errors.New("db down")).Once()

		err := svc.ApplyApprovedDeletion(ctx, req)

		assert.Error(t, err)
	})
}
