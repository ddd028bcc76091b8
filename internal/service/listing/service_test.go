package listing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/mocks"
	"contract-exchange/internal/service/listing"
)

type listingMocks struct {
	listingRepo *mocks.ListingRepository
	auditRepo   *mocks.AuditLogRepository
	outbox      *mocks.Enqueuer
}

func newListingService() (listing.Service, listingMocks) {
	m := listingMocks{
		listingRepo: new(mocks.ListingRepository),
		auditRepo:   new(mocks.AuditLogRepository),
		outbox:      new(mocks.Enqueuer),
	}
	m.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	svc := listing.NewService(m.listingRepo, m.auditRepo, m.outbox, nil, zap.NewNop())
	return svc, m
}

func validInput() domain.CreateListingInput {
	desc := "Transferable Phase II award, 14 months remaining"
	return domain.CreateListingInput{
		Title:       "DOE Phase II SBIR contract",
		Agency:      "Department of Energy",
		Category:    "Energy Storage",
		Description: &desc,
		Value:       decimal.RequireFromString("750000"),
	}
}

func TestListingService_Create(t *testing.T) {
	ctx := context.Background()
	seller := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}

	t.Run("New listing starts pending with the value in cents", func(t *testing.T) {
		svc, m := newListingService()

		m.listingRepo.On("Create", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.OwnerID == seller.ID &&
				l.Status == domain.ListingPending &&
				l.ValueCents == 75000000
		})).Return(nil).Once()
		m.outbox.On("Enqueue", ctx, domain.EventListingSubmitted, mock.Anything).Return(nil).Once()

		created, err := svc.Create(ctx, seller, validInput())

		require.NoError(t, err)
		assert.Equal(t, domain.ListingPending, created.Status)
		m.listingRepo.AssertExpectations(t)
		m.outbox.AssertExpectations(t)
	})

	t.Run("Negative value is rejected", func(t *testing.T) {
		svc, m := newListingService()
		input := validInput()
		input.Value = decimal.RequireFromString("-1")

		_, err := svc.Create(ctx, seller, input)

		assert.ErrorIs(t, err, domain.ErrValidation)
		m.listingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListingService_Update(t *testing.T) {
	ctx := context.Background()
	seller := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}

	base := func(status domain.ListingStatus) *domain.Listing {
		return &domain.Listing{
			ID:         uuid.New(),
			OwnerID:    seller.ID,
			Title:      "DOE Phase II SBIR contract",
			Agency:     "Department of Energy",
			Category:   "Energy Storage",
			ValueCents: 75000000,
			Status:     status,
			Version:    3,
		}
	}

	t.Run("Owner can edit a pending listing", func(t *testing.T) {
		svc, m := newListingService()
		current := base(domain.ListingPending)
		newTitle := "DOE Phase II SBIR contract (novated)"

		m.listingRepo.On("GetByID", ctx, current.ID).Return(current, nil).Once()
		m.listingRepo.On("UpdateFields", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.Title == newTitle && l.Status == domain.ListingPending
		}), int64(3)).Return(nil).Once()

		updated, err := svc.Update(ctx, seller, current.ID, domain.UpdateListingInput{Title: &newTitle})

		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		assert.Equal(t, int64(4), updated.Version)
	})

	t.Run("Editing a rejected listing resubmits it for review", func(t *testing.T) {
		svc, m := newListingService()
		current := base(domain.ListingRejected)
		newTitle := "DOE Phase II SBIR contract, revised"

		m.listingRepo.On("GetByID", ctx, current.ID).Return(current, nil).Once()
		m.listingRepo.On("UpdateFields", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.Status == domain.ListingPending
		}), int64(3)).Return(nil).Once()

		updated, err := svc.Update(ctx, seller, current.ID, domain.UpdateListingInput{Title: &newTitle})

		require.NoError(t, err)
		assert.Equal(t, domain.ListingPending, updated.Status)
	})

	t.Run("Live listing cannot be edited directly", func(t *testing.T) {
		svc, m := newListingService()
		current := base(domain.ListingActive)
		newTitle := "Sneaky retitle"

		m.listingRepo.On("GetByID", ctx, current.ID).Return(current, nil).Once()

		_, err := svc.Update(ctx, seller, current.ID, domain.UpdateListingInput{Title: &newTitle})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		m.listingRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-owner cannot edit", func(t *testing.T) {
		svc, m := newListingService()
		current := base(domain.ListingPending)
		stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}
		newTitle := "Not my listing"

		m.listingRepo.On("GetByID", ctx, current.ID).Return(current, nil).Once()

		_, err := svc.Update(ctx, stranger, current.ID, domain.UpdateListingInput{Title: &newTitle})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestListingService_GetByID(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}

	pending := &domain.Listing{ID: uuid.New(), OwnerID: owner.ID, Title: "Pending listing", Status: domain.ListingPending}

	t.Run("Owner sees a pending listing", func(t *testing.T) {
		svc, m := newListingService()
		m.listingRepo.On("GetByID", ctx, pending.ID).Return(pending, nil).Once()

		got, err := svc.GetByID(ctx, owner, pending.ID)

		require.NoError(t, err)
		assert.Equal(t, pending.ID, got.ID)
	})

	t.Run("Strangers only see active listings", func(t *testing.T) {
		svc, m := newListingService()
		stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleMember}
		m.listingRepo.On("GetByID", ctx, pending.ID).Return(pending, nil).Once()

		_, err := svc.GetByID(ctx, stranger, pending.ID)

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})
}

func TestListingService_MarkSold(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}

	t.Run("Owner marks an active listing sold", func(t *testing.T) {
		svc, m := newListingService()
		active := &domain.Listing{ID: uuid.New(), OwnerID: owner.ID, Status: domain.ListingActive, Version: 2}

		m.listingRepo.On("GetByID", ctx, active.ID).Return(active, nil).Once()
		m.listingRepo.On("UpdateStatus", ctx, active.ID, domain.ListingSold, (*uuid.UUID)(nil), mock.Anything, int64(2)).Return(nil).Once()

		sold, err := svc.MarkSold(ctx, owner, active.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.ListingSold, sold.Status)
	})

	t.Run("Pending listing cannot be sold", func(t *testing.T) {
		svc, m := newListingService()
		pending := &domain.Listing{ID: uuid.New(), OwnerID: owner.ID, Status: domain.ListingPending}

		m.listingRepo.On("GetByID", ctx, pending.ID).Return(pending, nil).Once()

		_, err := svc.MarkSold(ctx, owner, pending.ID)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}
