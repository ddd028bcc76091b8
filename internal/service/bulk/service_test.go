package bulk_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/mocks"
	"contract-exchange/internal/service/bulk"
)

func makeListings(n int, status domain.ListingStatus) ([]domain.Listing, []string) {
	listings := make([]domain.Listing, n)
	ids := make([]string, n)
	for i := range listings {
		listings[i] = domain.Listing{
			ID:      uuid.New(),
			OwnerID: uuid.New(),
			Title:   fmt.Sprintf("Listing %d", i),
			Status:  status,
			Version: 1,
		}
		ids[i] = listings[i].ID.String()
	}
	return listings, ids
}

func TestBulkService_Execute(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("Non-admin is refused", func(t *testing.T) {
		listingRepo := new(mocks.ListingRepository)
		moderation := new(mocks.ModerationService)
		svc := bulk.NewService(listingRepo, moderation, 10, zap.NewNop())
		seller := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}
		_, ids := makeListings(2, domain.ListingPending)

		result, err := svc.Execute(ctx, seller, domain.BulkOperationInput{Action: domain.BulkApprove, ListingIDs: ids})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Aggregates successes and per-item failures", func(t *testing.T) {
		listingRepo := new(mocks.ListingRepository)
		moderation := new(mocks.ModerationService)
		svc := bulk.NewService(listingRepo, moderation, 10, zap.NewNop())

		listings, ids := makeListings(23, domain.ListingPending)
		failing := listings[7]

		listingRepo.On("GetByIDs", ctx, mock.Anything).Return(listings, nil).Once()
		moderation.On("Approve", ctx, admin, failing.ID).Return(nil, errors.New("boom")).Once()
		for _, l := range listings {
			if l.ID == failing.ID {
				continue
			}
			approved := l
			approved.Status = domain.ListingActive
			moderation.On("Approve", ctx, admin, l.ID).Return(&approved, nil).Once()
		}

		result, err := svc.Execute(ctx, admin, domain.BulkOperationInput{Action: domain.BulkApprove, ListingIDs: ids})

		assert.NoError(t, err)
		assert.Equal(t, 22, result.Successful)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, failing.Title, result.Errors[0].Label)
		assert.Equal(t, "boom", result.Errors[0].Message)
		moderation.AssertExpectations(t)
	})

	t.Run("Filters no-ops before processing", func(t *testing.T) {
		listingRepo := new(mocks.ListingRepository)
		moderation := new(mocks.ModerationService)
		svc := bulk.NewService(listingRepo, moderation, 10, zap.NewNop())

		pending, _ := makeListings(2, domain.ListingPending)
		active, _ := makeListings(3, domain.ListingActive)
		all := append(pending, active...)
		ids := make([]string, len(all))
		for i, l := range all {
			ids[i] = l.ID.String()
		}

		listingRepo.On("GetByIDs", ctx, mock.Anything).Return(all, nil).Once()
		for _, l := range pending {
			approved := l
			approved.Status = domain.ListingActive
			moderation.On("Approve", ctx, admin, l.ID).Return(&approved, nil).Once()
		}

		result, err := svc.Execute(ctx, admin, domain.BulkOperationInput{Action: domain.BulkApprove, ListingIDs: ids})

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Successful)
		assert.Equal(t, 0, result.Failed)
		// The active listings never reached the moderation engine.
		moderation.AssertNumberOfCalls(t, "Approve", 2)
	})

	t.Run("Error label falls back to the id when the title is empty", func(t *testing.T) {
		listingRepo := new(mocks.ListingRepository)
		moderation := new(mocks.ModerationService)
		svc := bulk.NewService(listingRepo, moderation, 10, zap.NewNop())

		listing := domain.Listing{ID: uuid.New(), Status: domain.ListingPending}
		listingRepo.On("GetByIDs", ctx, mock.Anything).Return([]domain.Listing{listing}, nil).Once()
		moderation.On("Approve", ctx, admin, listing.ID).Return(nil, errors.New("boom")).Once()

		result, err := svc.Execute(ctx, admin, domain.BulkOperationInput{Action: domain.BulkApprove, ListingIDs: []string{listing.ID.String()}})

		assert.NoError(t, err)
		assert.Equal(t, listing.ID.String(), result.Errors[0].Label)
	})

	t.Run("Batches run sequentially with bounded concurrency", func(t *testing.T) {
		listingRepo := new(mocks.ListingRepository)
		moderation := new(mocks.ModerationService)
		batchSize := 5
		svc := bulk.NewService(listingRepo, moderation, batchSize, zap.NewNop())

		listings, ids := makeListings(17, domain.ListingPending)
		listingRepo.On("GetByIDs", ctx, mock.Anything).Return(listings, nil).Once()

		var mu sync.Mutex
		var inFlight, maxInFlight int32
		moderation.On("Approve", ctx, admin, mock.Anything).Run(func(args mock.Arguments) {
			current := atomic.AddInt32(&inFlight, 1)
			mu.Lock()
			if current > maxInFlight {
				maxInFlight = current
			}
			mu.Unlock()
			atomic.AddInt32(&inFlight, -1)
		}).Return(&domain.Listing{Status: domain.ListingActive}, nil)

		result, err := svc.Execute(ctx, admin, domain.BulkOperationInput{Action: domain.BulkApprove, ListingIDs: ids})

		assert.NoError(t, err)
		assert.Equal(t, 17, result.Successful)
		assert.LessOrEqual(t, maxInFlight, int32(batchSize))
	})

	t.Run("Delete action accepts any status", func(t *testing.T) {
		listingRepo := new(mocks.ListingRepository)
		moderation := new(mocks.ModerationService)
		svc := bulk.NewService(listingRepo, moderation, 10, zap.NewNop())

		hidden, _ := makeListings(2, domain.ListingHidden)
		ids := []string{hidden[0].ID.String(), hidden[1].ID.String()}
		listingRepo.On("GetByIDs", ctx, mock.Anything).Return(hidden, nil).Once()
		moderation.On("Delete", ctx, admin, mock.Anything, (*string)(nil)).Return(nil).Twice()

		result, err := svc.Execute(ctx, admin, domain.BulkOperationInput{Action: domain.BulkDelete, ListingIDs: ids})

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Successful)
	})
}
