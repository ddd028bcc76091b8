// Package bulk runs a single moderation action against many listings at
// once. Listings already in the target state are filtered out up front,
// the rest are processed in fixed-size batches with concurrent fan-out
// inside each batch and strictly sequential batches.
package bulk

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/pkg/validation"
	"contract-exchange/internal/repository"
	"contract-exchange/internal/service/moderation"
)

type Service interface {
	Execute(ctx context.Context, actor domain.Actor, input domain.BulkOperationInput) (*domain.BulkResult, error)
}

type service struct {
	listingRepo repository.ListingRepository
	moderation  moderation.Service
	batchSize   int
	log         *zap.Logger
}

func NewService(listingRepo repository.ListingRepository, moderationSvc moderation.Service, batchSize int, log *zap.Logger) Service {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &service{
		listingRepo: listingRepo,
		moderation:  moderationSvc,
		batchSize:   batchSize,
		log:         log,
	}
}

func (s *service) Execute(ctx context.Context, actor domain.Actor, input domain.BulkOperationInput) (*domain.BulkResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	ids := make([]uuid.UUID, 0, len(input.ListingIDs))
	for _, raw := range input.ListingIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	listings, err := s.listingRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	eligible := lo.Filter(listings, func(l domain.Listing, _ int) bool {
		return isEligible(input.Action, l.Status)
	})

	result := &domain.BulkResult{Errors: []domain.BulkError{}}

	for _, batch := range lo.Chunk(eligible, s.batchSize) {
		var wg sync.WaitGroup
		outcomes := make([]error, len(batch))

		for i := range batch {
			wg.Add(1)
			go func(i int, listing domain.Listing) {
				defer wg.Done()
				outcomes[i] = s.run(ctx, actor, input, &listing)
			}(i, batch[i])
		}
		wg.Wait()

		for i, err := range outcomes {
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, domain.BulkError{
					Label:   batch[i].Label(),
					Message: err.Error(),
				})
				continue
			}
			result.Successful++
		}
	}

	if result.Failed > 0 {
		s.log.Warn("bulk operation finished with failures",
			zap.String("action", string(input.Action)),
			zap.Int("successful", result.Successful),
			zap.Int("failed", result.Failed))
	}

	return result, nil
}

func (s *service) run(ctx context.Context, actor domain.Actor, input domain.BulkOperationInput, listing *domain.Listing) error {
	var err error
	switch input.Action {
	case domain.BulkApprove:
		_, err = s.moderation.Approve(ctx, actor, listing.ID)
	case domain.BulkReject:
		_, err = s.moderation.Reject(ctx, actor, listing.ID, input.Note)
	case domain.BulkHide:
		_, err = s.moderation.Hide(ctx, actor, listing.ID, input.Note)
	case domain.BulkDelete:
		err = s.moderation.Delete(ctx, actor, listing.ID, input.Note)
	}
	return err
}

// isEligible filters the no-ops out of the requested set: approving an
// already-active listing, hiding an already-hidden one, and so on.
func isEligible(action domain.BulkAction, status domain.ListingStatus) bool {
	switch action {
	case domain.BulkApprove, domain.BulkReject:
		return status == domain.ListingPending
	case domain.BulkHide:
		return status == domain.ListingActive || status == domain.ListingSold
	case domain.BulkDelete:
		return true
	default:
		return false
	}
}
