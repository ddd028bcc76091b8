// Package listing covers the seller-facing lifecycle of a listing:
// submission for review, draft edits while still pending or rejected,
// the public browse surface, and marking a sale.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/pkg/validation"
	"contract-exchange/internal/repository"
	"contract-exchange/internal/service/moderation"
)

const browseCacheTTL = time.Minute

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateListingInput) (*domain.Listing, error)
	Update(ctx context.Context, actor domain.Actor, listingID uuid.UUID, input domain.UpdateListingInput) (*domain.Listing, error)
	GetByID(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error)
	ListMine(ctx context.Context, actor domain.Actor, params domain.PaginationParams) ([]domain.Listing, int64, error)
	ListAdmin(ctx context.Context, actor domain.Actor, filter domain.ListingFilter, params domain.PaginationParams) ([]domain.Listing, int64, error)
	Browse(ctx context.Context, query string, params domain.PaginationParams) (*domain.PaginatedResponse[domain.Listing], error)
	MarkSold(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error)
}

type service struct {
	listingRepo repository.ListingRepository
	auditRepo   repository.AuditLogRepository
	outbox      moderation.Enqueuer
	redis       *redis.Client
	log         *zap.Logger
}

func NewService(listingRepo repository.ListingRepository, auditRepo repository.AuditLogRepository, outbox moderation.Enqueuer, redisClient *redis.Client, log *zap.Logger) Service {
	return &service{
		listingRepo: listingRepo,
		auditRepo:   auditRepo,
		outbox:      outbox,
		redis:       redisClient,
		log:         log,
	}
}

// Create submits a new listing for review. Every listing starts pending;
// only an admin approval makes it publicly visible.
func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateListingInput) (*domain.Listing, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Value.IsNegative() {
		return nil, fmt.Errorf("%w: value must not be negative", domain.ErrValidation)
	}

	listing := &domain.Listing{
		ID:             uuid.New(),
		OwnerID:        actor.ID,
		Title:          input.Title,
		Agency:         input.Agency,
		Category:       input.Category,
		Phase:          input.Phase,
		ContractNumber: input.ContractNumber,
		Description:    input.Description,
		ValueCents:     domain.ToMinorUnits(input.Value),
		Status:         domain.ListingPending,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "CREATE_LISTING",
		EntityType: "LISTING",
		EntityID:   listing.ID,
		NewValue:   listing,
	})

	payload := domain.ListingEventPayload{
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		Title:     listing.Title,
		Status:    listing.Status,
	}
	if err := s.outbox.Enqueue(ctx, domain.EventListingSubmitted, payload); err != nil {
		s.log.Warn("failed to enqueue listing submitted event",
			zap.String("listing_id", listing.ID.String()), zap.Error(err))
	}

	return listing, nil
}

// Update lets the owner edit a listing that has not gone live yet. A live
// listing can only be amended through a change request, so moderated
// content never mutates silently.
func (s *service) Update(ctx context.Context, actor domain.Actor, listingID uuid.UUID, input domain.UpdateListingInput) (*domain.Listing, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if listing.Status != domain.ListingPending && listing.Status != domain.ListingRejected {
		return nil, fmt.Errorf("%w: a %s listing can only be amended through a change request", domain.ErrInvalidTransition, listing.Status)
	}

	before := *listing
	applyUpdate(listing, input)

	// A rejected listing goes back into the review queue after an edit.
	if listing.Status == domain.ListingRejected {
		listing.Status = domain.ListingPending
	}

	if err := s.listingRepo.UpdateFields(ctx, listing, before.Version); err != nil {
		return nil, err
	}
	listing.Version++

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "UPDATE_LISTING",
		EntityType: "LISTING",
		EntityID:   listing.ID,
		OldValue:   before,
		NewValue:   listing,
	})

	return listing, nil
}

// GetByID is visible to the owner and admins in any status, and to
// everyone else only when the listing is active.
func (s *service) GetByID(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}

	if listing.OwnerID == actor.ID || actor.IsAdmin() {
		return listing, nil
	}
	if listing.Status != domain.ListingActive {
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}

func (s *service) ListMine(ctx context.Context, actor domain.Actor, params domain.PaginationParams) ([]domain.Listing, int64, error) {
	filter := domain.ListingFilter{OwnerID: &actor.ID}
	return s.listingRepo.List(ctx, filter, params)
}

func (s *service) ListAdmin(ctx context.Context, actor domain.Actor, filter domain.ListingFilter, params domain.PaginationParams) ([]domain.Listing, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.listingRepo.List(ctx, filter, params)
}

// Browse is the unauthenticated marketplace view. Results are cached per
// page for a short TTL; staleness resolves on its own.
func (s *service) Browse(ctx context.Context, query string, params domain.PaginationParams) (*domain.PaginatedResponse[domain.Listing], error) {
	params.Validate()
	cacheKey := fmt.Sprintf("listings:browse:%d:%d:%s", params.Page, params.PageSize, query)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var response domain.PaginatedResponse[domain.Listing]
			if json.Unmarshal([]byte(cached), &response) == nil {
				return &response, nil
			}
		}
	}

	active := domain.ListingActive
	filter := domain.ListingFilter{Status: &active, Query: query}
	listings, total, err := s.listingRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	response := domain.NewPaginatedResponse(listings, params.Page, params.PageSize, total)

	if s.redis != nil {
		if body, err := json.Marshal(response); err == nil {
			_ = s.redis.Set(ctx, cacheKey, body, browseCacheTTL).Err()
		}
	}

	return &response, nil
}

// MarkSold records a completed transfer. Owner-only, and only from active.
func (s *service) MarkSold(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.OwnerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	if listing.Status != domain.ListingActive {
		return nil, fmt.Errorf("%w: listing is %s", domain.ErrInvalidTransition, listing.Status)
	}

	if err := s.listingRepo.UpdateStatus(ctx, listingID, domain.ListingSold, nil, nil, listing.Version); err != nil {
		return nil, err
	}
	oldStatus := listing.Status
	listing.Status = domain.ListingSold
	listing.Version++

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "MARK_LISTING_SOLD",
		EntityType: "LISTING",
		EntityID:   listing.ID,
		OldValue:   map[string]string{"status": string(oldStatus)},
		NewValue:   map[string]string{"status": string(listing.Status)},
	})

	return listing, nil
}

func applyUpdate(listing *domain.Listing, input domain.UpdateListingInput) {
	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Agency != nil {
		listing.Agency = *input.Agency
	}
	if input.Category != nil {
		listing.Category = *input.Category
	}
	if input.Phase != nil {
		listing.Phase = input.Phase
	}
	if input.ContractNumber != nil {
		listing.ContractNumber = input.ContractNumber
	}
	if input.Description != nil {
		listing.Description = input.Description
	}
	if input.Value != nil {
		listing.ValueCents = domain.ToMinorUnits(*input.Value)
		listing.Value = domain.FromMinorUnits(listing.ValueCents)
	}
}
