package inquiry

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/pkg/validation"
	"contract-exchange/internal/repository"
	"contract-exchange/internal/service/moderation"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, listingID uuid.UUID, input domain.CreateInquiryInput) (*domain.Inquiry, error)
	ListByListing(ctx context.Context, actor domain.Actor, listingID uuid.UUID, params domain.PaginationParams) ([]domain.Inquiry, int64, error)
	Delete(ctx context.Context, actor domain.Actor, inquiryID uuid.UUID) error
}

type service struct {
	inquiryRepo repository.InquiryRepository
	listingRepo repository.ListingRepository
	outbox      moderation.Enqueuer
	log         *zap.Logger
}

func NewService(inquiryRepo repository.InquiryRepository, listingRepo repository.ListingRepository, outbox moderation.Enqueuer, log *zap.Logger) Service {
	return &service{
		inquiryRepo: inquiryRepo,
		listingRepo: listingRepo,
		outbox:      outbox,
		log:         log,
	}
}

// Create files a buyer question against an active listing and queues a
// notification to the owner.
func (s *service) Create(ctx context.Context, actor domain.Actor, listingID uuid.UUID, input domain.CreateInquiryInput) (*domain.Inquiry, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.Status != domain.ListingActive {
		return nil, domain.ErrListingNotFound
	}
	if listing.OwnerID == actor.ID {
		return nil, domain.ErrForbidden
	}

	inquiry := &domain.Inquiry{
		ID:        uuid.New(),
		ListingID: listingID,
		AuthorID:  actor.ID,
		Message:   input.Message,
	}

	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	payload := domain.InquiryEventPayload{
		InquiryID:    inquiry.ID,
		ListingID:    listing.ID,
		ListingTitle: listing.Title,
		OwnerID:      listing.OwnerID,
		AuthorID:     actor.ID,
	}
	if err := s.outbox.Enqueue(ctx, domain.EventInquiryCreated, payload); err != nil {
		s.log.Warn("failed to enqueue inquiry event",
			zap.String("inquiry_id", inquiry.ID.String()), zap.Error(err))
	}

	return inquiry, nil
}

// ListByListing shows inquiries to the listing owner and admins only.
func (s *service) ListByListing(ctx context.Context, actor domain.Actor, listingID uuid.UUID, params domain.PaginationParams) ([]domain.Inquiry, int64, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	if listing == nil {
		return nil, 0, domain.ErrListingNotFound
	}
	if listing.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}

	return s.inquiryRepo.ListByListing(ctx, listingID, params)
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, inquiryID uuid.UUID) error {
	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		return err
	}
	if inquiry == nil {
		return domain.ErrInquiryNotFound
	}
	if inquiry.AuthorID != actor.ID && !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	return s.inquiryRepo.Delete(ctx, inquiryID)
}
