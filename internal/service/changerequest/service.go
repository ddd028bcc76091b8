// Package changerequest implements the owner-side workflow for amending or
// retiring a live listing: sellers file a request describing what should
// change, admins decide it, and an approved decision is applied to the
// listing through the moderation engine.
package changerequest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/pkg/validation"
	"contract-exchange/internal/repository"
	"contract-exchange/internal/service/moderation"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateChangeRequestInput) (*domain.ChangeRequest, error)
	Decide(ctx context.Context, actor domain.Actor, requestID uuid.UUID, input domain.DecideChangeRequestInput) (*domain.ChangeRequest, error)
	GetByID(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*domain.ChangeRequest, error)
	List(ctx context.Context, actor domain.Actor, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error)
	ListMine(ctx context.Context, actor domain.Actor, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error)
}

type service struct {
	requestRepo repository.ChangeRequestRepository
	listingRepo repository.ListingRepository
	moderation  moderation.Service
	outbox      moderation.Enqueuer
	log         *zap.Logger
}

func NewService(
	requestRepo repository.ChangeRequestRepository,
	listingRepo repository.ListingRepository,
	moderationSvc moderation.Service,
	outbox moderation.Enqueuer,
	log *zap.Logger,
) Service {
	return &service{
		requestRepo: requestRepo,
		listingRepo: listingRepo,
		moderation:  moderationSvc,
		outbox:      outbox,
		log:         log,
	}
}

// Create files a new pending request against a listing the actor owns.
// Admins do not file requests; they act on listings directly.
func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateChangeRequestInput) (*domain.ChangeRequest, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !input.RequestType.IsValid() {
		return nil, fmt.Errorf("%w: unknown request type %q", domain.ErrValidation, input.RequestType)
	}
	if actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admins modify listings directly", domain.ErrForbidden)
	}

	listing, err := s.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.OwnerID != actor.ID {
		return nil, domain.ErrForbidden
	}

	request := &domain.ChangeRequest{
		ID:          uuid.New(),
		ListingID:   input.ListingID,
		RequesterID: actor.ID,
		RequestType: input.RequestType,
		Status:      domain.RequestPending,
		Reason:      input.Reason,
	}

	if input.RequestType == domain.RequestChange {
		if len(input.RequestedChanges) == 0 {
			return nil, fmt.Errorf("%w: requested_changes is required for change requests", domain.ErrValidation)
		}
		request.RequestedChanges = input.RequestedChanges
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.enqueueEvent(ctx, domain.EventChangeRequestCreated, request, listing, false)
	return request, nil
}

// Decide approves or rejects a pending request. The decision is written
// before the listing mutation runs, so a request is never decided twice:
// a second decision for the same request fails the conditional status
// update. If applying an approved request fails afterwards, the request
// keeps its Approved status and carries an apply-error mark instead.
func (s *service) Decide(ctx context.Context, actor domain.Actor, requestID uuid.UUID, input domain.DecideChangeRequestInput) (*domain.ChangeRequest, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrChangeRequestNotFound
	}
	if request.Status != domain.RequestPending {
		return nil, fmt.Errorf("%w: request already %s", domain.ErrInvalidTransition, request.Status)
	}

	status := domain.RequestRejected
	if input.Decision == domain.DecisionApproved {
		status = domain.RequestApproved
	}

	now := time.Now()
	if err := s.requestRepo.UpdateStatus(ctx, requestID, status, actor.ID, input.AdminNotes, input.AdminNotesForUser); err != nil {
		return nil, err
	}
	request.Status = status
	request.ProcessedBy = &actor.ID
	request.ProcessedAt = &now
	request.AdminNotes = input.AdminNotes
	request.AdminNotesForUser = input.AdminNotesForUser

	// Load the listing before the mutation runs: an approved deletion
	// removes the row, and the decision event still needs its title.
	listing, lookupErr := s.listingRepo.GetByID(ctx, request.ListingID)
	if lookupErr != nil {
		s.log.Warn("failed to load listing for decision event",
			zap.String("listing_id", request.ListingID.String()), zap.Error(lookupErr))
	}

	var applyErr error
	if status == domain.RequestApproved {
		applyErr = s.apply(ctx, request)
	}

	s.enqueueEvent(ctx, domain.EventChangeRequestDecided, request, listing, applyErr != nil)

	if applyErr != nil {
		return nil, applyErr
	}
	return request, nil
}

// apply runs the approved mutation and records a compensating mark on the
// request row when it fails. The request stays Approved either way.
func (s *service) apply(ctx context.Context, request *domain.ChangeRequest) error {
	var err error
	switch request.RequestType {
	case domain.RequestDeletion:
		err = s.moderation.ApplyApprovedDeletion(ctx, request)
	default:
		err = s.moderation.ApplyApprovedChange(ctx, request)
	}
	if err == nil {
		return nil
	}

	msg := err.Error()
	request.ApplyError = &msg
	if markErr := s.requestRepo.SetApplyError(ctx, request.ID, msg); markErr != nil {
		s.log.Error("failed to record apply error on change request",
			zap.String("request_id", request.ID.String()), zap.Error(markErr))
	}
	return err
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*domain.ChangeRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrChangeRequestNotFound
	}
	if !actor.IsAdmin() && request.RequesterID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return request, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.requestRepo.List(ctx, status, params)
}

func (s *service) ListMine(ctx context.Context, actor domain.Actor, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	return s.requestRepo.ListByRequester(ctx, actor.ID, params)
}

func (s *service) enqueueEvent(ctx context.Context, eventType domain.EventType, request *domain.ChangeRequest, listing *domain.Listing, applyFailed bool) {
	payload := domain.ChangeRequestEventPayload{
		ChangeRequestID:   request.ID,
		ListingID:         request.ListingID,
		RequesterID:       request.RequesterID,
		RequestType:       request.RequestType,
		Status:            request.Status,
		AdminNotesForUser: request.AdminNotesForUser,
		ApplyFailed:       applyFailed,
	}
	if listing != nil {
		payload.ListingTitle = listing.Title
	}

	if err := s.outbox.Enqueue(ctx, eventType, payload); err != nil {
		s.log.Warn("failed to enqueue change request event",
			zap.String("request_id", request.ID.String()), zap.Error(err))
	}
}
