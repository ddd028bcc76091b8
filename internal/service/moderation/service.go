// Package moderation implements the listing lifecycle state machine:
// admin approval and rejection of pending listings, hiding of live ones,
// hard deletion, and the application of approved change requests.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/repository"
)

type Service interface {
	Approve(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error)
	Reject(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) (*domain.Listing, error)
	Hide(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) (*domain.Listing, error)
	Delete(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) error
	ApplyApprovedChange(ctx context.Context, req *domain.ChangeRequest) error
	ApplyApprovedDeletion(ctx context.Context, req *domain.ChangeRequest) error
	SetAttachmentCleaner(cleaner AttachmentCleaner)
}

// AttachmentCleaner removes a deleted listing's documents from object
// storage. Wired after construction to avoid a service cycle.
type AttachmentCleaner interface {
	RemoveForListing(ctx context.Context, listingID uuid.UUID) error
}

// Enqueuer hands side-channel events to the notification outbox. Failures
// are logged and swallowed; a moderation operation never unwinds because
// its notification could not be queued.
type Enqueuer interface {
	Enqueue(ctx context.Context, eventType domain.EventType, payload interface{}) error
}

type service struct {
	listingRepo repository.ListingRepository
	auditRepo   repository.AuditLogRepository
	outbox      Enqueuer
	cleaner     AttachmentCleaner
	log         *zap.Logger
}

func NewService(listingRepo repository.ListingRepository, auditRepo repository.AuditLogRepository, outbox Enqueuer, log *zap.Logger) Service {
	return &service{
		listingRepo: listingRepo,
		auditRepo:   auditRepo,
		outbox:      outbox,
		log:         log,
	}
}

func (s *service) SetAttachmentCleaner(cleaner AttachmentCleaner) {
	s.cleaner = cleaner
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (*domain.Listing, error) {
	listing, err := s.getForTransition(ctx, actor, listingID, domain.ListingPending)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.listingRepo.UpdateStatus(ctx, listingID, domain.ListingActive, &actor.ID, &now, listing.Version); err != nil {
		return nil, err
	}

	oldStatus := listing.Status
	listing.Status = domain.ListingActive
	listing.ApprovedBy = &actor.ID
	listing.ApprovedAt = &now
	listing.Version++

	s.finish(ctx, actor, listing, "APPROVE_LISTING", oldStatus, nil)
	return listing, nil
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) (*domain.Listing, error) {
	listing, err := s.getForTransition(ctx, actor, listingID, domain.ListingPending)
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.UpdateStatus(ctx, listingID, domain.ListingRejected, nil, nil, listing.Version); err != nil {
		return nil, err
	}

	oldStatus := listing.Status
	listing.Status = domain.ListingRejected
	listing.Version++

	s.finish(ctx, actor, listing, "REJECT_LISTING", oldStatus, note)
	return listing, nil
}

func (s *service) Hide(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) (*domain.Listing, error) {
	listing, err := s.getForTransition(ctx, actor, listingID, domain.ListingActive, domain.ListingSold)
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.UpdateStatus(ctx, listingID, domain.ListingHidden, nil, nil, listing.Version); err != nil {
		return nil, err
	}

	oldStatus := listing.Status
	listing.Status = domain.ListingHidden
	listing.Version++

	s.finish(ctx, actor, listing, "HIDE_LISTING", oldStatus, note)
	return listing, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, listingID uuid.UUID, note *string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return domain.ErrListingNotFound
	}

	return s.deleteListing(ctx, actor, listing, "DELETE_LISTING", note)
}

// ApplyApprovedChange merges an approved Change request's field mapping
// onto the listing. A payload that is not a JSON object leaves the listing
// untouched and surfaces a validation error.
func (s *service) ApplyApprovedChange(ctx context.Context, req *domain.ChangeRequest) error {
	if req.RequestType != domain.RequestChange {
		return fmt.Errorf("%w: request %s is not a change request", domain.ErrValidation, req.ID)
	}

	changes, err := decodeChanges(req.RequestedChanges)
	if err != nil {
		return err
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return domain.ErrListingNotFound
	}

	before := *listing
	if err := mergeChanges(listing, changes); err != nil {
		return err
	}

	if err := s.listingRepo.UpdateFields(ctx, listing, before.Version); err != nil {
		return err
	}
	listing.Version++

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     req.RequesterID,
		Action:     "APPLY_CHANGE_REQUEST",
		EntityType: "LISTING",
		EntityID:   listing.ID,
		OldValue:   before,
		NewValue:   listing,
	})

	return nil
}

// ApplyApprovedDeletion hard-deletes the listing an approved Deletion
// request points at. The request row itself is retained as audit record.
func (s *service) ApplyApprovedDeletion(ctx context.Context, req *domain.ChangeRequest) error {
	if req.RequestType != domain.RequestDeletion {
		return fmt.Errorf("%w: request %s is not a deletion request", domain.ErrValidation, req.ID)
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return domain.ErrListingNotFound
	}

	actor := domain.Actor{ID: req.RequesterID, Role: domain.RoleSeller}
	if req.ProcessedBy != nil {
		actor = domain.Actor{ID: *req.ProcessedBy, Role: domain.RoleAdmin}
	}
	return s.deleteListing(ctx, actor, listing, "APPLY_DELETION_REQUEST", req.AdminNotesForUser)
}

func (s *service) deleteListing(ctx context.Context, actor domain.Actor, listing *domain.Listing, action string, note *string) error {
	if err := s.listingRepo.Delete(ctx, listing.ID); err != nil {
		return err
	}

	if s.cleaner != nil {
		if err := s.cleaner.RemoveForListing(ctx, listing.ID); err != nil {
			s.log.Warn("attachment cleanup failed after listing delete",
				zap.String("listing_id", listing.ID.String()), zap.Error(err))
		}
	}

	var newValue interface{}
	if note != nil {
		newValue = map[string]string{"note": *note}
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     action,
		EntityType: "LISTING",
		EntityID:   listing.ID,
		OldValue:   listing,
		NewValue:   newValue,
	})

	s.enqueueModerated(ctx, actor, listing, true, note)
	return nil
}

// getForTransition loads the listing and checks the actor capability plus
// the allowed source statuses of the transition.
func (s *service) getForTransition(ctx context.Context, actor domain.Actor, listingID uuid.UUID, from ...domain.ListingStatus) (*domain.Listing, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}

	for _, status := range from {
		if listing.Status == status {
			return listing, nil
		}
	}
	return nil, fmt.Errorf("%w: listing is %s", domain.ErrInvalidTransition, listing.Status)
}

func (s *service) finish(ctx context.Context, actor domain.Actor, listing *domain.Listing, action string, oldStatus domain.ListingStatus, note *string) {
	newValue := map[string]string{"status": string(listing.Status)}
	if note != nil {
		newValue["note"] = *note
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     action,
		EntityType: "LISTING",
		EntityID:   listing.ID,
		OldValue:   map[string]string{"status": string(oldStatus)},
		NewValue:   newValue,
	})

	s.enqueueModerated(ctx, actor, listing, false, note)
}

func (s *service) enqueueModerated(ctx context.Context, actor domain.Actor, listing *domain.Listing, deleted bool, note *string) {
	payload := domain.ListingEventPayload{
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		Title:     listing.Title,
		Status:    listing.Status,
		ActorID:   &actor.ID,
		Deleted:   deleted,
		Note:      note,
	}

	if err := s.outbox.Enqueue(ctx, domain.EventListingModerated, payload); err != nil {
		s.log.Warn("failed to enqueue moderation event",
			zap.String("listing_id", listing.ID.String()), zap.Error(err))
	}
}

// decodeChanges enforces the object shape of requested_changes. Arrays,
// null and scalars are all rejected before any field is read.
func decodeChanges(raw json.RawMessage) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: requested_changes must be an object", domain.ErrValidation)
	}

	var changes map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &changes); err != nil {
		return nil, fmt.Errorf("%w: requested_changes must be an object", domain.ErrValidation)
	}
	return changes, nil
}

// mergeChanges applies the whitelisted fields onto the listing. Monetary
// values arrive as decimal major units and are stored as minor units.
// Unknown keys are ignored; a value of the wrong type fails the whole
// merge before anything is written.
func mergeChanges(listing *domain.Listing, changes map[string]json.RawMessage) error {
	setString := func(raw json.RawMessage, field string, dst *string) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: field %s must be a string", domain.ErrValidation, field)
		}
		*dst = v
		return nil
	}
	setOptString := func(raw json.RawMessage, field string, dst **string) error {
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: field %s must be a string or null", domain.ErrValidation, field)
		}
		*dst = v
		return nil
	}

	for field, raw := range changes {
		switch field {
		case "title":
			if err := setString(raw, field, &listing.Title); err != nil {
				return err
			}
		case "agency":
			if err := setString(raw, field, &listing.Agency); err != nil {
				return err
			}
		case "category":
			if err := setString(raw, field, &listing.Category); err != nil {
				return err
			}
		case "phase":
			if err := setOptString(raw, field, &listing.Phase); err != nil {
				return err
			}
		case "contract_number":
			if err := setOptString(raw, field, &listing.ContractNumber); err != nil {
				return err
			}
		case "description":
			if err := setOptString(raw, field, &listing.Description); err != nil {
				return err
			}
		case "value":
			var v decimal.Decimal
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("%w: field value must be a number", domain.ErrValidation)
			}
			listing.ValueCents = domain.ToMinorUnits(v)
			listing.Value = domain.FromMinorUnits(listing.ValueCents)
		}
	}

	return nil
}
