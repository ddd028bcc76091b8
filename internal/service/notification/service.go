// Package notification fans a delivered outbox event out to its
// recipients: an in-app notification row per recipient plus an email.
// Email failures are logged and never fail the delivery, so a broken
// mail provider cannot wedge the outbox.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/repository"
	"contract-exchange/internal/service/email"
)

type Service interface {
	Deliver(ctx context.Context, event domain.OutboxEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	email     email.Service
	log       *zap.Logger
}

func NewService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc email.Service, log *zap.Logger) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		email:     emailSvc,
		log:       log,
	}
}

// Deliver routes one outbox event. An error here reschedules the event,
// so only recipient resolution and in-app persistence count as failures.
func (s *service) Deliver(ctx context.Context, event domain.OutboxEvent) error {
	switch event.Type {
	case domain.EventListingSubmitted:
		return s.deliverListingSubmitted(ctx, event)
	case domain.EventListingModerated:
		return s.deliverListingModerated(ctx, event)
	case domain.EventChangeRequestCreated:
		return s.deliverChangeRequestCreated(ctx, event)
	case domain.EventChangeRequestDecided:
		return s.deliverChangeRequestDecided(ctx, event)
	case domain.EventInquiryCreated:
		return s.deliverInquiryCreated(ctx, event)
	default:
		// Unknown types are dropped rather than retried forever.
		s.log.Warn("dropping outbox event of unknown type", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *service) deliverListingSubmitted(ctx context.Context, event domain.OutboxEvent) error {
	var payload domain.ListingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode listing event: %w", err)
	}

	owner, err := s.userRepo.GetByID(ctx, payload.OwnerID)
	if err != nil {
		return err
	}
	ownerName := "A seller"
	if owner != nil {
		ownerName = owner.FullName
	}

	admins, err := s.userRepo.GetByRoles(ctx, []domain.UserRole{domain.RoleAdmin})
	if err != nil {
		return err
	}

	for _, admin := range admins {
		if err := s.createInApp(ctx, admin.ID, domain.NotifListingSubmitted,
			"New listing awaiting review",
			fmt.Sprintf("%s submitted %q for review", ownerName, payload.Title),
			event.Payload,
		); err != nil {
			return err
		}
		s.trySend(func() error {
			return s.email.SendListingSubmittedEmail(ctx, admin.Email, admin.FullName, ownerName, payload.Title)
		}, admin.Email)
	}
	return nil
}

func (s *service) deliverListingModerated(ctx context.Context, event domain.OutboxEvent) error {
	var payload domain.ListingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode listing event: %w", err)
	}

	owner, err := s.userRepo.GetByID(ctx, payload.OwnerID)
	if err != nil {
		return err
	}
	if owner == nil {
		// Owner gone; nothing to notify.
		return nil
	}

	status := string(payload.Status)
	if payload.Deleted {
		status = "REMOVED"
	}
	note := ""
	if payload.Note != nil {
		note = *payload.Note
	}

	message := fmt.Sprintf("%q is now %s", payload.Title, status)
	if note != "" {
		message = fmt.Sprintf("%s: %s", message, note)
	}

	if err := s.createInApp(ctx, owner.ID, domain.NotifListingModerated,
		"Your listing was reviewed", message, event.Payload,
	); err != nil {
		return err
	}
	s.trySend(func() error {
		return s.email.SendListingModeratedEmail(ctx, owner.Email, owner.FullName, payload.Title, status, note)
	}, owner.Email)
	return nil
}

func (s *service) deliverChangeRequestCreated(ctx context.Context, event domain.OutboxEvent) error {
	var payload domain.ChangeRequestEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode change request event: %w", err)
	}

	requester, err := s.userRepo.GetByID(ctx, payload.RequesterID)
	if err != nil {
		return err
	}
	requesterName := "A seller"
	if requester != nil {
		requesterName = requester.FullName
	}

	admins, err := s.userRepo.GetByRoles(ctx, []domain.UserRole{domain.RoleAdmin})
	if err != nil {
		return err
	}

	requestType := requestTypeLabel(payload.RequestType)
	for _, admin := range admins {
		if err := s.createInApp(ctx, admin.ID, domain.NotifChangeRequestCreated,
			"New change request",
			fmt.Sprintf("%s filed a %s request for %q", requesterName, requestType, payload.ListingTitle),
			event.Payload,
		); err != nil {
			return err
		}
		s.trySend(func() error {
			return s.email.SendChangeRequestEmail(ctx, admin.Email, admin.FullName, requesterName, requestType, payload.ListingTitle)
		}, admin.Email)
	}
	return nil
}

func (s *service) deliverChangeRequestDecided(ctx context.Context, event domain.OutboxEvent) error {
	var payload domain.ChangeRequestEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode change request event: %w", err)
	}

	requester, err := s.userRepo.GetByID(ctx, payload.RequesterID)
	if err != nil {
		return err
	}
	if requester == nil {
		return nil
	}

	requestType := requestTypeLabel(payload.RequestType)
	status := string(payload.Status)
	adminNote := ""
	if payload.AdminNotesForUser != nil {
		adminNote = *payload.AdminNotesForUser
	}

	message := fmt.Sprintf("Your %s request for %q was %s", requestType, payload.ListingTitle, status)
	if payload.ApplyFailed {
		message += ", but applying it hit a problem and an administrator will follow up"
	}

	if err := s.createInApp(ctx, requester.ID, domain.NotifChangeRequestDecided,
		"Your request was reviewed", message, event.Payload,
	); err != nil {
		return err
	}
	s.trySend(func() error {
		return s.email.SendChangeRequestDecidedEmail(ctx, requester.Email, requester.FullName, requestType, payload.ListingTitle, status, adminNote)
	}, requester.Email)
	return nil
}

func (s *service) deliverInquiryCreated(ctx context.Context, event domain.OutboxEvent) error {
	var payload domain.InquiryEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode inquiry event: %w", err)
	}

	owner, err := s.userRepo.GetByID(ctx, payload.OwnerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return nil
	}

	if err := s.createInApp(ctx, owner.ID, domain.NotifInquiryCreated,
		"New inquiry",
		fmt.Sprintf("A buyer asked about %q", payload.ListingTitle),
		event.Payload,
	); err != nil {
		return err
	}
	s.trySend(func() error {
		return s.email.SendInquiryEmail(ctx, owner.Email, owner.FullName, payload.ListingTitle)
	}, owner.Email)
	return nil
}

func (s *service) createInApp(ctx context.Context, userID uuid.UUID, notifType domain.NotificationType, title, message string, data json.RawMessage) error {
	notif := &domain.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	return s.notifRepo.Create(ctx, notif)
}

func (s *service) trySend(send func() error, recipient string) {
	if err := send(); err != nil {
		s.log.Warn("email delivery failed",
			zap.String("recipient", recipient), zap.Error(err))
	}
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	return s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
}

func (s *service) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func requestTypeLabel(t domain.ChangeRequestType) string {
	if t == domain.RequestDeletion {
		return "deletion"
	}
	return "change"
}
