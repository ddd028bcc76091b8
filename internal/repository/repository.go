package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User          UserRepository
	Listing       ListingRepository
	ChangeRequest ChangeRequestRepository
	Attachment    AttachmentRepository
	Inquiry       InquiryRepository
	AuditLog      AuditLogRepository
	Notification  NotificationRepository
	Outbox        OutboxRepository
	Session       SessionRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Listing:       NewListingRepository(db),
		ChangeRequest: NewChangeRequestRepository(db),
		Attachment:    NewAttachmentRepository(db),
		Inquiry:       NewInquiryRepository(db),
		AuditLog:      NewAuditLogRepository(db),
		Notification:  NewNotificationRepository(db),
		Outbox:        NewOutboxRepository(db),
		Session:       NewSessionRepository(db),
	}
}
