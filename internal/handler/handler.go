package handler

import (
	"contract-exchange/internal/pkg/inflight"
	"contract-exchange/internal/service"
)

type Handlers struct {
	Auth          *AuthHandler
	User          *UserHandler
	Listing       *ListingHandler
	Moderation    *ModerationHandler
	ChangeRequest *ChangeRequestHandler
	Bulk          *BulkHandler
	Attachment    *AttachmentHandler
	Inquiry       *InquiryHandler
	Notification  *NotificationHandler
	Audit         *AuditHandler
	Dashboard     *DashboardHandler
}

func NewHandlers(services *service.Services, guard *inflight.Guard) *Handlers {
	return &Handlers{
		Auth:          NewAuthHandler(services.Auth),
		User:          NewUserHandler(services.User),
		Listing:       NewListingHandler(services.Listing),
		Moderation:    NewModerationHandler(services.Moderation, guard),
		ChangeRequest: NewChangeRequestHandler(services.ChangeRequest, guard),
		Bulk:          NewBulkHandler(services.Bulk, guard),
		Attachment:    NewAttachmentHandler(services.Attachment),
		Inquiry:       NewInquiryHandler(services.Inquiry),
		Notification:  NewNotificationHandler(services.Notification),
		Audit:         NewAuditHandler(services.Audit),
		Dashboard:     NewDashboardHandler(services.Dashboard),
	}
}
