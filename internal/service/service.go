package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"contract-exchange/internal/config"
	"contract-exchange/internal/repository"
	"contract-exchange/internal/service/attachment"
	"contract-exchange/internal/service/audit"
	"contract-exchange/internal/service/auth"
	"contract-exchange/internal/service/bulk"
	"contract-exchange/internal/service/changerequest"
	"contract-exchange/internal/service/dashboard"
	"contract-exchange/internal/service/email"
	"contract-exchange/internal/service/inquiry"
	"contract-exchange/internal/service/listing"
	"contract-exchange/internal/service/moderation"
	"contract-exchange/internal/service/notification"
	"contract-exchange/internal/service/outbox"
	"contract-exchange/internal/service/user"
)

type Services struct {
	Auth          auth.Service
	User          user.Service
	Listing       listing.Service
	Moderation    moderation.Service
	ChangeRequest changerequest.Service
	Bulk          bulk.Service
	Attachment    attachment.Service
	Inquiry       inquiry.Service
	Email         email.Service
	Audit         audit.Service
	Notification  notification.Service
	Outbox        outbox.Service
	Dashboard     dashboard.Service
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, cfg *config.Config, log *zap.Logger) *Services {
	emailService := email.NewService(cfg)
	outboxService := outbox.NewService(repos.Outbox, log)
	authService := auth.NewService(repos.User, repos.Session, emailService, cfg, log)
	userService := user.NewService(repos.User, repos.AuditLog)
	auditService := audit.NewService(repos.AuditLog)

	moderationService := moderation.NewService(repos.Listing, repos.AuditLog, outboxService, log)
	attachmentService := attachment.NewService(repos.Attachment, repos.Listing, minioClient, cfg, log)
	moderationService.SetAttachmentCleaner(attachmentService)

	listingService := listing.NewService(repos.Listing, repos.AuditLog, outboxService, redisClient, log)
	changeRequestService := changerequest.NewService(repos.ChangeRequest, repos.Listing, moderationService, outboxService, log)
	bulkService := bulk.NewService(repos.Listing, moderationService, cfg.BulkBatchSize, log)
	inquiryService := inquiry.NewService(repos.Inquiry, repos.Listing, outboxService, log)
	notificationService := notification.NewService(repos.Notification, repos.User, emailService, log)
	dashboardService := dashboard.NewService(repos.Listing, repos.ChangeRequest, redisClient)

	return &Services{
		Auth:          authService,
		User:          userService,
		Listing:       listingService,
		Moderation:    moderationService,
		ChangeRequest: changeRequestService,
		Bulk:          bulkService,
		Attachment:    attachmentService,
		Inquiry:       inquiryService,
		Email:         emailService,
		Audit:         auditService,
		Notification:  notificationService,
		Outbox:        outboxService,
		Dashboard:     dashboardService,
	}
}
