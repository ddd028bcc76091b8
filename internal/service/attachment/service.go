// Package attachment stores contract documents in object storage and
// keeps their metadata next to the listing they belong to.
package attachment

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"contract-exchange/internal/config"
	"contract-exchange/internal/domain"
	"contract-exchange/internal/repository"
)

type Service interface {
	Upload(ctx context.Context, actor domain.Actor, listingID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Attachment, error)
	ListByListing(ctx context.Context, actor domain.Actor, listingID uuid.UUID) ([]domain.Attachment, error)
	Delete(ctx context.Context, actor domain.Actor, attachmentID uuid.UUID) error
	RemoveForListing(ctx context.Context, listingID uuid.UUID) error
}

type service struct {
	attachmentRepo repository.AttachmentRepository
	listingRepo    repository.ListingRepository
	minioClient    *minio.Client
	cfg            *config.Config
	log            *zap.Logger
}

func NewService(attachmentRepo repository.AttachmentRepository, listingRepo repository.ListingRepository, minioClient *minio.Client, cfg *config.Config, log *zap.Logger) Service {
	return &service{
		attachmentRepo: attachmentRepo,
		listingRepo:    listingRepo,
		minioClient:    minioClient,
		cfg:            cfg,
		log:            log,
	}
}

func (s *service) Upload(ctx context.Context, actor domain.Actor, listingID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Attachment, error) {
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

	attachmentID := uuid.New()
	storagePath := fmt.Sprintf("documents/%s/%s", time.Now().Format("2006/01"), attachmentID.String())

	_, err = s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, fileSize, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	attachment := &domain.Attachment{
		ID:          attachmentID,
		ListingID:   listingID,
		UploadedBy:  actor.ID,
		FileName:    fileName,
		FileSize:    fileSize,
		MimeType:    mimeType,
		StoragePath: storagePath,
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{})
		return nil, err
	}

	attachment.URL = s.getPublicURL(storagePath)
	return attachment, nil
}

func (s *service) ListByListing(ctx context.Context, actor domain.Actor, listingID uuid.UUID) ([]domain.Attachment, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	// Documents stay private until the listing is live.
	if listing.Status != domain.ListingActive && listing.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	attachments, err := s.attachmentRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	for i := range attachments {
		attachments[i].URL = s.getPublicURL(attachments[i].StoragePath)
	}
	return attachments, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, attachmentID uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if attachment == nil {
		return domain.ErrAttachmentNotFound
	}
	if attachment.UploadedBy != actor.ID && !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return err
	}

	_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, attachment.StoragePath, minio.RemoveObjectOptions{})
	return nil
}

// RemoveForListing drops every document of a deleted listing: rows first,
// then the stored objects best-effort.
func (s *service) RemoveForListing(ctx context.Context, listingID uuid.UUID) error {
	paths, err := s.attachmentRepo.DeleteByListing(ctx, listingID)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, path, minio.RemoveObjectOptions{}); err != nil {
			s.log.Warn("failed to remove stored object",
				zap.String("storage_path", path), zap.Error(err))
		}
	}
	return nil
}

func (s *service) getPublicURL(storagePath string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, url.PathEscape(storagePath))
}
