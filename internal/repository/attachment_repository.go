package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contract-exchange/internal/domain"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByListing(ctx context.Context, listingID uuid.UUID) ([]string, error)
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, listing_id, uploaded_by, file_name, file_size, mime_type, storage_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		attachment.ID, attachment.ListingID, attachment.UploadedBy,
		attachment.FileName, attachment.FileSize, attachment.MimeType,
		attachment.StoragePath,
	).Scan(&attachment.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	query := `SELECT * FROM attachments WHERE id = $1`

	err := r.db.GetContext(ctx, &attachment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	query := `SELECT * FROM attachments WHERE listing_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &attachments, query, listingID)
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

// DeleteByListing removes all attachment rows for a listing and returns
// their storage paths so the caller can clean up the object store.
func (r *attachmentRepository) DeleteByListing(ctx context.Context, listingID uuid.UUID) ([]string, error) {
	var paths []string
	query := `DELETE FROM attachments WHERE listing_id = $1 RETURNING storage_path`
	err := r.db.SelectContext(ctx, &paths, query, listingID)
	return paths, err
}
