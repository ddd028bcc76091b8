package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contract-exchange/internal/domain"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *domain.Inquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Inquiry, error)
	ListByListing(ctx context.Context, listingID uuid.UUID, params domain.PaginationParams) ([]domain.Inquiry, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type inquiryRepository struct {
	db *sqlx.DB
}

func NewInquiryRepository(db *sqlx.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	query := `
		INSERT INTO inquiries (id, listing_id, author_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		inquiry.ID, inquiry.ListingID, inquiry.AuthorID, inquiry.Message,
	).Scan(&inquiry.CreatedAt, &inquiry.UpdatedAt)
}

func (r *inquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inquiry, error) {
	var inquiry domain.Inquiry
	query := `SELECT * FROM inquiries WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &inquiry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *inquiryRepository) ListByListing(ctx context.Context, listingID uuid.UUID, params domain.PaginationParams) ([]domain.Inquiry, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM inquiries WHERE listing_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, listingID); err != nil {
		return nil, 0, err
	}

	var inquiries []domain.Inquiry
	query := `
		SELECT * FROM inquiries
		WHERE listing_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &inquiries, query, listingID, params.PageSize, params.Offset())
	return inquiries, total, err
}

func (r *inquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE inquiries SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
