package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contract-exchange/internal/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
	// UpdateStatus moves a listing between statuses. expectedVersion guards
	// the write; a zero-row update against an existing row means the row
	// changed since it was read.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, approvedBy *uuid.UUID, approvedAt *time.Time, expectedVersion int64) error
	// UpdateFields persists a merged listing under the same version guard.
	UpdateFields(ctx context.Context, listing *domain.Listing, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]domain.Listing, int64, error)
	CountByStatus(ctx context.Context, status domain.ListingStatus) (int64, error)
	GetLastActivityAt(ctx context.Context) (*time.Time, error)
}

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (id, owner_id, title, agency, category, phase,
			contract_number, description, value_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING version, submitted_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		listing.ID, listing.OwnerID, listing.Title, listing.Agency,
		listing.Category, listing.Phase, listing.ContractNumber,
		listing.Description, listing.ValueCents, listing.Status,
	).Scan(&listing.Version, &listing.SubmittedAt, &listing.UpdatedAt)
	if err != nil {
		return err
	}
	listing.HydrateValue()
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	query := `SELECT * FROM listings WHERE id = $1`

	err := r.db.GetContext(ctx, &listing, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	listing.HydrateValue()
	return &listing, nil
}

func (r *listingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM listings WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	if err := r.db.SelectContext(ctx, &listings, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].HydrateValue()
	}
	return listings, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, approvedBy *uuid.UUID, approvedAt *time.Time, expectedVersion int64) error {
	query := `
		UPDATE listings
		SET status = $2,
			approved_by = COALESCE($3, approved_by),
			approved_at = COALESCE($4, approved_at),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $5`

	res, err := r.db.ExecContext(ctx, query, id, status, approvedBy, approvedAt, expectedVersion)
	if err != nil {
		return err
	}
	return r.checkVersion(ctx, res, id)
}

func (r *listingRepository) UpdateFields(ctx context.Context, listing *domain.Listing, expectedVersion int64) error {
	query := `
		UPDATE listings
		SET title = $2, agency = $3, category = $4, phase = $5,
			contract_number = $6, description = $7, value_cents = $8,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $9`

	res, err := r.db.ExecContext(ctx, query,
		listing.ID, listing.Title, listing.Agency, listing.Category,
		listing.Phase, listing.ContractNumber, listing.Description,
		listing.ValueCents, expectedVersion,
	)
	if err != nil {
		return err
	}
	return r.checkVersion(ctx, res, listing.ID)
}

// checkVersion distinguishes a missing row from a stale version after a
// guarded update touched zero rows.
func (r *listingRepository) checkVersion(ctx context.Context, res sql.Result, id uuid.UUID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return domain.ErrListingNotFound
	}
	return domain.ErrVersionConflict
}

func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) List(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]domain.Listing, int64, error) {
	params.Validate()

	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where += ` AND owner_id = $` + strconv.Itoa(len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		p := strconv.Itoa(len(args))
		where += ` AND (title ILIKE $` + p + ` OR agency ILIKE $` + p + ` OR category ILIKE $` + p + `)`
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings`+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PageSize, params.Offset())
	query := `SELECT * FROM listings` + where +
		` ORDER BY submitted_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	var listings []domain.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, err
	}
	for i := range listings {
		listings[i].HydrateValue()
	}
	return listings, total, nil
}

func (r *listingRepository) CountByStatus(ctx context.Context, status domain.ListingStatus) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listings WHERE status = $1`, status)
	return count, err
}

func (r *listingRepository) GetLastActivityAt(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.GetContext(ctx, &last, `SELECT MAX(updated_at) FROM listings`)
	if err != nil || !last.Valid {
		return nil, err
	}
	return &last.Time, nil
}
