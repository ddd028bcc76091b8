package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contract-exchange/internal/domain"
)

type ChangeRequestRepository interface {
	Create(ctx context.Context, req *domain.ChangeRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error)
	List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error)
	// UpdateStatus decides a pending request. It only touches rows still in
	// PENDING, so a second concurrent decision updates zero rows and fails.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ChangeRequestStatus, processedBy uuid.UUID, adminNotes, adminNotesForUser *string) error
	SetApplyError(ctx context.Context, id uuid.UUID, applyError string) error
	CountPending(ctx context.Context) (int64, error)
}

type changeRequestRepository struct {
	db *sqlx.DB
}

func NewChangeRequestRepository(db *sqlx.DB) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

func (r *changeRequestRepository) Create(ctx context.Context, req *domain.ChangeRequest) error {
	query := `
		INSERT INTO change_requests (id, listing_id, requester_id, request_type,
			requested_changes, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.ListingID, req.RequesterID, req.RequestType,
		req.RequestedChanges, req.Reason, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *changeRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRequest, error) {
	var req domain.ChangeRequest
	query := `SELECT * FROM change_requests WHERE id = $1`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *changeRequestRepository) List(ctx context.Context, status *domain.ChangeRequestStatus, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	params.Validate()

	var total int64
	var requests []domain.ChangeRequest

	if status != nil {
		countQuery := `SELECT COUNT(*) FROM change_requests WHERE status = $1`
		if err := r.db.GetContext(ctx, &total, countQuery, *status); err != nil {
			return nil, 0, err
		}

		query := `
			SELECT * FROM change_requests
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &requests, query, *status, params.PageSize, params.Offset())
		return requests, total, err
	}

	countQuery := `SELECT COUNT(*) FROM change_requests`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM change_requests
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &requests, query, params.PageSize, params.Offset())
	return requests, total, err
}

func (r *changeRequestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, params domain.PaginationParams) ([]domain.ChangeRequest, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM change_requests WHERE requester_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, requesterID); err != nil {
		return nil, 0, err
	}

	var requests []domain.ChangeRequest
	query := `
		SELECT * FROM change_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &requests, query, requesterID, params.PageSize, params.Offset())
	return requests, total, err
}

func (r *changeRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ChangeRequestStatus, processedBy uuid.UUID, adminNotes, adminNotesForUser *string) error {
	query := `
		UPDATE change_requests
		SET status = $2, processed_by = $3, processed_at = NOW(),
			admin_notes = $4, admin_notes_for_user = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	res, err := r.db.ExecContext(ctx, query, id, status, processedBy, adminNotes, adminNotesForUser)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *changeRequestRepository) SetApplyError(ctx context.Context, id uuid.UUID, applyError string) error {
	query := `UPDATE change_requests SET apply_error = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, applyError)
	return err
}

func (r *changeRequestRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM change_requests WHERE status = 'PENDING'`)
	return count, err
}
