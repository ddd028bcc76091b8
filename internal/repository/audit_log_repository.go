package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contract-exchange/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, old_value, new_value, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		log.ID, log.UserID, log.Action, log.EntityType, log.EntityID,
		log.OldValue, log.NewValue, log.IPAddress, log.UserAgent,
	).Scan(&log.CreatedAt)
}

func (r *auditLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	query := `
		SELECT a.*, u.full_name AS user_name
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1`

	err := r.db.SelectContext(ctx, &logs, query, limit)
	return logs, err
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE entity_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, entityID); err != nil {
		return nil, 0, err
	}

	var logs []domain.AuditLog
	query := `
		SELECT * FROM audit_logs
		WHERE entity_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &logs, query, entityID, params.PageSize, params.Offset())
	return logs, total, err
}

// CreateAuditLog marshals the before/after snapshots and writes an audit
// row, swallowing marshal errors so an unserializable value never blocks
// the operation being audited.
func CreateAuditLog(repo AuditLogRepository, ctx context.Context, input domain.CreateAuditLogInput) error {
	var oldValue, newValue json.RawMessage
	if input.OldValue != nil {
		if b, err := json.Marshal(input.OldValue); err == nil {
			oldValue = b
		}
	}
	if input.NewValue != nil {
		if b, err := json.Marshal(input.NewValue); err == nil {
			newValue = b
		}
	}

	return repo.Create(ctx, &domain.AuditLog{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
	})
}
