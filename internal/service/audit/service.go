package audit

import (
	"context"

	"github.com/google/uuid"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/repository"
)

type Service interface {
	ListRecent(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditLog, error)
	ListByEntity(ctx context.Context, actor domain.Actor, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{auditRepo: auditRepo}
}

func (s *service) ListRecent(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditLog, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.auditRepo.ListRecent(ctx, limit)
}

func (s *service) ListByEntity(ctx context.Context, actor domain.Actor, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.auditRepo.ListByEntity(ctx, entityID, params)
}
