package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/pkg/validation"
	"contract-exchange/internal/repository"
)

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	AssignRole(ctx context.Context, actor domain.Actor, input domain.AssignRoleInput) (*domain.User, error)
}

type service struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
}

func NewService(userRepo repository.UserRepository, auditRepo repository.AuditLogRepository) Service {
	return &service{userRepo: userRepo, auditRepo: auditRepo}
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *service) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.userRepo.GetAllUsers(ctx)
}

func (s *service) AssignRole(ctx context.Context, actor domain.Actor, input domain.AssignRoleInput) (*domain.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if actor.ID == input.UserID {
		return nil, fmt.Errorf("%w: cannot change own role", domain.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	oldRole := user.Role
	if err := s.userRepo.AssignRole(ctx, input.UserID, input.Role); err != nil {
		return nil, err
	}
	user.Role = input.Role

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "ASSIGN_ROLE",
		EntityType: "USER",
		EntityID:   user.ID,
		OldValue:   map[string]string{"role": oldRole},
		NewValue:   map[string]string{"role": user.Role},
	})

	return user, nil
}
