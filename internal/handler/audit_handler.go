package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) ListRecent(c *fiber.Ctx) error {
	logs, err := h.auditService.ListRecent(c.Context(), middleware.GetCurrentActor(c), c.QueryInt("limit"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"logs": logs})
}

func (h *AuditHandler) ListByEntity(c *fiber.Ctx) error {
	entityID, err := uuid.Parse(c.Params("entityId"))
	if err != nil {
		return middleware.BadRequest("Invalid entity ID")
	}

	params := getPaginationParams(c)
	logs, total, err := h.auditService.ListByEntity(c.Context(), middleware.GetCurrentActor(c), entityID, params)
	if err != nil {
		return err
	}

	return c.JSON(domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total))
}
