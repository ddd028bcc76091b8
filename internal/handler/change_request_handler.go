package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/pkg/inflight"
	"contract-exchange/internal/service/changerequest"
)

type ChangeRequestHandler struct {
	crService changerequest.Service
	guard     *inflight.Guard
}

func NewChangeRequestHandler(crService changerequest.Service, guard *inflight.Guard) *ChangeRequestHandler {
	return &ChangeRequestHandler{crService: crService, guard: guard}
}

func (h *ChangeRequestHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateChangeRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	request, err := h.crService.Create(c.Context(), middleware.GetCurrentActor(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func (h *ChangeRequestHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var status *domain.ChangeRequestStatus
	if s := c.Query("status"); s != "" {
		st := domain.ChangeRequestStatus(s)
		status = &st
	}

	requests, total, err := h.crService.List(c.Context(), middleware.GetCurrentActor(c), status, params)
	if err != nil {
		return err
	}

	return c.JSON(domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total))
}

func (h *ChangeRequestHandler) ListMine(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	requests, total, err := h.crService.ListMine(c.Context(), middleware.GetCurrentActor(c), params)
	if err != nil {
		return err
	}

	return c.JSON(domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total))
}

func (h *ChangeRequestHandler) Get(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	request, err := h.crService.GetByID(c.Context(), middleware.GetCurrentActor(c), requestID)
	if err != nil {
		return err
	}

	return c.JSON(request)
}

func (h *ChangeRequestHandler) Decide(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	var input domain.DecideChangeRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	session := middleware.GetCurrentUserID(c).String()
	if err := h.guard.Acquire(c.Context(), session, "decide", requestID.String()); err != nil {
		return err
	}
	defer h.guard.Release(c.Context(), session, "decide", requestID.String())

	request, err := h.crService.Decide(c.Context(), middleware.GetCurrentActor(c), requestID, input)
	if err != nil {
		return err
	}

	return c.JSON(request)
}
