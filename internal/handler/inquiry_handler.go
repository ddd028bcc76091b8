package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/service/inquiry"
)

type InquiryHandler struct {
	inquiryService inquiry.Service
}

func NewInquiryHandler(inquiryService inquiry.Service) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

func (h *InquiryHandler) Create(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	var input domain.CreateInquiryInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.inquiryService.Create(c.Context(), middleware.GetCurrentActor(c), listingID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *InquiryHandler) List(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	params := getPaginationParams(c)
	inquiries, total, err := h.inquiryService.ListByListing(c.Context(), middleware.GetCurrentActor(c), listingID, params)
	if err != nil {
		return err
	}

	return c.JSON(domain.NewPaginatedResponse(inquiries, params.Page, params.PageSize, total))
}

func (h *InquiryHandler) Delete(c *fiber.Ctx) error {
	inquiryID, err := uuid.Parse(c.Params("inquiryId"))
	if err != nil {
		return middleware.BadRequest("Invalid inquiry ID")
	}

	if err := h.inquiryService.Delete(c.Context(), middleware.GetCurrentActor(c), inquiryID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Inquiry deleted"})
}
