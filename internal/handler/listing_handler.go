package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/service/listing"
)

type ListingHandler struct {
	listingService listing.Service
}

func NewListingHandler(listingService listing.Service) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateListingInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.listingService.Create(c.Context(), middleware.GetCurrentActor(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	var input domain.UpdateListingInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.listingService.Update(c.Context(), middleware.GetCurrentActor(c), listingID, input)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	found, err := h.listingService.GetByID(c.Context(), middleware.GetCurrentActor(c), listingID)
	if err != nil {
		return err
	}

	return c.JSON(found)
}

func (h *ListingHandler) ListMine(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	listings, total, err := h.listingService.ListMine(c.Context(), middleware.GetCurrentActor(c), params)
	if err != nil {
		return err
	}

	return c.JSON(domain.NewPaginatedResponse(listings, params.Page, params.PageSize, total))
}

func (h *ListingHandler) ListAdmin(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	filter := domain.ListingFilter{Query: c.Query("q")}
	if s := c.Query("status"); s != "" {
		status := domain.ListingStatus(s)
		if !status.IsValid() {
			return middleware.BadRequest("Invalid status filter")
		}
		filter.Status = &status
	}
	if owner := c.Query("owner_id"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			return middleware.BadRequest("Invalid owner ID")
		}
		filter.OwnerID = &ownerID
	}

	listings, total, err := h.listingService.ListAdmin(c.Context(), middleware.GetCurrentActor(c), filter, params)
	if err != nil {
		return err
	}

	return c.JSON(domain.NewPaginatedResponse(listings, params.Page, params.PageSize, total))
}

// Browse is the public marketplace view; no auth required.
func (h *ListingHandler) Browse(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.listingService.Browse(c.Context(), c.Query("q"), params)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *ListingHandler) MarkSold(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	updated, err := h.listingService.MarkSold(c.Context(), middleware.GetCurrentActor(c), listingID)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}
