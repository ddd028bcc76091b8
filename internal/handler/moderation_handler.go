package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contract-exchange/internal/middleware"
	"contract-exchange/internal/pkg/inflight"
	"contract-exchange/internal/service/moderation"
)

type ModerationHandler struct {
	moderationService moderation.Service
	guard             *inflight.Guard
}

func NewModerationHandler(moderationService moderation.Service, guard *inflight.Guard) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, guard: guard}
}

type moderationNote struct {
	Note *string `json:"note,omitempty"`
}

func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	return h.moderate(c, "approve", func(c *fiber.Ctx, listingID uuid.UUID, _ *string) error {
		result, err := h.moderationService.Approve(c.Context(), middleware.GetCurrentActor(c), listingID)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})
}

func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	return h.moderate(c, "reject", func(c *fiber.Ctx, listingID uuid.UUID, note *string) error {
		result, err := h.moderationService.Reject(c.Context(), middleware.GetCurrentActor(c), listingID, note)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})
}

func (h *ModerationHandler) Hide(c *fiber.Ctx) error {
	return h.moderate(c, "hide", func(c *fiber.Ctx, listingID uuid.UUID, note *string) error {
		result, err := h.moderationService.Hide(c.Context(), middleware.GetCurrentActor(c), listingID, note)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})
}

func (h *ModerationHandler) Delete(c *fiber.Ctx) error {
	return h.moderate(c, "delete", func(c *fiber.Ctx, listingID uuid.UUID, note *string) error {
		if err := h.moderationService.Delete(c.Context(), middleware.GetCurrentActor(c), listingID, note); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Listing deleted"})
	})
}

// moderate wraps a moderation action with the in-flight guard so a
// double-clicked button does not run the same transition twice.
func (h *ModerationHandler) moderate(c *fiber.Ctx, action string, run func(c *fiber.Ctx, listingID uuid.UUID, note *string) error) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	var body moderationNote
	_ = c.BodyParser(&body)

	session := middleware.GetCurrentUserID(c).String()
	if err := h.guard.Acquire(c.Context(), session, action, listingID.String()); err != nil {
		return err
	}
	defer h.guard.Release(c.Context(), session, action, listingID.String())

	return run(c, listingID, body.Note)
}
