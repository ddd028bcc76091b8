package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contract-exchange/internal/middleware"
	"contract-exchange/internal/service/attachment"
)

const maxAttachmentSize = 25 << 20 // 25 MiB

type AttachmentHandler struct {
	attachmentService attachment.Service
}

func NewAttachmentHandler(attachmentService attachment.Service) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("Missing file")
	}
	if fileHeader.Size > maxAttachmentSize {
		return middleware.BadRequest("File too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return middleware.BadRequest("Cannot read file")
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	uploaded, err := h.attachmentService.Upload(c.Context(), middleware.GetCurrentActor(c), listingID, fileHeader.Filename, fileHeader.Size, mimeType, file)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

func (h *AttachmentHandler) List(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return middleware.BadRequest("Invalid listing ID")
	}

	attachments, err := h.attachmentService.ListByListing(c.Context(), middleware.GetCurrentActor(c), listingID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"attachments": attachments})
}

func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	attachmentID, err := uuid.Parse(c.Params("attachmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid attachment ID")
	}

	if err := h.attachmentService.Delete(c.Context(), middleware.GetCurrentActor(c), attachmentID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Attachment deleted"})
}
