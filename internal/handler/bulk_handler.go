package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/pkg/inflight"
	"contract-exchange/internal/service/bulk"
)

type BulkHandler struct {
	bulkService bulk.Service
	guard       *inflight.Guard
}

func NewBulkHandler(bulkService bulk.Service, guard *inflight.Guard) *BulkHandler {
	return &BulkHandler{bulkService: bulkService, guard: guard}
}

func (h *BulkHandler) Execute(c *fiber.Ctx) error {
	var input domain.BulkOperationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if len(input.ListingIDs) == 0 {
		return middleware.BadRequest("listing_ids must not be empty")
	}

	// Guard on the id-set fingerprint, so the same double-submitted batch
	// is rejected while an unrelated batch runs fine.
	session := middleware.GetCurrentUserID(c).String()
	entity := fingerprint(input.ListingIDs)
	action := "bulk_" + strings.ToLower(string(input.Action))
	if err := h.guard.Acquire(c.Context(), session, action, entity); err != nil {
		return err
	}
	defer h.guard.Release(c.Context(), session, action, entity)

	result, err := h.bulkService.Execute(c.Context(), middleware.GetCurrentActor(c), input)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if result.Failed > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

func fingerprint(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:8])
}
