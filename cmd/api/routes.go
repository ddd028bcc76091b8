package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"contract-exchange/internal/config"
	"contract-exchange/internal/handler"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/service"
)

func setupRoutes(app *fiber.App, h *handler.Handlers, services *service.Services, redisClient *redis.Client, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	// Public marketplace surface.
	public := v1.Group("/public")
	public.Get("/listings", h.Listing.Browse)
	public.Get("/listings/:listingId", h.Listing.Get)

	auth := v1.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", h.Auth.Logout)
	auth.Get("/verify-email", h.Auth.VerifyEmail)
	auth.Post("/resend-verification", h.Auth.ResendVerification)
	auth.Post("/forgot-password", h.Auth.RequestPasswordReset)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	protected := v1.Group("", middleware.AuthRequired(services.Auth), middleware.RateLimit(redisClient, cfg.RateLimitPerMinute))

	users := protected.Group("/users")
	users.Get("/me", h.User.Me)
	users.Get("/", middleware.RequireRole("admin"), h.User.List)
	users.Post("/assign-role", middleware.RequireRole("admin"), h.User.AssignRole)

	listings := protected.Group("/listings")
	listings.Post("/", middleware.RequireRole("seller"), h.Listing.Create)
	listings.Get("/mine", h.Listing.ListMine)
	listings.Get("/:listingId", h.Listing.Get)
	listings.Put("/:listingId", h.Listing.Update)
	listings.Post("/:listingId/sold", h.Listing.MarkSold)

	listings.Post("/:listingId/attachments", h.Attachment.Upload)
	listings.Get("/:listingId/attachments", h.Attachment.List)
	listings.Post("/:listingId/inquiries", h.Inquiry.Create)
	listings.Get("/:listingId/inquiries", h.Inquiry.List)

	attachments := protected.Group("/attachments")
	attachments.Delete("/:attachmentId", h.Attachment.Delete)

	inquiries := protected.Group("/inquiries")
	inquiries.Delete("/:inquiryId", h.Inquiry.Delete)

	changeRequests := protected.Group("/change-requests")
	changeRequests.Post("/", h.ChangeRequest.Create)
	changeRequests.Get("/mine", h.ChangeRequest.ListMine)
	changeRequests.Get("/", middleware.RequireRole("admin"), h.ChangeRequest.List)
	changeRequests.Get("/:requestId", h.ChangeRequest.Get)
	changeRequests.Post("/:requestId/decide", middleware.RequireRole("admin"), h.ChangeRequest.Decide)

	admin := protected.Group("/admin", middleware.RequireRole("admin"))
	admin.Get("/listings", h.Listing.ListAdmin)
	admin.Post("/listings/:listingId/approve", h.Moderation.Approve)
	admin.Post("/listings/:listingId/reject", h.Moderation.Reject)
	admin.Post("/listings/:listingId/hide", h.Moderation.Hide)
	admin.Delete("/listings/:listingId", h.Moderation.Delete)
	admin.Post("/listings/bulk", h.Bulk.Execute)
	admin.Get("/dashboard", h.Dashboard.Stats)
	admin.Get("/audit/recent", h.Audit.ListRecent)
	admin.Get("/audit/entity/:entityId", h.Audit.ListByEntity)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.CountUnread)
	notifications.Patch("/:notificationId/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
}
