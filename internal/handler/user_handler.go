package handler

import (
	"github.com/gofiber/fiber/v2"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/middleware"
	"contract-exchange/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	profile, err := h.userService.GetProfile(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.Context(), middleware.GetCurrentActor(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) AssignRole(c *fiber.Ctx) error {
	var input domain.AssignRoleInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.userService.AssignRole(c.Context(), middleware.GetCurrentActor(c), input)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}
