package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/isurusajith68/stockwise-aiims-server/config"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/dto"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
)

type UserHandler struct {
	userService *service.UserService
	cfg         *config.Config
}

func NewUserHandler(userService *service.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{userService: userService, cfg: cfg}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	userID, _ := c.Locals(constant.LocalUserID).(string)

	out, err := h.userService.Profile(c.Context(), userID)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Profile retrieved successfully", out)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}

	users, err := h.userService.ListUsers(c.Context(), limit, page*limit)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	var input dto.SetActiveInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Status:  "fail",
			Message: "invalid input",
		})
	}

	if err := h.userService.SetActive(c.Context(), c.Params("id"), input.IsActive); err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "User updated successfully", nil)
}
