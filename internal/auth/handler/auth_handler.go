package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/isurusajith68/stockwise-aiims-server/config"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/dto"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
)

type AuthHandler struct {
	userService *service.UserService
	cfg         *config.Config
}

func NewAuthHandler(userService *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{userService: userService, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Status:  "fail",
			Message: "invalid input",
		})
	}

	input.IPAddress, input.DeviceInfo, input.Location = clientMeta(c)

	out, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusCreated, "User registered successfully!", out)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Status:  "fail",
			Message: "invalid input",
		})
	}

	input.IPAddress, input.DeviceInfo, input.Location = clientMeta(c)

	out, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	if out.Require2FA {
		return respond(c, fiber.StatusOK, "Two-factor authentication required", out)
	}

	return respond(c, fiber.StatusOK, "Login successful", out)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	userID, _ := c.Locals(constant.LocalUserID).(string)

	out, err := h.userService.Refresh(c.Context(), userID)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Token refreshed successfully", out)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(constant.LocalToken).(string)

	if err := h.userService.Logout(c.Context(), token); err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}

// clientMeta captures request network and device metadata for the audit
// trail. Geo enrichment is left to an upstream proxy; its header is passed
// through when present.
func clientMeta(c *fiber.Ctx) (ip, device, location string) {
	ip = c.IP()
	device = c.Get(fiber.HeaderUserAgent)
	location = c.Get("X-Client-Location")
	if location == "" {
		location = "Unknown"
	}
	return ip, device, location
}
