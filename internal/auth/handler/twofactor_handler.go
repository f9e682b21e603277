package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/isurusajith68/stockwise-aiims-server/config"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/dto"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
)

type TwoFactorHandler struct {
	twoFactor *service.TwoFactorService
	cfg       *config.Config
}

func NewTwoFactorHandler(twoFactor *service.TwoFactorService, cfg *config.Config) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor, cfg: cfg}
}

func (h *TwoFactorHandler) Setup(c *fiber.Ctx) error {
	userID, _ := c.Locals(constant.LocalUserID).(string)

	out, err := h.twoFactor.Setup(c.Context(), userID)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Two-factor authentication setup initiated", out)
}

func (h *TwoFactorHandler) Verify(c *fiber.Ctx) error {
	var input dto.TwoFactorVerifyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Status:  "fail",
			Message: "invalid input",
		})
	}

	userID, _ := c.Locals(constant.LocalUserID).(string)

	codes, err := h.twoFactor.Confirm(c.Context(), userID, input.Code)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Two-factor authentication enabled successfully",
		dto.TwoFactorVerifyOutput{BackupCodes: codes})
}

func (h *TwoFactorHandler) Disable(c *fiber.Ctx) error {
	var input dto.TwoFactorDisableInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Status:  "fail",
			Message: "invalid input",
		})
	}

	userID, _ := c.Locals(constant.LocalUserID).(string)

	if err := h.twoFactor.Disable(c.Context(), userID, input.Password); err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Two-factor authentication disabled successfully", nil)
}

func (h *TwoFactorHandler) Status(c *fiber.Ctx) error {
	userID, _ := c.Locals(constant.LocalUserID).(string)

	enabled, err := h.twoFactor.Status(c.Context(), userID)
	if err != nil {
		return respondError(c, err, h.cfg.IsProduction())
	}

	return respond(c, fiber.StatusOK, "Two-factor authentication status",
		dto.TwoFactorStatusOutput{IsEnabled: enabled})
}
