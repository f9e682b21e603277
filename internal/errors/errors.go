package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInactiveAccount      = errors.New("account is inactive")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUsernameAlreadyInUse = errors.New("username already in use")
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrWeakPassword         = errors.New("password does not meet complexity requirements")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactor     = errors.New("invalid two-factor code")
	ErrTwoFactorNotSetUp    = errors.New("two-factor authentication not set up")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrNoToken              = errors.New("no token provided")
	ErrAdminRequired        = errors.New("requires admin privileges")
)

// StatusCode maps a service error onto its outward HTTP status category.
// Anything unmapped is treated as an internal failure.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTwoFactorNotSetUp):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInactiveAccount), errors.Is(err, ErrAdminRequired):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidTwoFactor), errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrNoToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrUsernameAlreadyInUse), errors.Is(err, ErrEmailAlreadyInUse):
		return fiber.StatusConflict
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
