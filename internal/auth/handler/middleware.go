package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
)

const localClaims = "claims"

type AuthMiddleware struct {
	users       domain.UserRepository
	revocations domain.RevocationRepository
	tokens      service.TokenGenerator
	// refreshThreshold is the remaining lifetime under which a replacement
	// token is issued out of band.
	refreshThreshold time.Duration
	log              *zap.Logger
}

func NewAuthMiddleware(
	users domain.UserRepository,
	revocations domain.RevocationRepository,
	tokens service.TokenGenerator,
	refreshThreshold time.Duration,
	log *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		users:            users,
		revocations:      revocations,
		tokens:           tokens,
		refreshThreshold: refreshThreshold,
		log:              log,
	}
}

func extractToken(authHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[len("Bearer "):]
	}
	return authHeader
}

// RequireAuth checks the revocation ledger before trusting signature
// verification: a cryptographically valid token that was logged out must
// still be rejected.
func (m *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return respondError(c, autherr.ErrNoToken, false)
	}

	token := extractToken(authHeader)

	revoked, err := m.revocations.IsRevoked(c.Context(), token)
	if err != nil {
		m.log.Error("revocation lookup failed", zap.Error(err))
		return respondError(c, err, false)
	}
	if revoked {
		return respondError(c, autherr.ErrTokenRevoked, false)
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return respondError(c, autherr.ErrTokenInvalid, false)
	}

	c.Locals(constant.LocalUserID, claims.UserID)
	c.Locals(constant.LocalRole, claims.Role)
	c.Locals(constant.LocalToken, token)
	c.Locals(localClaims, claims)

	return c.Next()
}

// RequireActive loads the account and rejects inactive or deleted ones.
// Runs after RequireAuth.
func (m *AuthMiddleware) RequireActive(c *fiber.Ctx) error {
	userID, _ := c.Locals(constant.LocalUserID).(string)

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err, false)
	}
	if user == nil {
		return respondError(c, autherr.ErrUserNotFound, false)
	}
	if !user.IsActive {
		return respondError(c, autherr.ErrInactiveAccount, false)
	}

	return c.Next()
}

func (m *AuthMiddleware) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userRole, _ := c.Locals(constant.LocalRole).(string); userRole != role {
			return respondError(c, autherr.ErrAdminRequired, false)
		}
		return c.Next()
	}
}

// SilentRefresh surfaces a replacement token via a response header when the
// presented token is close to expiry. The old token is not revoked; both
// stay valid until their own expiries.
func (m *AuthMiddleware) SilentRefresh(c *fiber.Ctx) error {
	claims, ok := c.Locals(localClaims).(*service.JWTCustomClaims)
	if !ok || claims.ExpiresAt == nil {
		return c.Next()
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining > 0 && remaining < m.refreshThreshold {
		newToken, _, err := m.tokens.Generate(claims.UserID, claims.Role)
		if err != nil {
			m.log.Warn("silent refresh failed", zap.Error(err))
		} else {
			c.Set(constant.RefreshTokenHeader, newToken)
		}
	}

	return c.Next()
}
