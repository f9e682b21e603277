package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/isurusajith68/stockwise-aiims-server/config"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/dto"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/handler"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
	"github.com/isurusajith68/stockwise-aiims-server/internal/mocks"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/password"
)

type handlerFixture struct {
	users       *mocks.MockUserRepository
	revocations *mocks.MockRevocationRepository
	twoFactor   *mocks.MockTwoFactorRepository
	tokens      *mocks.MockTokenGenerator
	hasher      *password.Hasher
	cfg         *config.Config
	authHandler *handler.AuthHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &handlerFixture{
		users:       mocks.NewMockUserRepository(ctrl),
		revocations: mocks.NewMockRevocationRepository(ctrl),
		twoFactor:   mocks.NewMockTwoFactorRepository(ctrl),
		tokens:      mocks.NewMockTokenGenerator(ctrl),
		hasher:      password.NewHasher(bcrypt.MinCost),
		cfg:         &config.Config{Env: "development"},
	}

	twoFactorService := service.NewTwoFactorService(f.twoFactor, f.users, f.hasher, "STOCKWISE", zap.NewNop())
	userService := service.NewUserService(f.users, f.revocations, twoFactorService,
		f.tokens, f.hasher, f.cfg, zap.NewNop())
	f.authHandler = handler.NewAuthHandler(userService, f.cfg)

	return f
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (int, *handler.Response) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope handler.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, &envelope
}

func TestRegisterHandler(t *testing.T) {
	f := newHandlerFixture(t)
	app := fiber.New()
	app.Post("/register", f.authHandler.Register)

	t.Run("success", func(t *testing.T) {
		f.users.EXPECT().CreateWithHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Generate(gomock.Any(), constant.RoleUser).
			Return("issued-token", time.Now().Add(24*time.Hour), nil)

		code, resp := postJSON(t, app, "/register", dto.RegisterInput{
			Username: "alice",
			Email:    "Alice@Example.com",
			Password: "Aa1!aaaa",
		})

		assert.Equal(t, fiber.StatusCreated, code)
		assert.Equal(t, "success", resp.Status)
	})

	t.Run("bad request on invalid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/register", bytes.NewReader([]byte("{invalid")))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req, -1)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("weak password", func(t *testing.T) {
		code, resp := postJSON(t, app, "/register", dto.RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "short",
		})

		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "fail", resp.Status)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f.users.EXPECT().CreateWithHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(autherr.ErrEmailAlreadyInUse)

		code, _ := postJSON(t, app, "/register", dto.RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Aa1!aaaa",
		})

		assert.Equal(t, fiber.StatusConflict, code)
	})
}

func TestLoginHandler(t *testing.T) {
	f := newHandlerFixture(t)
	app := fiber.New()
	app.Post("/login", f.authHandler.Login)

	hash, err := f.hasher.Hash("Aa1!aaaa")
	require.NoError(t, err)
	user := &domain.User{
		ID:           "user-123",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         constant.RoleUser,
		IsActive:     true,
	}

	t.Run("success", func(t *testing.T) {
		f.users.EXPECT().GetByIdentifier(gomock.Any(), "alice").Return(user, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), user.ID).Return(nil, nil)
		f.users.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Generate(user.ID, user.Role).
			Return("issued-token", time.Now().Add(24*time.Hour), nil)
		f.users.EXPECT().RecordLoginAttempt(gomock.Any(), gomock.Any()).Return(nil)

		code, resp := postJSON(t, app, "/login", dto.LoginInput{Identifier: "alice", Password: "Aa1!aaaa"})

		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, "success", resp.Status)
	})

	t.Run("unauthorized on wrong password", func(t *testing.T) {
		f.users.EXPECT().GetByIdentifier(gomock.Any(), "alice").Return(user, nil)
		f.users.EXPECT().RecordLoginAttempt(gomock.Any(), gomock.Any()).Return(nil)

		code, resp := postJSON(t, app, "/login", dto.LoginInput{Identifier: "alice", Password: "wrong"})

		assert.Equal(t, fiber.StatusUnauthorized, code)
		assert.Equal(t, "fail", resp.Status)
	})

	t.Run("two-factor soft signal carries no token", func(t *testing.T) {
		cred := &domain.TwoFactorCredential{UserID: user.ID, Secret: "SECRET", IsEnabled: true}

		f.users.EXPECT().GetByIdentifier(gomock.Any(), "alice").Return(user, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), user.ID).Return(cred, nil)
		f.users.EXPECT().RecordLoginAttempt(gomock.Any(), gomock.Any()).Return(nil)

		body, _ := json.Marshal(dto.LoginInput{Identifier: "alice", Password: "Aa1!aaaa"})
		req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var envelope struct {
			Status string          `json:"status"`
			Data   dto.LoginOutput `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.True(t, envelope.Data.Require2FA)
		assert.Empty(t, envelope.Data.AccessToken)
	})

	t.Run("two-factor code arrives in the token field", func(t *testing.T) {
		// Wire-level check: clients send the code as "token", the same field
		// name the enrollment verify endpoint uses.
		cred := &domain.TwoFactorCredential{
			UserID:      user.ID,
			Secret:      "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			IsEnabled:   true,
			BackupCodes: []string{"BACKUP99"},
		}

		f.users.EXPECT().GetByIdentifier(gomock.Any(), "alice").Return(user, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), user.ID).Return(cred, nil).Times(2)
		f.twoFactor.EXPECT().ConsumeBackupCode(gomock.Any(), user.ID, "BACKUP99").Return(true, nil)
		f.users.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Generate(user.ID, user.Role).
			Return("issued-token", time.Now().Add(24*time.Hour), nil)
		f.users.EXPECT().RecordLoginAttempt(gomock.Any(), gomock.Any()).Return(nil)

		body := []byte(`{"identifier":"alice","password":"Aa1!aaaa","token":"BACKUP99"}`)
		req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var envelope struct {
			Data dto.LoginOutput `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.Equal(t, "issued-token", envelope.Data.AccessToken)
		assert.False(t, envelope.Data.Require2FA)
	})

	t.Run("bad request on invalid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte("{invalid")))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req, -1)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogoutHandler(t *testing.T) {
	f := newHandlerFixture(t)

	// Logout reads the token from locals populated by the auth middleware;
	// a stand-in middleware injects it here.
	app := fiber.New()
	app.Post("/logout", func(c *fiber.Ctx) error {
		c.Locals(constant.LocalToken, c.Get("X-Test-Token"))
		return c.Next()
	}, f.authHandler.Logout)

	logout := func(t *testing.T, token string) int {
		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("X-Test-Token", token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("live token lands in the ledger", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		claims := &service.JWTCustomClaims{
			UserID:           "user-123",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiry)},
		}

		f.tokens.EXPECT().Decode("live-token").Return(claims, nil)
		f.revocations.EXPECT().Revoke(gomock.Any(), "live-token", gomock.Any(), "user-123").Return(nil)

		assert.Equal(t, fiber.StatusOK, logout(t, "live-token"))
	})

	t.Run("expired token is a no-op", func(t *testing.T) {
		claims := &service.JWTCustomClaims{
			UserID:           "user-123",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		}

		f.tokens.EXPECT().Decode("stale-token").Return(claims, nil)

		assert.Equal(t, fiber.StatusOK, logout(t, "stale-token"))
	})

	t.Run("undecodable token is a no-op", func(t *testing.T) {
		f.tokens.EXPECT().Decode("garbage").Return(nil, errors.New("malformed"))

		assert.Equal(t, fiber.StatusOK, logout(t, "garbage"))
	})
}

func TestRefreshHandler(t *testing.T) {
	f := newHandlerFixture(t)

	app := fiber.New()
	app.Post("/refresh", func(c *fiber.Ctx) error {
		c.Locals(constant.LocalUserID, "user-123")
		return c.Next()
	}, f.authHandler.Refresh)

	t.Run("success", func(t *testing.T) {
		user := &domain.User{ID: "user-123", Username: "alice", Role: constant.RoleUser}

		f.users.EXPECT().GetByID(gomock.Any(), "user-123").Return(user, nil)
		f.tokens.EXPECT().Generate("user-123", constant.RoleUser).
			Return("fresh-token", time.Now().Add(24*time.Hour), nil)

		code, _ := postJSON(t, app, "/refresh", nil)
		assert.Equal(t, fiber.StatusOK, code)
	})

	t.Run("unknown identity", func(t *testing.T) {
		f.users.EXPECT().GetByID(gomock.Any(), "user-123").Return(nil, nil)

		code, _ := postJSON(t, app, "/refresh", nil)
		assert.Equal(t, fiber.StatusNotFound, code)
	})
}
