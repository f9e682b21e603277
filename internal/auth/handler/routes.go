package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isurusajith68/stockwise-aiims-server/pkg/constant"
)

func RegisterRoutes(app *fiber.App, auth *AuthHandler, twoFactor *TwoFactorHandler, users *UserHandler, mw *AuthMiddleware) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "STOCKWISE API",
			"version": "1.0.0",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", auth.Register)
	authGroup.Post("/login", auth.Login)
	authGroup.Post("/refresh", mw.RequireAuth, mw.SilentRefresh, auth.Refresh)
	authGroup.Post("/logout", mw.RequireAuth, auth.Logout)

	twoFactorGroup := api.Group("/2fa", mw.RequireAuth, mw.RequireActive, mw.SilentRefresh)
	twoFactorGroup.Get("/status", twoFactor.Status)
	twoFactorGroup.Post("/setup", twoFactor.Setup)
	twoFactorGroup.Post("/verify", twoFactor.Verify)
	twoFactorGroup.Post("/disable", twoFactor.Disable)

	userGroup := api.Group("/users", mw.RequireAuth, mw.RequireActive, mw.SilentRefresh)
	userGroup.Get("/profile", users.Profile)

	// Admin-only endpoints
	userGroup.Get("/", mw.RequireRole(constant.RoleAdmin), users.List)
	userGroup.Patch("/:id/active", mw.RequireRole(constant.RoleAdmin), users.SetActive)
}
