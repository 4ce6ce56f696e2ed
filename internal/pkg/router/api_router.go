package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/lumeboard/lumeboard/app/controllers"
	"github.com/lumeboard/lumeboard/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	v1 := api.Group("/v1")

	// Auth
	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", middleware.RequireAPISessionAuth, controllers.HandleLogout)

	// Payments
	v1.Post("/payments/verify", middleware.RequireAPISessionAuth, controllers.HandleVerifyPayment)

	// User
	v1.Get("/user/entitlements", middleware.RequireAPISessionAuth, controllers.HandleGetEntitlements)

	// Displays
	v1.Post("/displays", middleware.RequireAPISessionAuth, controllers.HandleCreateDisplay)
	v1.Put("/displays", middleware.RequireAPISessionAuth, controllers.HandleUpdateDisplay)
	v1.Get("/displays/me", middleware.RequireAPISessionAuth, controllers.HandleGetMyDisplay)
	v1.Get("/displays/:sharelink", controllers.HandleGetDisplayByShareLink)

	// Admin
	admin := v1.Group("/admin", middleware.RequireAPIAdminAuth)
	admin.Post("/entitlements", controllers.HandleAdminIssueEntitlement)
	admin.Get("/notifications", controllers.HandleAdminListNotifications)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
