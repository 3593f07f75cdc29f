package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	applianceHandler *handlers.ApplianceHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth: stricter 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/signin", authHandler.Signin)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes carry their middleware per route so the public auth
	// endpoints above stay untouched.
	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.Identity()}

	api.Post("/auth/signout", append(protected, authHandler.Signout)...)
	api.Get("/auth/me", append(protected, authHandler.Me)...)

	appliances := api.Group("/appliances", protected...)
	appliances.Get("/", applianceHandler.List)
	appliances.Post("/", applianceHandler.Create)
	// Registered before /:id so "stats" is not taken for an id.
	appliances.Get("/stats/overview", applianceHandler.Stats)
	appliances.Get("/:id", applianceHandler.Get)
	appliances.Put("/:id", applianceHandler.Update)
	appliances.Delete("/:id", applianceHandler.Delete)

	appliances.Post("/:id/contacts", applianceHandler.AddSupportContact)
	appliances.Delete("/:id/contacts/:childId", applianceHandler.RemoveSupportContact)
	appliances.Post("/:id/tasks", applianceHandler.AddMaintenanceTask)
	appliances.Post("/:id/tasks/:childId/complete", applianceHandler.CompleteMaintenanceTask)
	appliances.Delete("/:id/tasks/:childId", applianceHandler.RemoveMaintenanceTask)
	appliances.Post("/:id/documents", applianceHandler.AddLinkedDocument)
	appliances.Delete("/:id/documents/:childId", applianceHandler.RemoveLinkedDocument)

	// Admin: unscoped appliance access
	admin := api.Group("/admin", append(protected, middleware.AdminRequired(db, cfg))...)
	admin.Get("/appliances", applianceHandler.AdminList)
	admin.Get("/appliances/stats", applianceHandler.AdminStats)
	admin.Delete("/appliances/:id", applianceHandler.AdminDelete)
}
