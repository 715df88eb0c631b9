package api

import (
	"github.com/bilgisen/folio/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, adminKey string) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api")

	api.Get("/health", handlers.HealthCheck)

	updates := api.Group("/updates")
	{
		updates.Get("", handlers.ListUpdates)
		updates.Get("/:slug", handlers.GetUpdate)
	}

	api.Get("/now", handlers.GetNow)
	api.Post("/contact", handlers.SubmitContact)

	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	{
		admin.Post("/cache/invalidate", handlers.InvalidateCache)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
