package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patholens/patholens-api/internal/config"
)

// RegisterStaticRoutes serves uploaded files from local storage. When uploads
// live behind a CDN or object store, PUBLIC_BASE_URL points clients there
// instead and this mount is just unused.
func RegisterStaticRoutes(app *fiber.App, cfg config.Config) {
	app.Static("/files", cfg.StoragePath, fiber.Static{
		Browse:    false,
		MaxAge:    3600,
		ByteRange: true,
	})
}
