package syncRoutes

import (
	syncController "lmsync/controllers/sync"
	"lmsync/middleware"
	validators "lmsync/validators/sync"

	"github.com/gofiber/fiber/v2"
)

// SetupSyncRoutes sets up all sync trigger routes
func SetupSyncRoutes(app *fiber.App) {
	syncGroup := app.Group("/sync")

	// Trigger one course's pipeline
	syncGroup.Post("/course/:id", middleware.JWTMiddleware, validators.SyncCourse(), syncController.SyncCourse)

	// Rebuild derived statistics from persisted records only
	syncGroup.Post("/course/:id/statistics", middleware.JWTMiddleware, validators.SyncCourse(), syncController.RecomputeStatistics)

	// Trigger a fleet sync over all visible courses
	syncGroup.Post("/courses", middleware.JWTMiddleware, syncController.SyncAllCourses)

	// Past runs
	syncGroup.Get("/history", middleware.JWTMiddleware, validators.SyncHistory(), syncController.SyncHistory)
}
