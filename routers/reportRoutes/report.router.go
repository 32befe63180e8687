package reportRoutes

import (
	reportsController "lmsync/controllers/reports"
	"lmsync/middleware"
	validators "lmsync/validators/reports"

	"github.com/gofiber/fiber/v2"
)

// SetupReportRoutes sets up all reporting routes
func SetupReportRoutes(app *fiber.App) {
	reportGroup := app.Group("/reports")

	// Synced course catalogue
	reportGroup.Get("/courses", middleware.JWTMiddleware, validators.ReportList(), reportsController.GetCourses)

	// Per-course reporting
	reportGroup.Get("/course/:id/overview", middleware.JWTMiddleware, validators.CourseID(), reportsController.GetCourseOverview)
	reportGroup.Get("/course/:id/students", middleware.JWTMiddleware, validators.CourseID(), validators.StudentQuery(), reportsController.GetCourseStudents)
	reportGroup.Get("/course/:id/activities", middleware.JWTMiddleware, validators.CourseID(), validators.ActivityQuery(), reportsController.GetCourseActivities)
	reportGroup.Get("/course/:id/completions", middleware.JWTMiddleware, validators.CourseID(), validators.CompletionQuery(), reportsController.GetCourseCompletions)
	reportGroup.Get("/course/:id/export", middleware.JWTMiddleware, validators.CourseID(), reportsController.ExportCourseSummaries)

	// Per-student reporting across courses
	reportGroup.Get("/student/:id", middleware.JWTMiddleware, validators.StudentID(), reportsController.GetStudentReport)
}
