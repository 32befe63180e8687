package reportsValidator

import (
	"lmsync/middleware"
	"lmsync/models"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

func StudentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		studentIDStr := strings.TrimSpace(c.Params("id"))
		if studentIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Student ID is required!", nil)
		}

		studentID, err := strconv.Atoi(studentIDStr)
		if err != nil || studentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Student ID!", nil)
		}

		c.Locals("studentID", studentID)
		return c.Next()
	}
}

func ReportList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReportList", reqData)
		return c.Next()
	}
}

func StudentQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page             *int     `json:"page"`
			Limit            *int     `json:"limit"`
			PerformanceLevel string   `json:"performance_level"`
			Active           *bool    `json:"active"`
			MinCompletion    *float64 `json:"min_completion"`
			MaxCompletion    *float64 `json:"max_completion"`
			Search           string   `json:"search"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if reqData.PerformanceLevel != "" {
			switch reqData.PerformanceLevel {
			case models.LevelExcellent, models.LevelGood, models.LevelAverage, models.LevelBelowAverage, models.LevelPoor:
			default:
				errors["performance_level"] = "Unknown performance level!"
			}
		}
		if reqData.MinCompletion != nil && (*reqData.MinCompletion < 0 || *reqData.MinCompletion > 100) {
			errors["min_completion"] = "Must be between 0 and 100!"
		}
		if reqData.MaxCompletion != nil && (*reqData.MaxCompletion < 0 || *reqData.MaxCompletion > 100) {
			errors["max_completion"] = "Must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStudentQuery", reqData)
		return c.Next()
	}
}

func ActivityQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page         *int   `json:"page"`
			Limit        *int   `json:"limit"`
			ActivityType string `json:"activity_type"`
			Section      *int   `json:"section"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if reqData.Section != nil && *reqData.Section < 0 {
			errors["section"] = "Section must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedActivityQuery", reqData)
		return c.Next()
	}
}

func CompletionQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page       *int   `json:"page"`
			Limit      *int   `json:"limit"`
			StudentID  *int   `json:"student_id"`
			ActivityID *int   `json:"activity_id"`
			State      *int   `json:"state"`
			From       string `json:"from"`
			To         string `json:"to"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if reqData.StudentID != nil && *reqData.StudentID <= 0 {
			errors["student_id"] = "Invalid student id!"
		}
		if reqData.ActivityID != nil && *reqData.ActivityID <= 0 {
			errors["activity_id"] = "Invalid activity id!"
		}
		if reqData.State != nil && (*reqData.State < models.StateIncomplete || *reqData.State > models.StateCompleteFailed) {
			errors["state"] = "State must be between 0 and 3!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCompletionQuery", reqData)
		return c.Next()
	}
}
