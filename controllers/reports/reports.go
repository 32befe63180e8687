package reportsController

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"lmsync/database"
	"lmsync/middleware"
	"lmsync/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// GetCourses lists synced courses with headline counts.
func GetCourses(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedReportList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.Course{})

	var total int64
	db.Count(&total)

	var courses []models.Course
	if err := db.Offset(offset).Limit(limit).Order("course_id asc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	type CourseWithCounts struct {
		models.Course
		EnrolledStudents int64 `json:"enrolled_students"`
		TotalActivities  int64 `json:"total_activities"`
	}

	result := make([]CourseWithCounts, len(courses))
	for i, course := range courses {
		var enrolled, activities int64
		database.Database.Db.Model(&models.Enrollment{}).Where("course_id = ?", course.CourseID).Count(&enrolled)
		database.Database.Db.Model(&models.Activity{}).Where("course_id = ?", course.CourseID).Count(&activities)
		result[i] = CourseWithCounts{Course: course, EnrolledStudents: enrolled, TotalActivities: activities}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseOverview returns one course with aggregate completion figures.
func GetCourseOverview(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := database.Database.Db.Where("course_id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found! Sync it first.", nil)
	}

	db := database.Database.Db

	var enrolled int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled)

	var totalActivities, trackableActivities int64
	db.Model(&models.Activity{}).Where("course_id = ?", courseID).Count(&totalActivities)
	db.Model(&models.Activity{}).Where("course_id = ? AND has_completion_tracking = ?", courseID, true).Count(&trackableActivities)

	var completedStudents int64
	db.Model(&models.CourseCompletionSummary{}).Where("course_id = ? AND is_course_completed = ?", courseID, true).Count(&completedStudents)

	var avgCompletion float64
	db.Model(&models.CourseCompletionSummary{}).Where("course_id = ?", courseID).
		Select("COALESCE(AVG(completion_percentage), 0)").Scan(&avgCompletion)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course overview fetched successfully!", fiber.Map{
		"course":               course,
		"enrolled_students":    enrolled,
		"total_activities":     totalActivities,
		"trackable_activities": trackableActivities,
		"completed_students":   completedStudents,
		"average_completion":   avgCompletion,
	})
}

// GetCourseStudents returns the per-student statistics rows for a course.
func GetCourseStudents(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, _ := c.Locals("validatedStudentQuery").(*struct {
		Page             *int     `json:"page"`
		Limit            *int     `json:"limit"`
		PerformanceLevel string   `json:"performance_level"`
		Active           *bool    `json:"active"`
		MinCompletion    *float64 `json:"min_completion"`
		MaxCompletion    *float64 `json:"max_completion"`
		Search           string   `json:"search"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.StudentStatistics{}).Where("course_id = ?", courseID)

	if reqData != nil {
		if reqData.PerformanceLevel != "" {
			db = db.Where("performance_level = ?", reqData.PerformanceLevel)
		}
		if reqData.Active != nil {
			db = db.Where("is_active = ?", *reqData.Active)
		}
		if reqData.MinCompletion != nil {
			db = db.Where("completion_percentage >= ?", *reqData.MinCompletion)
		}
		if reqData.MaxCompletion != nil {
			db = db.Where("completion_percentage <= ?", *reqData.MaxCompletion)
		}
		if reqData.Search != "" {
			db = db.Where("student_name LIKE ?", "%"+reqData.Search+"%")
		}
	}

	var total int64
	db.Count(&total)

	var stats []models.StudentStatistics
	if err := db.Offset(offset).Limit(limit).Order("completion_percentage desc").Find(&stats).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch student statistics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student statistics fetched successfully!", fiber.Map{
		"students": stats,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseActivities returns the per-activity statistics rows for a course.
func GetCourseActivities(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, _ := c.Locals("validatedActivityQuery").(*struct {
		Page         *int   `json:"page"`
		Limit        *int   `json:"limit"`
		ActivityType string `json:"activity_type"`
		Section      *int   `json:"section"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.ActivityStatistics{}).Where("course_id = ?", courseID)

	if reqData != nil {
		if reqData.ActivityType != "" {
			db = db.Where("activity_type = ?", reqData.ActivityType)
		}
		if reqData.Section != nil {
			db = db.Where("section_number = ?", *reqData.Section)
		}
	}

	var total int64
	db.Count(&total)

	var stats []models.ActivityStatistics
	if err := db.Offset(offset).Limit(limit).Order("section_number asc, activity_id asc").Find(&stats).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch activity statistics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Activity statistics fetched successfully!", fiber.Map{
		"activities": stats,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseCompletions returns raw completion records for a course with
// optional filters and a completed-at date window.
func GetCourseCompletions(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, _ := c.Locals("validatedCompletionQuery").(*struct {
		Page       *int   `json:"page"`
		Limit      *int   `json:"limit"`
		StudentID  *int   `json:"student_id"`
		ActivityID *int   `json:"activity_id"`
		State      *int   `json:"state"`
		From       string `json:"from"`
		To         string `json:"to"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.ActivityCompletion{}).Where("course_id = ?", courseID)

	if reqData != nil {
		if reqData.StudentID != nil {
			db = db.Where("student_id = ?", *reqData.StudentID)
		}
		if reqData.ActivityID != nil {
			db = db.Where("activity_id = ?", *reqData.ActivityID)
		}
		if reqData.State != nil {
			db = db.Where("completion_state = ?", *reqData.State)
		}
		// Date window is expanded to full days.
		if reqData.From != "" {
			if from, err := now.Parse(reqData.From); err == nil {
				db = db.Where("time_completed >= ?", now.New(from).BeginningOfDay())
			}
		}
		if reqData.To != "" {
			if to, err := now.Parse(reqData.To); err == nil {
				db = db.Where("time_completed <= ?", now.New(to).EndOfDay())
			}
		}
	}

	var total int64
	db.Count(&total)

	var completions []models.ActivityCompletion
	if err := db.Offset(offset).Limit(limit).Order("student_id asc, activity_id asc").Find(&completions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch completions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completions fetched successfully!", fiber.Map{
		"completions": completions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetStudentReport returns one student's summaries and statistics across all
// synced courses.
func GetStudentReport(c *fiber.Ctx) error {
	studentID := c.Locals("studentID").(int)

	var enrollments []models.Enrollment
	if err := database.Database.Db.Where("student_id = ?", studentID).Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	if len(enrollments) == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found in any synced course!", nil)
	}

	type CourseReport struct {
		Course     models.Course                   `json:"course"`
		Summary    *models.CourseCompletionSummary `json:"summary"`
		Statistics *models.StudentStatistics       `json:"statistics"`
	}

	reports := make([]CourseReport, 0, len(enrollments))
	for _, e := range enrollments {
		var report CourseReport
		database.Database.Db.Where("course_id = ?", e.CourseID).First(&report.Course)

		var summary models.CourseCompletionSummary
		if err := database.Database.Db.Where("course_id = ? AND student_id = ?", e.CourseID, studentID).First(&summary).Error; err == nil {
			report.Summary = &summary
		}
		var stats models.StudentStatistics
		if err := database.Database.Db.Where("course_id = ? AND student_id = ?", e.CourseID, studentID).First(&stats).Error; err == nil {
			report.Statistics = &stats
		}
		reports = append(reports, report)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student report fetched successfully!", fiber.Map{
		"student_id":   studentID,
		"student_name": enrollments[0].StudentName,
		"courses":      reports,
	})
}

// ExportCourseSummaries streams the course's completion summaries as CSV.
func ExportCourseSummaries(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := database.Database.Db.Where("course_id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found! Sync it first.", nil)
	}

	var summaries []models.CourseCompletionSummary
	if err := database.Database.Db.Where("course_id = ?", courseID).Order("student_id asc").Find(&summaries).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch summaries!", nil)
	}

	// Enrollment identity fields joined in by student id.
	var enrollments []models.Enrollment
	database.Database.Db.Where("course_id = ?", courseID).Find(&enrollments)
	names := make(map[uint]models.Enrollment, len(enrollments))
	for _, e := range enrollments {
		names[e.StudentID] = e
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{"student_id", "student_name", "student_email", "total_activities", "completed_activities", "completion_percentage", "is_course_completed", "completion_date"})

	for _, s := range summaries {
		e := names[s.StudentID]
		completionDate := ""
		if s.CompletionDate != nil {
			completionDate = s.CompletionDate.Format("2006-01-02 15:04:05")
		}
		writer.Write([]string{
			fmt.Sprint(s.StudentID),
			e.StudentName,
			e.StudentEmail,
			fmt.Sprint(s.TotalActivities),
			fmt.Sprint(s.CompletedActivities),
			fmt.Sprintf("%.2f", s.CompletionPercentage),
			fmt.Sprint(s.IsCourseCompleted),
			completionDate,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build CSV!", nil)
	}

	filename := fmt.Sprintf("course_%d_completions.csv", courseID)
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(buf.Bytes())
}
