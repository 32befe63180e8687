package syncController

import (
	"errors"
	"lmsync/config"
	"lmsync/database"
	"lmsync/middleware"
	"lmsync/models"
	"lmsync/moodle"
	"lmsync/syncer"
	"time"

	"github.com/gofiber/fiber/v2"
)

// newService wires the sync service from the global config and database.
func newService() *syncer.Service {
	client := moodle.NewClient(
		config.AppConfig.MoodleBaseURL,
		config.AppConfig.MoodleToken,
		time.Duration(config.AppConfig.MoodleTimeoutSeconds)*time.Second,
	)
	return syncer.NewService(
		database.Database.Db,
		client,
		time.Duration(config.AppConfig.SyncStudentDelayMs)*time.Millisecond,
		config.AppConfig.SyncBatchSize,
	)
}

// SyncCourse triggers the full pipeline for one course.
func SyncCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	result, err := newService().SyncCourse(uint(courseID), models.TriggerManual)
	if err != nil {
		switch {
		case errors.Is(err, syncer.ErrCourseNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found in LMS!", nil)
		case errors.Is(err, syncer.ErrSyncInProgress):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A sync for this course is already running!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "LMS sync failed: "+err.Error(), nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course synced successfully!", fiber.Map{
		"results":                 result,
		"processing_time_seconds": result.ProcessingTimeSeconds,
	})
}

// SyncAllCourses triggers a fleet sync over every visible course.
func SyncAllCourses(c *fiber.Ctx) error {
	fleet, err := newService().SyncAll(models.TriggerManual)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to fetch course list from LMS: "+err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Fleet sync finished!", fiber.Map{
		"summary": fiber.Map{
			"total":   fleet.Total,
			"success": fleet.Success,
			"failed":  fleet.Failed,
		},
		"results":                 fleet.Results,
		"processing_time_seconds": fleet.ProcessingTimeSeconds,
	})
}

// RecomputeStatistics rebuilds derived summaries and statistics for a course
// from persisted records, without calling the LMS.
func RecomputeStatistics(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	// Only meaningful for a course we have synced before.
	var course models.Course
	if err := database.Database.Db.Where("course_id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course has not been synced yet!", nil)
	}

	if err := newService().RecomputeStatistics(uint(courseID)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to recompute statistics: "+err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Statistics recomputed successfully!", nil)
}

// SyncHistory lists past sync runs, newest first.
func SyncHistory(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedSyncHistory").(*struct {
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

	db := database.Database.Db.Model(&models.SyncLog{})

	var total int64
	db.Count(&total)

	var logs []models.SyncLog
	if err := db.Offset(offset).Limit(limit).Order("started_at desc").Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch sync history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sync history fetched successfully!", fiber.Map{
		"runs": logs,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
