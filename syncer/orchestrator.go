package syncer

import (
	"encoding/json"
	"fmt"
	"lmsync/models"
	"lmsync/moodle"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LMSClient is the slice of the LMS web-service vocabulary the sync pipeline
// consumes.
type LMSClient interface {
	GetCourses() ([]moodle.CourseInfo, error)
	GetEnrolledUsers(courseID uint) ([]moodle.EnrolledUser, error)
	GetCourseContents(courseID uint) ([]moodle.Section, error)
	GetActivitiesCompletionStatus(courseID, userID uint) ([]moodle.CompletionStatus, error)
	GetCourseCompletionStatus(courseID, userID uint) (*moodle.CourseCompletion, error)
}

// studentRoleID is the LMS's default archetype id for the student role.
const studentRoleID = 5

// Service drives the pull-flatten-upsert-aggregate pipeline for courses.
type Service struct {
	db           *gorm.DB
	client       LMSClient
	studentDelay time.Duration
	batchSize    int
}

// NewService builds a sync service. studentDelay is the pause between
// per-student completion fetches (politeness toward the LMS, not a
// correctness mechanism); batchSize bounds completion upsert payloads.
func NewService(db *gorm.DB, client LMSClient, studentDelay time.Duration, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Service{
		db:           db,
		client:       client,
		studentDelay: studentDelay,
		batchSize:    batchSize,
	}
}

// EntityTally counts upsert outcomes for one entity kind.
type EntityTally struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncResult tallies one course sync. Per-student and per-batch failures are
// recorded here without failing the run; only course-scoped failures abort.
type SyncResult struct {
	CourseID              uint        `json:"course_id"`
	Course                EntityTally `json:"course"`
	Enrollments           EntityTally `json:"enrollments"`
	Activities            EntityTally `json:"activities"`
	Completions           EntityTally `json:"completions"`
	Summaries             EntityTally `json:"summaries"`
	Statistics            EntityTally `json:"statistics"`
	StudentsProcessed     int         `json:"students_processed"`
	StudentsFailed        int         `json:"students_failed"`
	Errors                []string    `json:"errors"`
	ProcessingTimeSeconds float64     `json:"processing_time_seconds"`
}

func logSync(message string) {
	log.Printf("[SYNC %s] %s", time.Now().Format(time.RFC3339), message)
}

// SyncCourse runs the full pipeline for one course and records a SyncLog row.
// Returns ErrCourseNotFound when the course is absent from the LMS,
// ErrSyncInProgress when the course's advisory lock is held, and a
// *moodle.RemoteError when a course-scoped fetch fails.
func (s *Service) SyncCourse(courseID uint, trigger string) (*SyncResult, error) {
	started := time.Now()

	courses, err := s.client.GetCourses()
	if err != nil {
		s.writeLog(trigger, &courseID, started, nil, err)
		return nil, err
	}

	var target *moodle.CourseInfo
	for i := range courses {
		if courses[i].ID == courseID {
			target = &courses[i]
			break
		}
	}
	if target == nil {
		s.writeLog(trigger, &courseID, started, nil, ErrCourseNotFound)
		return nil, ErrCourseNotFound
	}

	result, err := s.syncCourse(*target)
	s.writeLog(trigger, &courseID, started, result, err)
	return result, err
}

// syncCourse is the strictly ordered pipeline body. The caller has already
// located the course in the LMS course list.
func (s *Service) syncCourse(info moodle.CourseInfo) (*SyncResult, error) {
	if !tryLockCourse(info.ID) {
		return nil, ErrSyncInProgress
	}
	defer unlockCourse(info.ID)

	started := time.Now()
	result := &SyncResult{CourseID: info.ID, Errors: []string{}}
	logSync(fmt.Sprintf("course %d (%s): sync started", info.ID, info.ShortName))

	// Step 1: course record
	course := models.Course{
		CourseID:   info.ID,
		ShortName:  info.ShortName,
		FullName:   info.FullName,
		CategoryID: info.CategoryID,
		Summary:    info.Summary,
		Format:     info.Format,
		StartDate:  UnixToTime(info.StartDate),
		EndDate:    UnixToTime(info.EndDate),
		Visible:    info.Visible > 0,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"short_name", "full_name", "category_id", "summary", "format", "start_date", "end_date", "visible", "updated_at"}),
	}).Create(&course).Error; err != nil {
		result.Course.Failed++
		result.Errors = append(result.Errors, "course upsert: "+err.Error())
	} else {
		result.Course.Success++
	}

	// Step 2: enrolled users, students only
	users, err := s.client.GetEnrolledUsers(info.ID)
	if err != nil {
		return nil, err
	}
	students := filterStudents(users)
	logSync(fmt.Sprintf("course %d: %d enrolled users, %d students", info.ID, len(users), len(students)))

	enrollments := make([]models.Enrollment, 0, len(students))
	for _, u := range students {
		status := "active"
		if u.Suspended {
			status = "suspended"
		}
		enrollments = append(enrollments, models.Enrollment{
			CourseID:         info.ID,
			StudentID:        u.ID,
			StudentName:      u.FullName,
			StudentEmail:     u.Email,
			EnrollmentDate:   UnixToTime(u.FirstAccess),
			Role:             "student",
			Status:           status,
			LastCourseAccess: UnixToTime(u.LastCourseAccess),
		})
	}
	if len(enrollments) > 0 {
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"student_name", "student_email", "enrollment_date", "role", "status", "last_course_access", "updated_at"}),
		}).Create(&enrollments).Error; err != nil {
			result.Enrollments.Failed += len(enrollments)
			result.Errors = append(result.Errors, "enrollment upsert: "+err.Error())
		} else {
			result.Enrollments.Success += len(enrollments)
		}
	}

	// Step 3: course contents, flattened to activities
	sections, err := s.client.GetCourseContents(info.ID)
	if err != nil {
		return nil, err
	}
	activities := FlattenContents(info.ID, sections)
	if len(activities) > 0 {
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "activity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"section_number", "section_name", "activity_name", "activity_type", "visible", "has_completion_tracking", "completion_expected_at", "updated_at"}),
		}).Create(&activities).Error; err != nil {
			result.Activities.Failed += len(activities)
			result.Errors = append(result.Errors, "activity upsert: "+err.Error())
		} else {
			result.Activities.Success += len(activities)
		}
	}
	logSync(fmt.Sprintf("course %d: %d activities flattened", info.ID, len(activities)))

	// Step 4: per-student completion statuses, sequential with a politeness
	// delay. One student's failure never aborts the course sync.
	var completions []models.ActivityCompletion
	for i, u := range students {
		if i > 0 && s.studentDelay > 0 {
			time.Sleep(s.studentDelay)
		}

		statuses, err := s.client.GetActivitiesCompletionStatus(info.ID, u.ID)
		if err != nil {
			if remote, ok := err.(*moodle.RemoteError); ok && remote.IsCompletionNotEnabled() {
				// Expected for courses without completion criteria.
				continue
			}
			result.StudentsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("student %d completion fetch: %v", u.ID, err))
			continue
		}
		completions = append(completions, FlattenCompletions(info.ID, u.ID, statuses, activities)...)
		result.StudentsProcessed++
	}

	// Step 5: batched completion upserts. A failed batch is recorded and the
	// remaining batches still run.
	for start := 0; start < len(completions); start += s.batchSize {
		end := start + s.batchSize
		if end > len(completions) {
			end = len(completions)
		}
		batch := completions[start:end]
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}, {Name: "activity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completion_state", "is_completed", "is_passed", "is_failed", "time_completed", "updated_at"}),
		}).Create(&batch).Error; err != nil {
			result.Completions.Failed += len(batch)
			result.Errors = append(result.Errors, fmt.Sprintf("completion batch %d-%d: %v", start, end, err))
		} else {
			result.Completions.Success += len(batch)
		}
	}

	// Step 6: per-student course-completion summaries, recomputed wholesale.
	summaries := BuildCompletionSummaries(info.ID, enrollments, activities, completions)
	for i := range summaries {
		// When every completion is manual the LMS may report no activity
		// timestamps; fall back to its own course-completion record.
		if summaries[i].IsCourseCompleted && summaries[i].CompletionDate == nil {
			if cc, err := s.client.GetCourseCompletionStatus(info.ID, summaries[i].StudentID); err == nil {
				summaries[i].CompletionDate = latestCriteriaTime(cc)
			}
		}
	}
	if err := s.upsertSummaries(summaries); err != nil {
		result.Summaries.Failed += len(summaries)
		result.Errors = append(result.Errors, "summary upsert: "+err.Error())
	} else {
		result.Summaries.Success += len(summaries)
	}

	// Step 7: derived statistics, from the sets gathered in this run.
	studentStats := BuildStudentStatistics(info.ID, enrollments, activities, completions, time.Now())
	if err := s.upsertStudentStatistics(studentStats); err != nil {
		result.Statistics.Failed += len(studentStats)
		result.Errors = append(result.Errors, "student statistics upsert: "+err.Error())
	} else {
		result.Statistics.Success += len(studentStats)
	}
	activityStats := BuildActivityStatistics(info.ID, enrollments, activities, completions)
	if err := s.upsertActivityStatistics(activityStats); err != nil {
		result.Statistics.Failed += len(activityStats)
		result.Errors = append(result.Errors, "activity statistics upsert: "+err.Error())
	} else {
		result.Statistics.Success += len(activityStats)
	}

	result.ProcessingTimeSeconds = Round2(time.Since(started).Seconds())
	logSync(fmt.Sprintf("course %d: sync finished in %.2fs (%d students, %d failed, %d errors)",
		info.ID, result.ProcessingTimeSeconds, result.StudentsProcessed, result.StudentsFailed, len(result.Errors)))
	return result, nil
}

// filterStudents keeps only users holding the student role, matched by role
// shortname or the default archetype roleid. Teachers and managers never
// enter enrollment or completion records.
func filterStudents(users []moodle.EnrolledUser) []moodle.EnrolledUser {
	var students []moodle.EnrolledUser
	for _, u := range users {
		for _, r := range u.Roles {
			if r.ShortName == "student" || r.RoleID == studentRoleID {
				students = append(students, u)
				break
			}
		}
	}
	return students
}

func latestCriteriaTime(cc *moodle.CourseCompletion) *time.Time {
	var latest *time.Time
	for _, crit := range cc.Completions {
		if !crit.Complete {
			continue
		}
		t := UnixToTime(crit.TimeCompleted)
		if t != nil && (latest == nil || t.After(*latest)) {
			latest = t
		}
	}
	return latest
}

func (s *Service) upsertSummaries(summaries []models.CourseCompletionSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_activities", "completed_activities", "completion_percentage", "is_course_completed", "completion_date", "updated_at"}),
	}).Create(&summaries).Error
}

func (s *Service) upsertStudentStatistics(stats []models.StudentStatistics) error {
	if len(stats) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_name", "total_activities", "completed_activities", "passed_activities", "failed_activities", "remaining_activities", "completion_percentage", "pass_percentage", "is_active", "performance_level", "last_course_access", "updated_at"}),
	}).Create(&stats).Error
}

func (s *Service) upsertActivityStatistics(stats []models.ActivityStatistics) error {
	if len(stats) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "activity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"activity_name", "activity_type", "section_number", "total_students", "students_completed", "students_passed", "students_failed", "students_not_started", "completion_rate", "pass_rate", "updated_at"}),
	}).Create(&stats).Error
}

// writeLog persists one SyncLog row for a run. Logging failures are not
// allowed to fail the sync itself.
func (s *Service) writeLog(trigger string, courseID *uint, started time.Time, result interface{}, runErr error) {
	finished := time.Now()

	var resultsJSON datatypes.JSON
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			resultsJSON = datatypes.JSON(b)
		}
	}

	var errs []string
	if runErr != nil {
		errs = append(errs, runErr.Error())
	}
	errsJSON, _ := json.Marshal(errs)

	entry := models.SyncLog{
		RunID:           uuid.NewString(),
		Trigger:         trigger,
		CourseID:        courseID,
		StartedAt:       started,
		FinishedAt:      finished,
		DurationSeconds: Round2(finished.Sub(started).Seconds()),
		Success:         runErr == nil,
		Results:         resultsJSON,
		Errors:          datatypes.JSON(errsJSON),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logSync("failed to record sync log: " + err.Error())
	}
}
