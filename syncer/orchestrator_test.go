package syncer

import (
	"lmsync/models"
	"lmsync/moodle"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one shared in-memory database

	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Enrollment{},
		&models.Activity{},
		&models.ActivityCompletion{},
		&models.CourseCompletionSummary{},
		&models.StudentStatistics{},
		&models.ActivityStatistics{},
		&models.SyncLog{},
	))
	return db
}

type fakeLMS struct {
	courses    []moodle.CourseInfo
	coursesErr error

	users    map[uint][]moodle.EnrolledUser
	usersErr map[uint]error

	contents map[uint][]moodle.Section

	statuses  map[uint][]moodle.CompletionStatus // keyed by user id
	statusErr map[uint]error

	courseCompletions map[uint]*moodle.CourseCompletion // keyed by user id
}

func (f *fakeLMS) GetCourses() ([]moodle.CourseInfo, error) {
	if f.coursesErr != nil {
		return nil, f.coursesErr
	}
	return f.courses, nil
}

func (f *fakeLMS) GetEnrolledUsers(courseID uint) ([]moodle.EnrolledUser, error) {
	if err := f.usersErr[courseID]; err != nil {
		return nil, err
	}
	return f.users[courseID], nil
}

func (f *fakeLMS) GetCourseContents(courseID uint) ([]moodle.Section, error) {
	return f.contents[courseID], nil
}

func (f *fakeLMS) GetActivitiesCompletionStatus(courseID, userID uint) ([]moodle.CompletionStatus, error) {
	if err := f.statusErr[userID]; err != nil {
		return nil, err
	}
	return f.statuses[userID], nil
}

func (f *fakeLMS) GetCourseCompletionStatus(courseID, userID uint) (*moodle.CourseCompletion, error) {
	if cc := f.courseCompletions[userID]; cc != nil {
		return cc, nil
	}
	return &moodle.CourseCompletion{}, nil
}

// newCourseFixture builds a course with two trackable activities, one
// untracked activity, two students and one teacher.
func newCourseFixture() *fakeLMS {
	return &fakeLMS{
		courses: []moodle.CourseInfo{
			{ID: 10, ShortName: "GO101", FullName: "Go Programming 101", CategoryID: 2, Format: "topics", StartDate: 1700000000, Visible: 1},
		},
		users: map[uint][]moodle.EnrolledUser{
			10: {
				{ID: 1, FullName: "Ana Diaz", Email: "ana@example.com", FirstAccess: 1700000100, LastCourseAccess: time.Now().Add(-24 * time.Hour).Unix(), Roles: []moodle.Role{{RoleID: 5, ShortName: "student"}}},
				{ID: 2, FullName: "Ben Okafor", Email: "ben@example.com", FirstAccess: 1700000200, LastCourseAccess: time.Now().Add(-20 * 24 * time.Hour).Unix(), Roles: []moodle.Role{{RoleID: 5, ShortName: "student"}}},
				{ID: 3, FullName: "Prof Chen", Email: "chen@example.com", Roles: []moodle.Role{{RoleID: 3, ShortName: "editingteacher"}}},
			},
		},
		contents: map[uint][]moodle.Section{
			10: {
				{ID: 1, Name: "Basics", Section: 0, Visible: 1, Modules: []moodle.Module{
					{ID: 101, Name: "Intro quiz", ModName: "quiz", Visible: 1, VisibleOnCoursePage: 1, Completion: 2},
					{ID: 102, Name: "Handout", ModName: "resource", Visible: 1, VisibleOnCoursePage: 1, Completion: 0},
					{ID: 103, Name: "Assignment 1", ModName: "assign", Visible: 1, VisibleOnCoursePage: 1, Completion: 2},
				}},
			},
		},
		statuses: map[uint][]moodle.CompletionStatus{
			1: {
				{CMID: 101, State: 2, TimeCompleted: 1700001000},
				{CMID: 103, State: 1, TimeCompleted: 1700002000},
			},
			2: {
				{CMID: 101, State: 2, TimeCompleted: 1700003000},
			},
		},
	}
}

func TestSyncCoursePersistsAllEntityKinds(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db, newCourseFixture(), 0, 100)

	result, err := service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Course.Success)
	assert.Equal(t, 2, result.Enrollments.Success, "teacher is filtered out")
	assert.Equal(t, 3, result.Activities.Success)
	assert.Equal(t, 6, result.Completions.Success, "2 students x 3 activities")
	assert.Equal(t, 2, result.Summaries.Success)
	assert.Equal(t, 2, result.StudentsProcessed)
	assert.Equal(t, 0, result.StudentsFailed)
	assert.Empty(t, result.Errors)

	var course models.Course
	require.NoError(t, db.Where("course_id = ?", 10).First(&course).Error)
	assert.Equal(t, "GO101", course.ShortName)
	assert.True(t, course.Visible)

	var enrollments []models.Enrollment
	require.NoError(t, db.Order("student_id asc").Find(&enrollments).Error)
	require.Len(t, enrollments, 2)
	assert.Equal(t, "Ana Diaz", enrollments[0].StudentName)
	assert.Equal(t, "student", enrollments[0].Role)

	// Summaries: Ana completed both trackable activities, Ben one of two.
	var summaries []models.CourseCompletionSummary
	require.NoError(t, db.Order("student_id asc").Find(&summaries).Error)
	require.Len(t, summaries, 2)
	assert.Equal(t, 100.00, summaries[0].CompletionPercentage)
	assert.True(t, summaries[0].IsCourseCompleted)
	require.NotNil(t, summaries[0].CompletionDate)
	assert.True(t, summaries[0].CompletionDate.Equal(time.Unix(1700002000, 0)))
	assert.Equal(t, 50.00, summaries[1].CompletionPercentage)
	assert.False(t, summaries[1].IsCourseCompleted)
	assert.Nil(t, summaries[1].CompletionDate)

	// Statistics rows exist for both students and both trackable activities.
	var studentStats []models.StudentStatistics
	require.NoError(t, db.Order("student_id asc").Find(&studentStats).Error)
	require.Len(t, studentStats, 2)
	assert.Equal(t, 50.00, studentStats[0].PassPercentage, "Ana passed 1 of 2 completions")
	assert.True(t, studentStats[0].IsActive)
	assert.False(t, studentStats[1].IsActive)

	var activityStats []models.ActivityStatistics
	require.NoError(t, db.Order("activity_id asc").Find(&activityStats).Error)
	require.Len(t, activityStats, 2, "untracked handout gets no row")
	assert.Equal(t, 100.00, activityStats[0].CompletionRate)
	assert.Equal(t, 50.00, activityStats[1].CompletionRate)

	// A sync log row was written for the run.
	var logs []models.SyncLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	require.NotNil(t, logs[0].CourseID)
	assert.Equal(t, uint(10), *logs[0].CourseID)
}

func TestSyncCourseIdempotent(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db, newCourseFixture(), 0, 100)

	_, err := service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err)

	var before []models.ActivityCompletion
	require.NoError(t, db.Order("student_id asc, activity_id asc").Find(&before).Error)

	_, err = service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err)

	var after []models.ActivityCompletion
	require.NoError(t, db.Order("student_id asc, activity_id asc").Find(&after).Error)

	// Re-sync against an unchanged upstream is a no-op: same rows, same values.
	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID, "upsert must not create new rows")
		assert.Equal(t, before[i].CompletionState, after[i].CompletionState)
		assert.Equal(t, before[i].IsCompleted, after[i].IsCompleted)
		assert.Equal(t, before[i].IsPassed, after[i].IsPassed)
		assert.Equal(t, before[i].IsFailed, after[i].IsFailed)
	}

	var enrollmentCount, summaryCount int64
	db.Model(&models.Enrollment{}).Count(&enrollmentCount)
	db.Model(&models.CourseCompletionSummary{}).Count(&summaryCount)
	assert.Equal(t, int64(2), enrollmentCount)
	assert.Equal(t, int64(2), summaryCount)
}

func TestSyncCourseToleratesSingleStudentFailure(t *testing.T) {
	db := newTestDB(t)
	fake := newCourseFixture()
	fake.statusErr = map[uint]error{
		2: &moodle.RemoteError{Function: moodle.FnGetActivitiesCompletionStatus, Code: "generalexceptionmessage", Message: "backend exploded"},
	}
	service := NewService(db, fake, 0, 100)

	result, err := service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err, "one student's failure must not abort the course sync")

	assert.Equal(t, 1, result.StudentsProcessed)
	assert.Equal(t, 1, result.StudentsFailed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "student 2")

	// Only Ana's completions were persisted.
	var count int64
	db.Model(&models.ActivityCompletion{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestSyncCourseSkipsCompletionNotEnabled(t *testing.T) {
	db := newTestDB(t)
	fake := newCourseFixture()
	fake.statusErr = map[uint]error{
		1: &moodle.RemoteError{Code: "completionnotenabled", Message: "Completion is not enabled on this site"},
		2: &moodle.RemoteError{Code: "completionnotenabled", Message: "Completion is not enabled on this site"},
	}
	service := NewService(db, fake, 0, 100)

	result, err := service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err)

	// Expected condition, silently skipped: no errors, no failed students.
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.StudentsFailed)
	assert.Equal(t, 0, result.StudentsProcessed)

	var count int64
	db.Model(&models.ActivityCompletion{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Summaries still exist, all at zero progress.
	var summaries []models.CourseCompletionSummary
	require.NoError(t, db.Find(&summaries).Error)
	require.Len(t, summaries, 2)
	assert.Equal(t, 0.00, summaries[0].CompletionPercentage)
}

func TestSyncCourseNotFound(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db, newCourseFixture(), 0, 100)

	_, err := service.SyncCourse(999, models.TriggerManual)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSyncCourseTopLevelFetchFailureAborts(t *testing.T) {
	db := newTestDB(t)
	fake := newCourseFixture()
	fake.usersErr = map[uint]error{
		10: &moodle.RemoteError{Function: moodle.FnGetEnrolledUsers, Message: "timeout"},
	}
	service := NewService(db, fake, 0, 100)

	_, err := service.SyncCourse(10, models.TriggerManual)
	require.Error(t, err, "course-scoped fetch failures propagate")

	var remote *moodle.RemoteError
	assert.ErrorAs(t, err, &remote)
}

func TestSyncCourseAdvisoryLock(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db, newCourseFixture(), 0, 100)

	require.True(t, tryLockCourse(10))
	defer unlockCourse(10)

	_, err := service.SyncCourse(10, models.TriggerManual)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestSyncCourseBatchesCompletions(t *testing.T) {
	db := newTestDB(t)
	// Batch size 2 forces 3 batches for 6 completion records.
	service := NewService(db, newCourseFixture(), 0, 2)

	result, err := service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Completions.Success)

	var count int64
	db.Model(&models.ActivityCompletion{}).Count(&count)
	assert.Equal(t, int64(6), count)
}
