package syncer

import (
	"lmsync/models"
	"lmsync/moodle"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncAllFiltersAndTolerates(t *testing.T) {
	db := newTestDB(t)
	fake := newCourseFixture()
	fake.courses = []moodle.CourseInfo{
		{ID: 1, ShortName: "site", Visible: 1},    // site pseudo-course, always skipped
		{ID: 10, ShortName: "GO101", Visible: 1},  // syncs fine
		{ID: 11, ShortName: "HIDDEN", Visible: 0}, // not visible, skipped
		{ID: 12, ShortName: "BROKEN", Visible: 1}, // enrollment fetch fails
	}
	fake.usersErr = map[uint]error{
		12: &moodle.RemoteError{Function: moodle.FnGetEnrolledUsers, Message: "boom"},
	}
	service := NewService(db, fake, 0, 100)

	fleet, err := service.SyncAll(models.TriggerScheduled)
	require.NoError(t, err)

	assert.Equal(t, 2, fleet.Total)
	assert.Equal(t, 1, fleet.Success)
	assert.Equal(t, 1, fleet.Failed)
	require.Len(t, fleet.Results, 2)

	assert.Equal(t, uint(10), fleet.Results[0].CourseID)
	assert.True(t, fleet.Results[0].Success)
	assert.Equal(t, uint(12), fleet.Results[1].CourseID)
	assert.False(t, fleet.Results[1].Success)
	assert.Contains(t, fleet.Results[1].Error, "boom")

	// The fleet run writes one batch-level log row with no course id.
	var logs []models.SyncLog
	require.NoError(t, db.Where("course_id IS NULL").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Equal(t, models.TriggerScheduled, logs[0].Trigger)
}

func TestSyncAllCourseListFailure(t *testing.T) {
	db := newTestDB(t)
	fake := newCourseFixture()
	fake.coursesErr = &moodle.RemoteError{Function: moodle.FnGetCourses, Message: "LMS down"}
	service := NewService(db, fake, 0, 100)

	_, err := service.SyncAll(models.TriggerScheduled)
	require.Error(t, err)

	var remote *moodle.RemoteError
	assert.ErrorAs(t, err, &remote)
}

func TestRecomputeStatisticsFromPersistedRecords(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db, newCourseFixture(), 0, 100)

	_, err := service.SyncCourse(10, models.TriggerManual)
	require.NoError(t, err)

	// Wipe the derived rows, then rebuild them from raw records alone.
	require.NoError(t, db.Unscoped().Where("1 = 1").Delete(&models.StudentStatistics{}).Error)
	require.NoError(t, db.Unscoped().Where("1 = 1").Delete(&models.ActivityStatistics{}).Error)
	require.NoError(t, db.Unscoped().Where("1 = 1").Delete(&models.CourseCompletionSummary{}).Error)

	require.NoError(t, service.RecomputeStatistics(10))

	var studentStats []models.StudentStatistics
	require.NoError(t, db.Order("student_id asc").Find(&studentStats).Error)
	require.Len(t, studentStats, 2)
	assert.Equal(t, 100.00, studentStats[0].CompletionPercentage)
	assert.Equal(t, 50.00, studentStats[1].CompletionPercentage)

	var summaries []models.CourseCompletionSummary
	require.NoError(t, db.Find(&summaries).Error)
	assert.Len(t, summaries, 2)
}
