package syncer

import (
	"lmsync/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceLevelThresholds(t *testing.T) {
	cases := []struct {
		ratio float64
		level string
	}{
		{1.0, models.LevelExcellent},
		{0.9, models.LevelExcellent},
		{0.89, models.LevelGood},
		{0.7, models.LevelGood},
		{0.69, models.LevelAverage},
		{0.5, models.LevelAverage},
		{0.49, models.LevelBelowAverage},
		{0.3, models.LevelBelowAverage},
		{0.29, models.LevelPoor},
		{0.0, models.LevelPoor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, PerformanceLevel(tc.ratio), "ratio %v", tc.ratio)
	}
}

func completion(studentID, activityID uint, state int, completedAt *time.Time) models.ActivityCompletion {
	return models.ActivityCompletion{
		CourseID:        1,
		StudentID:       studentID,
		ActivityID:      activityID,
		CompletionState: state,
		IsCompleted:     state >= models.StateComplete,
		IsPassed:        state == models.StateCompletePassed,
		IsFailed:        state == models.StateCompleteFailed,
		TimeCompleted:   completedAt,
	}
}

func TestBuildStudentStatisticsPercentages(t *testing.T) {
	now := time.Now()
	recent := now.Add(-3 * 24 * time.Hour)
	stale := now.Add(-10 * 24 * time.Hour)

	enrollments := []models.Enrollment{
		{CourseID: 1, StudentID: 1, StudentName: "Ana", LastCourseAccess: &recent},
		{CourseID: 1, StudentID: 2, StudentName: "Ben", LastCourseAccess: &stale},
	}
	activities := []models.Activity{
		{CourseID: 1, ActivityID: 10, HasCompletionTracking: true},
		{CourseID: 1, ActivityID: 11, HasCompletionTracking: true},
		{CourseID: 1, ActivityID: 12, HasCompletionTracking: false}, // excluded from denominators
	}
	completions := []models.ActivityCompletion{
		// Ana completes both tracked activities, one passed, one plain.
		completion(1, 10, models.StateCompletePassed, nil),
		completion(1, 11, models.StateComplete, nil),
		completion(1, 12, models.StateComplete, nil), // untracked, must not count
		// Ben completes one of two.
		completion(2, 10, models.StateComplete, nil),
		completion(2, 11, models.StateIncomplete, nil),
	}

	stats := BuildStudentStatistics(1, enrollments, activities, completions, now)
	require.Len(t, stats, 2)

	byStudent := make(map[uint]models.StudentStatistics)
	for _, s := range stats {
		byStudent[s.StudentID] = s
	}

	ana := byStudent[1]
	assert.Equal(t, 2, ana.TotalActivities)
	assert.Equal(t, 2, ana.CompletedActivities)
	assert.Equal(t, 0, ana.RemainingActivities)
	assert.Equal(t, 100.00, ana.CompletionPercentage)
	assert.Equal(t, 50.00, ana.PassPercentage)
	assert.Equal(t, models.LevelExcellent, ana.PerformanceLevel)
	assert.True(t, ana.IsActive, "access 3 days ago is active")

	ben := byStudent[2]
	assert.Equal(t, 1, ben.CompletedActivities)
	assert.Equal(t, 1, ben.RemainingActivities)
	assert.Equal(t, 50.00, ben.CompletionPercentage)
	assert.Equal(t, 0.00, ben.PassPercentage, "no passes among completions")
	assert.Equal(t, models.LevelAverage, ben.PerformanceLevel)
	assert.False(t, ben.IsActive, "access 10 days ago is not active")
}

func TestBuildStudentStatisticsNoTrackableActivities(t *testing.T) {
	enrollments := []models.Enrollment{{CourseID: 1, StudentID: 1}}
	activities := []models.Activity{{CourseID: 1, ActivityID: 10, HasCompletionTracking: false}}

	stats := BuildStudentStatistics(1, enrollments, activities, nil, time.Now())
	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[0].TotalActivities)
	assert.Equal(t, 0.00, stats[0].CompletionPercentage)
	assert.Equal(t, 0.00, stats[0].PassPercentage)
	assert.Equal(t, models.LevelPoor, stats[0].PerformanceLevel)
}

func TestBuildActivityStatistics(t *testing.T) {
	// 10 enrolled students, 4 completed (3 passed, 1 plain), 6 not started.
	var enrollments []models.Enrollment
	for i := uint(1); i <= 10; i++ {
		enrollments = append(enrollments, models.Enrollment{CourseID: 1, StudentID: i})
	}
	activities := []models.Activity{
		{CourseID: 1, ActivityID: 20, ActivityName: "Final quiz", ActivityType: "quiz", HasCompletionTracking: true},
		{CourseID: 1, ActivityID: 21, ActivityName: "Reading", ActivityType: "page", HasCompletionTracking: false},
	}
	completions := []models.ActivityCompletion{
		completion(1, 20, models.StateCompletePassed, nil),
		completion(2, 20, models.StateCompletePassed, nil),
		completion(3, 20, models.StateCompletePassed, nil),
		completion(4, 20, models.StateComplete, nil),
	}

	stats := BuildActivityStatistics(1, enrollments, activities, completions)
	require.Len(t, stats, 1, "untracked activities get no statistics row")

	quiz := stats[0]
	assert.Equal(t, uint(20), quiz.ActivityID)
	assert.Equal(t, 10, quiz.TotalStudents)
	assert.Equal(t, 4, quiz.StudentsCompleted)
	assert.Equal(t, 3, quiz.StudentsPassed)
	assert.Equal(t, 0, quiz.StudentsFailed)
	assert.Equal(t, 6, quiz.StudentsNotStarted)
	assert.Equal(t, 40.00, quiz.CompletionRate)
	assert.Equal(t, 75.00, quiz.PassRate)
}

func TestBuildActivityStatisticsNoCompletions(t *testing.T) {
	enrollments := []models.Enrollment{{CourseID: 1, StudentID: 1}}
	activities := []models.Activity{{CourseID: 1, ActivityID: 20, HasCompletionTracking: true}}

	stats := BuildActivityStatistics(1, enrollments, activities, nil)
	require.Len(t, stats, 1)
	assert.Equal(t, 0.00, stats[0].CompletionRate)
	assert.Equal(t, 0.00, stats[0].PassRate, "pass rate guards against zero completions")
	assert.Equal(t, 1, stats[0].StudentsNotStarted)
}

func TestBuildCompletionSummaries(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	enrollments := []models.Enrollment{
		{CourseID: 1, StudentID: 1},
		{CourseID: 1, StudentID: 2},
	}
	activities := []models.Activity{
		{CourseID: 1, ActivityID: 10, HasCompletionTracking: true},
		{CourseID: 1, ActivityID: 11, HasCompletionTracking: true},
	}
	completions := []models.ActivityCompletion{
		completion(1, 10, models.StateCompletePassed, &first),
		completion(1, 11, models.StateComplete, &second),
		completion(2, 10, models.StateComplete, &first),
	}

	summaries := BuildCompletionSummaries(1, enrollments, activities, completions)
	require.Len(t, summaries, 2)

	byStudent := make(map[uint]models.CourseCompletionSummary)
	for _, s := range summaries {
		byStudent[s.StudentID] = s
	}

	done := byStudent[1]
	assert.Equal(t, 100.00, done.CompletionPercentage)
	assert.True(t, done.IsCourseCompleted)
	require.NotNil(t, done.CompletionDate)
	assert.Equal(t, second, *done.CompletionDate, "completion date is the latest completed activity")

	partial := byStudent[2]
	assert.Equal(t, 50.00, partial.CompletionPercentage)
	assert.False(t, partial.IsCourseCompleted)
	assert.Nil(t, partial.CompletionDate, "no completion date until the course is completed")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3.0))
	assert.Equal(t, 66.67, Round2(200.0/3.0))
	assert.Equal(t, 50.00, Round2(50))
}
