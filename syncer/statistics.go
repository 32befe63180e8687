package syncer

import (
	"fmt"
	"lmsync/models"
	"math"
	"time"
)

// activeWindow is how recently a student must have accessed the course to
// count as active.
const activeWindow = 7 * 24 * time.Hour

// Round2 fixes a percentage to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PerformanceLevel maps a completion ratio (0..1) to its categorical tier.
func PerformanceLevel(ratio float64) string {
	switch {
	case ratio >= 0.9:
		return models.LevelExcellent
	case ratio >= 0.7:
		return models.LevelGood
	case ratio >= 0.5:
		return models.LevelAverage
	case ratio >= 0.3:
		return models.LevelBelowAverage
	default:
		return models.LevelPoor
	}
}

// trackableSet returns the ids of activities with completion tracking enabled.
// Untracked activities never enter a percentage denominator.
func trackableSet(activities []models.Activity) map[uint]bool {
	trackable := make(map[uint]bool)
	for _, a := range activities {
		if a.HasCompletionTracking {
			trackable[a.ActivityID] = true
		}
	}
	return trackable
}

// BuildStudentStatistics computes the per-student rollup for one course from
// flat enrollment, activity and completion sets. Pure: re-derivable at any
// time from the same inputs.
func BuildStudentStatistics(courseID uint, enrollments []models.Enrollment, activities []models.Activity, completions []models.ActivityCompletion, now time.Time) []models.StudentStatistics {
	trackable := trackableSet(activities)
	total := len(trackable)

	type counts struct{ completed, passed, failed int }
	byStudent := make(map[uint]*counts)
	for _, c := range completions {
		if !trackable[c.ActivityID] {
			continue
		}
		cc := byStudent[c.StudentID]
		if cc == nil {
			cc = &counts{}
			byStudent[c.StudentID] = cc
		}
		if c.IsCompleted {
			cc.completed++
		}
		if c.IsPassed {
			cc.passed++
		}
		if c.IsFailed {
			cc.failed++
		}
	}

	stats := make([]models.StudentStatistics, 0, len(enrollments))
	for _, e := range enrollments {
		cc := byStudent[e.StudentID]
		if cc == nil {
			cc = &counts{}
		}

		ratio := 0.0
		completionPct := 0.0
		if total > 0 {
			ratio = float64(cc.completed) / float64(total)
			completionPct = Round2(ratio * 100)
		}
		passPct := 0.0
		if cc.completed > 0 {
			passPct = Round2(float64(cc.passed) / float64(cc.completed) * 100)
		}

		isActive := e.LastCourseAccess != nil && now.Sub(*e.LastCourseAccess) <= activeWindow

		stats = append(stats, models.StudentStatistics{
			CourseID:             courseID,
			StudentID:            e.StudentID,
			StudentName:          e.StudentName,
			TotalActivities:      total,
			CompletedActivities:  cc.completed,
			PassedActivities:     cc.passed,
			FailedActivities:     cc.failed,
			RemainingActivities:  total - cc.completed,
			CompletionPercentage: completionPct,
			PassPercentage:       passPct,
			IsActive:             isActive,
			PerformanceLevel:     PerformanceLevel(ratio),
			LastCourseAccess:     e.LastCourseAccess,
		})
	}
	return stats
}

// BuildActivityStatistics computes the per-activity rollup for one course.
// Only trackable activities get a row; completion counts are meaningless for
// the rest.
func BuildActivityStatistics(courseID uint, enrollments []models.Enrollment, activities []models.Activity, completions []models.ActivityCompletion) []models.ActivityStatistics {
	totalStudents := len(enrollments)

	type counts struct{ completed, passed, failed int }
	byActivity := make(map[uint]*counts)
	for _, c := range completions {
		cc := byActivity[c.ActivityID]
		if cc == nil {
			cc = &counts{}
			byActivity[c.ActivityID] = cc
		}
		if c.IsCompleted {
			cc.completed++
		}
		if c.IsPassed {
			cc.passed++
		}
		if c.IsFailed {
			cc.failed++
		}
	}

	var stats []models.ActivityStatistics
	for _, a := range activities {
		if !a.HasCompletionTracking {
			continue
		}
		cc := byActivity[a.ActivityID]
		if cc == nil {
			cc = &counts{}
		}

		completionRate := 0.0
		if totalStudents > 0 {
			completionRate = Round2(float64(cc.completed) / float64(totalStudents) * 100)
		}
		passRate := 0.0
		if cc.completed > 0 {
			passRate = Round2(float64(cc.passed) / float64(cc.completed) * 100)
		}

		stats = append(stats, models.ActivityStatistics{
			CourseID:           courseID,
			ActivityID:         a.ActivityID,
			ActivityName:       a.ActivityName,
			ActivityType:       a.ActivityType,
			SectionNumber:      a.SectionNumber,
			TotalStudents:      totalStudents,
			StudentsCompleted:  cc.completed,
			StudentsPassed:     cc.passed,
			StudentsFailed:     cc.failed,
			StudentsNotStarted: totalStudents - cc.completed,
			CompletionRate:     completionRate,
			PassRate:           passRate,
		})
	}
	return stats
}

// BuildCompletionSummaries computes the per-student course-completion summary
// for one course. CompletionDate is the timestamp of the most recently
// completed tracked activity, set only once the whole course is completed.
func BuildCompletionSummaries(courseID uint, enrollments []models.Enrollment, activities []models.Activity, completions []models.ActivityCompletion) []models.CourseCompletionSummary {
	trackable := trackableSet(activities)
	total := len(trackable)

	type progress struct {
		completed int
		latest    *time.Time
	}
	byStudent := make(map[uint]*progress)
	for _, c := range completions {
		if !trackable[c.ActivityID] || !c.IsCompleted {
			continue
		}
		p := byStudent[c.StudentID]
		if p == nil {
			p = &progress{}
			byStudent[c.StudentID] = p
		}
		p.completed++
		if c.TimeCompleted != nil && (p.latest == nil || c.TimeCompleted.After(*p.latest)) {
			p.latest = c.TimeCompleted
		}
	}

	summaries := make([]models.CourseCompletionSummary, 0, len(enrollments))
	for _, e := range enrollments {
		p := byStudent[e.StudentID]
		if p == nil {
			p = &progress{}
		}

		pct := 0.0
		if total > 0 {
			pct = Round2(float64(p.completed) / float64(total) * 100)
		}
		completed := pct >= 100

		var completionDate *time.Time
		if completed {
			completionDate = p.latest
		}

		summaries = append(summaries, models.CourseCompletionSummary{
			CourseID:             courseID,
			StudentID:            e.StudentID,
			TotalActivities:      total,
			CompletedActivities:  p.completed,
			CompletionPercentage: pct,
			IsCourseCompleted:    completed,
			CompletionDate:       completionDate,
		})
	}
	return summaries
}

// RecomputeStatistics rebuilds the derived summary and statistics rows for a
// course from previously persisted records, without touching the LMS. Used by
// the recompute endpoint and the export tooling.
func (s *Service) RecomputeStatistics(courseID uint) error {
	var enrollments []models.Enrollment
	if err := s.db.Where("course_id = ?", courseID).Find(&enrollments).Error; err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	var activities []models.Activity
	if err := s.db.Where("course_id = ?", courseID).Find(&activities).Error; err != nil {
		return fmt.Errorf("load activities: %w", err)
	}
	var completions []models.ActivityCompletion
	if err := s.db.Where("course_id = ?", courseID).Find(&completions).Error; err != nil {
		return fmt.Errorf("load completions: %w", err)
	}

	summaries := BuildCompletionSummaries(courseID, enrollments, activities, completions)
	if err := s.upsertSummaries(summaries); err != nil {
		return err
	}
	studentStats := BuildStudentStatistics(courseID, enrollments, activities, completions, time.Now())
	if err := s.upsertStudentStatistics(studentStats); err != nil {
		return err
	}
	activityStats := BuildActivityStatistics(courseID, enrollments, activities, completions)
	return s.upsertActivityStatistics(activityStats)
}
