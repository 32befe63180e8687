package syncer

import (
	"lmsync/models"
	"lmsync/moodle"
	"time"
)

// UnixToTime converts LMS UNIX-second timestamps to time values. The LMS uses
// zero for "no value", which maps to nil.
func UnixToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// FlattenContents walks the nested section/module structure of a course and
// produces one flat Activity record per module. An activity counts as visible
// only when it is both generally visible and shown on the course page; it is
// trackable when the LMS completion flag is greater than zero.
func FlattenContents(courseID uint, sections []moodle.Section) []models.Activity {
	var activities []models.Activity
	for _, section := range sections {
		for _, mod := range section.Modules {
			activities = append(activities, models.Activity{
				CourseID:              courseID,
				ActivityID:            mod.ID,
				SectionNumber:         section.Section,
				SectionName:           section.Name,
				ActivityName:          mod.Name,
				ActivityType:          mod.ModName,
				Visible:               mod.Visible > 0 && mod.VisibleOnCoursePage > 0,
				HasCompletionTracking: mod.Completion > 0,
				CompletionExpectedAt:  UnixToTime(mod.CompletionExpected),
			})
		}
	}
	return activities
}

// FlattenCompletions produces one ActivityCompletion record for every known
// activity of the course, not just those the student has a status entry for.
// A student with no status entry for an activity gets an incomplete (state 0)
// record, so every (student, activity) pair has exactly one row.
func FlattenCompletions(courseID, studentID uint, statuses []moodle.CompletionStatus, activities []models.Activity) []models.ActivityCompletion {
	byActivity := make(map[uint]moodle.CompletionStatus, len(statuses))
	for _, st := range statuses {
		byActivity[st.CMID] = st
	}

	completions := make([]models.ActivityCompletion, 0, len(activities))
	for _, activity := range activities {
		state := models.StateIncomplete
		var timeCompleted *time.Time
		if st, ok := byActivity[activity.ActivityID]; ok {
			state = st.State
			timeCompleted = UnixToTime(st.TimeCompleted)
		}
		completions = append(completions, models.ActivityCompletion{
			CourseID:        courseID,
			StudentID:       studentID,
			ActivityID:      activity.ActivityID,
			CompletionState: state,
			IsCompleted:     state >= models.StateComplete,
			IsPassed:        state == models.StateCompletePassed,
			IsFailed:        state == models.StateCompleteFailed,
			TimeCompleted:   timeCompleted,
		})
	}
	return completions
}
