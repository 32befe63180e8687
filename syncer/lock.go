package syncer

import (
	"errors"
	"sync"
)

// ErrCourseNotFound means the target course is absent from the LMS course list.
var ErrCourseNotFound = errors.New("course not found in LMS")

// ErrSyncInProgress means another sync currently holds the course's advisory lock.
var ErrSyncInProgress = errors.New("a sync for this course is already running")

// Per-course advisory locks. A second sync request for a course that is
// already mid-sync fails fast instead of interleaving upserts with the
// running one. This only guards a single process; two replicas syncing the
// same course can still race, with last-writer-wins per record.
var (
	lockMu        sync.Mutex
	lockedCourses = make(map[uint]bool)
)

func tryLockCourse(courseID uint) bool {
	lockMu.Lock()
	defer lockMu.Unlock()
	if lockedCourses[courseID] {
		return false
	}
	lockedCourses[courseID] = true
	return true
}

func unlockCourse(courseID uint) {
	lockMu.Lock()
	defer lockMu.Unlock()
	delete(lockedCourses, courseID)
}
