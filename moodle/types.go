package moodle

// CourseInfo is one entry of the core_course_get_courses response.
type CourseInfo struct {
	ID         uint   `json:"id"`
	ShortName  string `json:"shortname"`
	FullName   string `json:"fullname"`
	CategoryID uint   `json:"categoryid"`
	Summary    string `json:"summary"`
	Format     string `json:"format"`
	StartDate  int64  `json:"startdate"`
	EndDate    int64  `json:"enddate"`
	Visible    int    `json:"visible"`
}

// Role is one role assignment of an enrolled user.
type Role struct {
	RoleID    uint   `json:"roleid"`
	ShortName string `json:"shortname"`
}

// EnrolledUser is one entry of the core_enrol_get_enrolled_users response.
// Timestamps are UNIX seconds; zero means the LMS has no value.
type EnrolledUser struct {
	ID               uint   `json:"id"`
	FullName         string `json:"fullname"`
	Email            string `json:"email"`
	FirstAccess      int64  `json:"firstaccess"`
	LastCourseAccess int64  `json:"lastcourseaccess"`
	Suspended        bool   `json:"suspended"`
	Roles            []Role `json:"roles"`
}

// Module is one activity inside a course section. Completion > 0 means the
// activity has completion tracking enabled.
type Module struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	ModName             string `json:"modname"`
	Visible             int    `json:"visible"`
	VisibleOnCoursePage int    `json:"visibleoncoursepage"`
	Completion          int    `json:"completion"`
	CompletionExpected  int64  `json:"completionexpected"`
}

// Section is one entry of the core_course_get_contents response.
type Section struct {
	ID      uint     `json:"id"`
	Name    string   `json:"name"`
	Section int      `json:"section"`
	Visible int      `json:"visible"`
	Modules []Module `json:"modules"`
}

// CompletionStatus is one student's completion status for one activity
// (identified by its course-module id).
type CompletionStatus struct {
	CMID          uint  `json:"cmid"`
	State         int   `json:"state"`
	TimeCompleted int64 `json:"timecompleted"`
	Tracking      int   `json:"tracking"`
}

// CriteriaCompletion is one completion criterion inside a course-completion
// status response.
type CriteriaCompletion struct {
	Type          int   `json:"type"`
	Complete      bool  `json:"complete"`
	TimeCompleted int64 `json:"timecompleted"`
}

// CourseCompletion is the LMS's own verdict on whether a student completed a
// course, from core_completion_get_course_completion_status.
type CourseCompletion struct {
	Completed   bool                 `json:"completed"`
	Aggregation int                  `json:"aggregation"`
	Completions []CriteriaCompletion `json:"completions"`
}
