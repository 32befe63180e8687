package moodle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const restEndpoint = "/webservice/rest/server.php"

// Web-service function names understood by the LMS.
const (
	FnGetCourses                    = "core_course_get_courses"
	FnGetEnrolledUsers              = "core_enrol_get_enrolled_users"
	FnGetCourseContents             = "core_course_get_contents"
	FnGetCourseCompletionStatus     = "core_completion_get_course_completion_status"
	FnGetActivitiesCompletionStatus = "core_completion_get_activities_completion_status"
)

// RemoteError is a failure signaled by the LMS: either an exception envelope
// in an otherwise-200 response, or a transport problem.
type RemoteError struct {
	Function string
	Code     string
	Message  string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("moodle %s failed: %s (%s)", e.Function, e.Message, e.Code)
	}
	return fmt.Sprintf("moodle %s failed: %s", e.Function, e.Message)
}

// IsCompletionNotEnabled reports whether the error is the LMS telling us the
// course has no completion criteria configured. Callers treat this as an
// expected condition, not a failure.
func (e *RemoteError) IsCompletionNotEnabled() bool {
	return e.Code == "completionnotenabled" ||
		strings.Contains(e.Message, "not enabled")
}

// wsError is the LMS exception envelope.
type wsError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

// Client calls the LMS REST web-service endpoint. Every call carries the
// configured token and requests JSON formatting.
type Client struct {
	http    *resty.Client
	baseURL string
	token   string
}

// NewClient builds a client for the given LMS base URL and web-service token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
		token:   token,
	}
}

// Call issues one web-service function call with the given parameters and
// returns the raw JSON body. An exception envelope in the response is raised
// as a *RemoteError; the call is never retried.
func (c *Client) Call(function string, params map[string]string) ([]byte, error) {
	form := map[string]string{
		"wstoken":            c.token,
		"wsfunction":         function,
		"moodlewsrestformat": "json",
	}
	for k, v := range params {
		form[k] = v
	}

	resp, err := c.http.R().
		SetFormData(form).
		Post(c.baseURL + restEndpoint)
	if err != nil {
		return nil, &RemoteError{Function: function, Message: err.Error()}
	}
	if resp.StatusCode() != 200 {
		return nil, &RemoteError{Function: function, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode())}
	}

	body := resp.Body()

	// Success responses are arrays or plain objects; failures come back as an
	// object carrying an "exception" field.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope wsError
		if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Exception != "" {
			return nil, &RemoteError{Function: function, Code: envelope.ErrorCode, Message: envelope.Message}
		}
	}

	return body, nil
}

// GetCourses fetches all courses visible to the web-service account.
func (c *Client) GetCourses() ([]CourseInfo, error) {
	body, err := c.Call(FnGetCourses, nil)
	if err != nil {
		return nil, err
	}
	var courses []CourseInfo
	if err := json.Unmarshal(body, &courses); err != nil {
		return nil, &RemoteError{Function: FnGetCourses, Message: "malformed response: " + err.Error()}
	}
	return courses, nil
}

// GetEnrolledUsers fetches every user enrolled in the course, any role.
func (c *Client) GetEnrolledUsers(courseID uint) ([]EnrolledUser, error) {
	body, err := c.Call(FnGetEnrolledUsers, map[string]string{
		"courseid": fmt.Sprint(courseID),
	})
	if err != nil {
		return nil, err
	}
	var users []EnrolledUser
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, &RemoteError{Function: FnGetEnrolledUsers, Message: "malformed response: " + err.Error()}
	}
	return users, nil
}

// GetCourseContents fetches the course's sections with their nested modules.
func (c *Client) GetCourseContents(courseID uint) ([]Section, error) {
	body, err := c.Call(FnGetCourseContents, map[string]string{
		"courseid": fmt.Sprint(courseID),
	})
	if err != nil {
		return nil, err
	}
	var sections []Section
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, &RemoteError{Function: FnGetCourseContents, Message: "malformed response: " + err.Error()}
	}
	return sections, nil
}

// GetActivitiesCompletionStatus fetches one student's per-activity completion
// statuses for a course.
func (c *Client) GetActivitiesCompletionStatus(courseID, userID uint) ([]CompletionStatus, error) {
	body, err := c.Call(FnGetActivitiesCompletionStatus, map[string]string{
		"courseid": fmt.Sprint(courseID),
		"userid":   fmt.Sprint(userID),
	})
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Statuses []CompletionStatus `json:"statuses"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, &RemoteError{Function: FnGetActivitiesCompletionStatus, Message: "malformed response: " + err.Error()}
	}
	return wrapper.Statuses, nil
}

// GetCourseCompletionStatus fetches the LMS's own course-completion verdict
// for one student, including per-criteria completion timestamps.
func (c *Client) GetCourseCompletionStatus(courseID, userID uint) (*CourseCompletion, error) {
	body, err := c.Call(FnGetCourseCompletionStatus, map[string]string{
		"courseid": fmt.Sprint(courseID),
		"userid":   fmt.Sprint(userID),
	})
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		CompletionStatus CourseCompletion `json:"completionstatus"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, &RemoteError{Function: FnGetCourseCompletionStatus, Message: "malformed response: " + err.Error()}
	}
	return &wrapper.CompletionStatus, nil
}
