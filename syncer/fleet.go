package syncer

import (
	"fmt"
	"time"
)

// CourseOutcome is one course's result inside a fleet run.
type CourseOutcome struct {
	CourseID  uint        `json:"course_id"`
	ShortName string      `json:"short_name"`
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	Result    *SyncResult `json:"result,omitempty"`
}

// FleetResult summarizes a sync of every visible course.
type FleetResult struct {
	Total                 int             `json:"total"`
	Success               int             `json:"success"`
	Failed                int             `json:"failed"`
	Results               []CourseOutcome `json:"results"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
}

// SyncAll fetches the course list once and syncs every visible course,
// sequentially. One course's failure never stops the batch. The site-wide
// pseudo-course (id 1) is always skipped.
func (s *Service) SyncAll(trigger string) (*FleetResult, error) {
	started := time.Now()

	courses, err := s.client.GetCourses()
	if err != nil {
		s.writeLog(trigger, nil, started, nil, err)
		return nil, err
	}

	fleet := &FleetResult{Results: []CourseOutcome{}}
	for _, c := range courses {
		if c.Visible <= 0 || c.ID <= 1 {
			continue
		}
		fleet.Total++

		result, err := s.syncCourse(c)
		outcome := CourseOutcome{CourseID: c.ID, ShortName: c.ShortName, Result: result}
		if err != nil {
			outcome.Success = false
			outcome.Error = err.Error()
			fleet.Failed++
			logSync(fmt.Sprintf("fleet: course %d failed: %v", c.ID, err))
		} else {
			outcome.Success = true
			fleet.Success++
		}
		fleet.Results = append(fleet.Results, outcome)
	}

	fleet.ProcessingTimeSeconds = Round2(time.Since(started).Seconds())
	logSync(fmt.Sprintf("fleet: %d courses, %d ok, %d failed in %.2fs",
		fleet.Total, fleet.Success, fleet.Failed, fleet.ProcessingTimeSeconds))

	s.writeLog(trigger, nil, started, fleet, nil)
	return fleet, nil
}
