package helpers

import "encoding/json"

// EnrollCourseIDFromAnalytics extracts enroll_course_id from the raw
// analytics JSON a login request may carry. Malformed input yields "".
func EnrollCourseIDFromAnalytics(raw string) string {
	if raw == "" {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ""
	}

	courseID, _ := fields["enroll_course_id"].(string)
	return courseID
}
