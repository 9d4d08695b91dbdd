package service

import "github.com/campushub/portal-api/internal/models"

// FilterCourses narrows a course list by two independent optional criteria.
// An empty academicYear or semester means "any".
func FilterCourses(courses []models.Course, academicYear, semester string) []models.Course {
	filtered := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if academicYear != "" && course.AcademicYear != academicYear {
			continue
		}
		if semester != "" && course.Semester != semester {
			continue
		}
		filtered = append(filtered, course)
	}
	return filtered
}

// SelectDefault keeps the current course selection when it is still a member
// of the filtered set, reselects the first element when it is not, and clears
// the selection when the filtered set is empty. A selection outside the
// filtered set is never retained.
func SelectDefault(filtered []models.Course, currentID string) string {
	if len(filtered) == 0 {
		return ""
	}
	for _, course := range filtered {
		if course.ID == currentID {
			return currentID
		}
	}
	return filtered[0].ID
}
