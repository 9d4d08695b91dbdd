package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushub/portal-api/internal/models"
)

func sampleCourses() []models.Course {
	return []models.Course{
		{ID: "c1", AcademicYear: "2025/2026", Semester: "1"},
		{ID: "c2", AcademicYear: "2025/2026", Semester: "2"},
		{ID: "c3", AcademicYear: "2024/2025", Semester: "1"},
	}
}

func TestFilterCoursesEmptyCriteriaMeansAny(t *testing.T) {
	filtered := FilterCourses(sampleCourses(), "", "")
	assert.Len(t, filtered, 3)
}

func TestFilterCoursesByYearAndSemesterIndependently(t *testing.T) {
	byYear := FilterCourses(sampleCourses(), "2025/2026", "")
	assert.Len(t, byYear, 2)

	bySemester := FilterCourses(sampleCourses(), "", "1")
	assert.Len(t, bySemester, 2)

	both := FilterCourses(sampleCourses(), "2025/2026", "1")
	assert.Len(t, both, 1)
	assert.Equal(t, "c1", both[0].ID)
}

func TestFilterCoursesNoMatches(t *testing.T) {
	filtered := FilterCourses(sampleCourses(), "2030/2031", "")
	assert.Empty(t, filtered)
}

func TestSelectDefaultKeepsCurrentWhenStillPresent(t *testing.T) {
	filtered := FilterCourses(sampleCourses(), "2025/2026", "")
	assert.Equal(t, "c2", SelectDefault(filtered, "c2"))
}

func TestSelectDefaultFallsBackToFirst(t *testing.T) {
	filtered := FilterCourses(sampleCourses(), "2025/2026", "")
	assert.Equal(t, "c1", SelectDefault(filtered, "c3"))
	assert.Equal(t, "c1", SelectDefault(filtered, ""))
}

func TestSelectDefaultClearsWhenNothingMatches(t *testing.T) {
	assert.Equal(t, "", SelectDefault(nil, "c1"))
}
