package models

import "time"

// Course represents a taught course offered in a given year and semester.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     string    `db:"semester" json:"semester"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter provides optional criteria for listing courses. AcademicYear
// and Semester are independent; an empty value means "any".
type CourseFilter struct {
	TeacherID    string
	StudentID    string
	AcademicYear string
	Semester     string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
