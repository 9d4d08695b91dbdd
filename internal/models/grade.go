package models

import "time"

// GradeEntry records a score a student received on a graded item.
type GradeEntry struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Title     string    `db:"title" json:"title"`
	Score     float64   `db:"score" json:"score"`
	MaxScore  float64   `db:"max_score" json:"max_score"`
	GradedBy  string    `db:"graded_by" json:"graded_by"`
	GradedAt  time.Time `db:"graded_at" json:"graded_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter captures filtering criteria for listing grade entries.
type GradeFilter struct {
	CourseID  string
	StudentID string
	Page      int
	PageSize  int
}
