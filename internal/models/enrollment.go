package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive  EnrollmentStatus = "ACTIVE"
	EnrollmentStatusDropped EnrollmentStatus = "DROPPED"
)

// Enrollment captures a student's registration to a course.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	DroppedAt  *time.Time       `db:"dropped_at" json:"dropped_at,omitempty"`
	Status     EnrollmentStatus `db:"status" json:"status"`
}

// RosterEntry is a roster row: an enrolled student plus any attendance
// already recorded for the session being viewed.
type RosterEntry struct {
	EnrollmentID string            `db:"enrollment_id" json:"enrollment_id"`
	StudentID    string            `db:"student_id" json:"student_id"`
	StudentName  string            `db:"student_name" json:"student_name"`
	StudentEmail string            `db:"student_email" json:"student_email"`
	Status       *AttendanceStatus `db:"status" json:"status,omitempty"`
	Notes        *string           `db:"notes" json:"notes,omitempty"`
}
