package models

import "time"

// ClassSession is a concrete, dated instance of a course meeting. Sessions
// are created explicitly by a teacher or implicitly by the auto detector when
// a live schedule match has no corresponding session yet. They are never
// deleted by detection logic.
type ClassSession struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Room      string    `db:"room" json:"room"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter captures filtering criteria for listing class sessions.
type SessionFilter struct {
	CourseID  string
	TeacherID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ResolvedSession is the ephemeral result of a successful auto detection.
// It is produced transiently per detector run and never persisted.
type ResolvedSession struct {
	CourseID       string `json:"course_id"`
	SessionID      string `json:"session_id"`
	IsAutoDetected bool   `json:"is_auto_detected"`
}
