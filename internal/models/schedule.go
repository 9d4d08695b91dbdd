package models

import "time"

// ScheduleBlock is a weekly recurring time window in which a course meets.
// StartTime and EndTime are local clock times in "HH:MM" 24-hour format with
// no date component. StartTime < EndTime is a precondition supplied by the
// schedule source, not validated here.
type ScheduleBlock struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Room      string    `db:"room" json:"room"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter captures filtering criteria for listing schedule blocks.
type ScheduleFilter struct {
	CourseID  string
	TeacherID string
	DayOfWeek string
	Room      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
