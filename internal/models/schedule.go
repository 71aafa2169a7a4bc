package models

// Schedule is one recurring weekly time-slot for a course. An attendance
// date pins it to a concrete calendar occurrence.
type Schedule struct {
	ID         string `db:"id" json:"id"`
	CourseID   string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	DayOfWeek  string `db:"day_of_week" json:"day_of_week"`
	StartTime  string `db:"start_time" json:"start_time"`
	EndTime    string `db:"end_time" json:"end_time"`
	Room       string `db:"room" json:"room"`
}
