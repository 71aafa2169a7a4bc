package models

import "time"

// NFCCard is a physical credential registration. A user holds at most one
// active card at a time; ShortID is the compact alias written on the tag.
type NFCCard struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	NIM      string    `db:"nim" json:"nim"`
	ShortID  string    `db:"short_id" json:"short_id"`
	IsActive bool      `db:"is_active" json:"is_active"`
	IssuedAt time.Time `db:"issued_at" json:"issued_at"`
}

// NFCSession is an admin-activated, time-boxed window during which card taps
// are accepted for a (ScheduleID, AttendanceDate) scope.
type NFCSession struct {
	ID             string    `db:"id" json:"id"`
	AdminID        string    `db:"admin_id" json:"admin_id"`
	ScheduleID     string    `db:"schedule_id" json:"schedule_id"`
	CourseID       string    `db:"course_id" json:"course_id"`
	AttendanceDate time.Time `db:"attendance_date" json:"attendance_date"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Usable is the actual "accepts taps" predicate: the stored flag alone is
// insufficient because sessions expire lazily, with no background closer.
func (s NFCSession) Usable(now time.Time) bool {
	return s.IsActive && !now.After(s.ExpiresAt)
}
