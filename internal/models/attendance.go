package models

import "time"

// AttendanceMethod identifies the intake channel that produced a record.
type AttendanceMethod string

const (
	MethodManualPhoto AttendanceMethod = "manual-photo"
	MethodQR          AttendanceMethod = "qr"
	MethodNFC         AttendanceMethod = "nfc"
)

// Valid returns true when the method is a supported value.
func (m AttendanceMethod) Valid() bool {
	switch m {
	case MethodManualPhoto, MethodQR, MethodNFC:
		return true
	default:
		return false
	}
}

// AttendanceStatus represents the status for attendance records. Absent is a
// derived administrative value; intake never writes it.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusExcused AttendanceStatus = "excused"
	StatusSick    AttendanceStatus = "sick"
	StatusAbsent  AttendanceStatus = "absent"
)

// SubmittableBy reports whether intake may write this status.
func (s AttendanceStatus) SubmittableBy() bool {
	switch s {
	case StatusPresent, StatusExcused, StatusSick:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one row in the attendance ledger. At most one record
// may exist per (UserID, ScheduleID, AttendanceDate); the database unique
// constraint is the arbiter.
type AttendanceRecord struct {
	ID             string           `db:"id" json:"id"`
	UserID         string           `db:"user_id" json:"user_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	ScheduleID     string           `db:"schedule_id" json:"schedule_id"`
	AttendanceDate time.Time        `db:"attendance_date" json:"attendance_date"`
	CheckInTime    time.Time        `db:"check_in_time" json:"check_in_time"`
	Method         AttendanceMethod `db:"method" json:"method"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Notes          *string          `db:"notes" json:"notes,omitempty"`
	PhotoURL       *string          `db:"photo_url" json:"photo_url,omitempty"`
	Latitude       *float64         `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64         `db:"longitude" json:"longitude,omitempty"`
	Address        *string          `db:"address" json:"address,omitempty"`
}

// AttendanceFilter scopes ledger listing queries.
type AttendanceFilter struct {
	UserID     string
	ScheduleID string
	CourseID   string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// TapOutcomeState classifies the per-session result of one card tap.
type TapOutcomeState string

const (
	TapSuccess         TapOutcomeState = "success"
	TapAlreadyAttended TapOutcomeState = "already-attended"
	TapError           TapOutcomeState = "error"
)

// TapOutcome reports what happened for one usable session during a card tap.
type TapOutcome struct {
	SessionID  string            `json:"session_id"`
	ScheduleID string            `json:"schedule_id"`
	CourseID   string            `json:"course_id"`
	State      TapOutcomeState   `json:"state"`
	Record     *AttendanceRecord `json:"record,omitempty"`
	Message    string            `json:"message,omitempty"`
}
