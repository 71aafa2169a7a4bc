package models

import "time"

// LocationReport is the device's geolocation attempt attached to a
// submission. Exactly one of Sample or FailureCode is expected when the
// device attempted capture; both nil means no attempt was made.
type LocationReport struct {
	Sample      *LocationSample  `json:"sample,omitempty"`
	FailureCode *LocationFailure `json:"failure_code,omitempty"`
}

// VerifiedLocation is the verifier's output, ready for the ledger row.
type VerifiedLocation struct {
	Latitude  *float64
	Longitude *float64
	Address   *string
}

// ManualSubmissionRequest is the payload for photo-backed manual check-in.
type ManualSubmissionRequest struct {
	ScheduleID     string           `json:"schedule_id" validate:"required"`
	AttendanceDate string           `json:"attendance_date" validate:"required"`
	Status         AttendanceStatus `json:"status" validate:"required"`
	Notes          *string          `json:"notes,omitempty"`
	PhotoURL       string           `json:"photo_url"`
	Location       *LocationReport  `json:"location,omitempty"`
}

// QRSubmissionRequest is the payload for QR capability-token check-in.
type QRSubmissionRequest struct {
	Token    string          `json:"token" validate:"required"`
	Location *LocationReport `json:"location,omitempty"`
}

// TapRequest identifies the tapped card by its tag alias.
type TapRequest struct {
	ShortID string `json:"short_id" validate:"required"`
}

// TapResult aggregates the per-session outcomes of one card tap.
type TapResult struct {
	UserID   string       `json:"user_id"`
	NIM      string       `json:"nim"`
	Outcomes []TapOutcome `json:"outcomes"`
}

// QRTokenIssue is the response to a QR token issuance request.
type QRTokenIssue struct {
	Token     string    `json:"token"`
	SubmitURL string    `json:"submit_url"`
	ExpiresAt time.Time `json:"expires_at"`
	Schedule  Schedule  `json:"schedule"`
}

// IssueQRTokenRequest asks for a capability token for a schedule occurrence.
type IssueQRTokenRequest struct {
	ScheduleID     string `json:"schedule_id" validate:"required"`
	AttendanceDate string `json:"attendance_date" validate:"required"`
}

// RegisterCardRequest binds a physical card to a student.
type RegisterCardRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// CardIssue is the response to a card registration, including the encoded
// payload to write onto the physical tag.
type CardIssue struct {
	Card     NFCCard `json:"card"`
	TagToken string  `json:"tag_token"`
	TagURL   string  `json:"tag_url"`
}

// ActivateSessionRequest opens a tap-accepting window for a schedule occurrence.
type ActivateSessionRequest struct {
	ScheduleID     string `json:"schedule_id" validate:"required"`
	AttendanceDate string `json:"attendance_date" validate:"required"`
}

// UpdateSettingRequest writes one global configuration value.
type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
}
