package models

import "time"

// SettingRequireLocation toggles the location check system-wide. When false
// the verifier step is skipped entirely for manual and QR intake.
const SettingRequireLocation = "require_location"

// Setting is one global configuration row.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
