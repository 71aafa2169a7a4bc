package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// QRToken is the transient capability payload embedded in a QR code URL.
// It is deliberately unsigned: the short validity window is its only defense.
type QRToken struct {
	ScheduleID       string `json:"schedule_id"`
	CourseLabel      string `json:"course_label"`
	IssueDate        string `json:"issue_date"`
	ExpiresAtEpochMs int64  `json:"expires_at"`
}

// CardToken is the registration payload written onto a physical NFC tag.
type CardToken struct {
	UserID         string `json:"user_id"`
	NIM            string `json:"nim"`
	CardID         string `json:"card_id"`
	IssuedAtEpochMs int64  `json:"issued_at"`
	IsActive       bool   `json:"is_active"`
}

// Expired reports whether the token's absolute expiry has passed.
func (t QRToken) Expired(now time.Time) bool {
	return t.ExpiresAtEpochMs < now.UnixMilli()
}

// EncodeQR serialises a QR capability token into a transport-safe string.
func EncodeQR(t QRToken) (string, error) {
	return encode(t)
}

// DecodeQR parses an encoded QR token. Expiry is the caller's check.
func DecodeQR(raw string) (QRToken, error) {
	var t QRToken
	if err := decode(raw, &t); err != nil {
		return QRToken{}, err
	}
	if t.ScheduleID == "" || t.ExpiresAtEpochMs == 0 {
		return QRToken{}, fmt.Errorf("qr token missing required fields")
	}
	return t, nil
}

// EncodeCard serialises a card registration token for the physical tag.
func EncodeCard(t CardToken) (string, error) {
	return encode(t)
}

// DecodeCard parses an encoded card token.
func DecodeCard(raw string) (CardToken, error) {
	var t CardToken
	if err := decode(raw, &t); err != nil {
		return CardToken{}, err
	}
	if t.UserID == "" || t.CardID == "" {
		return CardToken{}, fmt.Errorf("card token missing required fields")
	}
	return t, nil
}

func encode(payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decode(raw string, dest interface{}) error {
	if raw == "" {
		return fmt.Errorf("empty token")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		// Tokens copied out of URLs sometimes arrive padded.
		decoded, err = base64.URLEncoding.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
	}
	if err := json.Unmarshal(decoded, dest); err != nil {
		return fmt.Errorf("parse token payload: %w", err)
	}
	return nil
}
