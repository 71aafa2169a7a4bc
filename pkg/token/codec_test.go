package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRTokenRoundTrip(t *testing.T) {
	issued := time.Now()
	src := QRToken{
		ScheduleID:       "sched-1",
		CourseLabel:      "Algorithms",
		IssueDate:        "2025-03-10",
		ExpiresAtEpochMs: issued.Add(15 * time.Minute).UnixMilli(),
	}

	encoded, err := EncodeQR(src)
	require.NoError(t, err)

	decoded, err := DecodeQR(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
	assert.False(t, decoded.Expired(issued))
	assert.True(t, decoded.Expired(issued.Add(16*time.Minute)))
}

func TestDecodeQRMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-base64!!!",
		"bm90LWpzb24",          // base64("not-json")
		"e30",                  // base64("{}") — missing required fields
	}
	for _, raw := range cases {
		_, err := DecodeQR(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestQRTokenExpiryBoundary(t *testing.T) {
	now := time.Now()
	tok := QRToken{ScheduleID: "s", ExpiresAtEpochMs: now.UnixMilli()}
	assert.False(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Millisecond)))
}

func TestCardTokenRoundTrip(t *testing.T) {
	src := CardToken{
		UserID:          "user-1",
		NIM:             "2110512345",
		CardID:          "card-1",
		IssuedAtEpochMs: time.Now().UnixMilli(),
		IsActive:        true,
	}

	encoded, err := EncodeCard(src)
	require.NoError(t, err)

	decoded, err := DecodeCard(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestDecodeCardMissingFields(t *testing.T) {
	encoded, err := EncodeCard(CardToken{NIM: "123"})
	require.NoError(t, err)
	_, err = DecodeCard(encoded)
	assert.Error(t, err)
}
