package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirku/presensi-api/internal/models"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/token"
)

func TestIssueTokenRoundTrips(t *testing.T) {
	svc := NewQRService(scheduleStub{}, nil, nil, QRConfig{
		TokenTTL:  15 * time.Minute,
		SubmitURL: "http://localhost:8080/api/v1/attendance/qr",
	})

	issue, err := svc.IssueToken(context.Background(), models.IssueQRTokenRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "2024-03-11",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(issue.SubmitURL, "http://localhost:8080/api/v1/attendance/qr?token="))
	assert.Equal(t, "Algorithms", issue.Schedule.CourseName)

	decoded, err := token.DecodeQR(issue.Token)
	require.NoError(t, err)
	assert.Equal(t, "sched-1", decoded.ScheduleID)
	assert.Equal(t, "Algorithms", decoded.CourseLabel)
	assert.Equal(t, "2024-03-11", decoded.IssueDate)
	assert.False(t, decoded.Expired(time.Now().UTC()))
	assert.True(t, decoded.Expired(time.Now().UTC().Add(16*time.Minute)))
}

func TestIssueTokenUnknownSchedule(t *testing.T) {
	svc := NewQRService(scheduleStub{missing: true}, nil, nil, QRConfig{TokenTTL: 15 * time.Minute})

	_, err := svc.IssueToken(context.Background(), models.IssueQRTokenRequest{
		ScheduleID:     "missing",
		AttendanceDate: "2024-03-11",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestIssueTokenRejectsBadDate(t *testing.T) {
	svc := NewQRService(scheduleStub{}, nil, nil, QRConfig{TokenTTL: 15 * time.Minute})

	_, err := svc.IssueToken(context.Background(), models.IssueQRTokenRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "March 11",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
