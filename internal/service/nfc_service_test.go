package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirku/presensi-api/internal/models"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/token"
)

type cardRepoStub struct {
	registered *models.NFCCard
	active     *models.NFCCard
	taken      map[string]bool
}

func (s *cardRepoStub) Register(ctx context.Context, card *models.NFCCard) (*models.NFCCard, error) {
	stored := *card
	stored.ID = "card-1"
	stored.IsActive = true
	stored.IssuedAt = time.Now().UTC()
	s.registered = &stored
	return &stored, nil
}

func (s *cardRepoStub) GetByShortID(ctx context.Context, shortID string) (*models.NFCCard, error) {
	return nil, sql.ErrNoRows
}

func (s *cardRepoStub) GetActiveByUser(ctx context.Context, userID string) (*models.NFCCard, error) {
	if s.active == nil {
		return nil, sql.ErrNoRows
	}
	return s.active, nil
}

func (s *cardRepoStub) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	return s.taken[shortID], nil
}

func (s *cardRepoStub) Deactivate(ctx context.Context, cardID string) error {
	return nil
}

type sessionRepoStub struct {
	activated *models.NFCSession
	usable    []models.NFCSession
}

func (s *sessionRepoStub) Activate(ctx context.Context, session *models.NFCSession) (*models.NFCSession, error) {
	stored := *session
	stored.ID = "sess-1"
	stored.IsActive = true
	s.activated = &stored
	return &stored, nil
}

func (s *sessionRepoStub) Deactivate(ctx context.Context, sessionID string) error {
	return nil
}

func (s *sessionRepoStub) GetByID(ctx context.Context, sessionID string) (*models.NFCSession, error) {
	return nil, sql.ErrNoRows
}

func (s *sessionRepoStub) ListUsable(ctx context.Context, now time.Time) ([]models.NFCSession, error) {
	return s.usable, nil
}

type userReaderStub struct {
	user *models.User
}

func (s userReaderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func studentUser() *models.User {
	nim := "2110001"
	return &models.User{ID: "user-1", FullName: "Siti", NIM: &nim, Role: models.RoleStudent, Active: true}
}

func newNFCTestService(cards *cardRepoStub, sessions *sessionRepoStub, users userReaderStub) *NFCService {
	return NewNFCService(cards, sessions, users, scheduleStub{}, nil, nil, NFCConfig{
		SessionTTL:    30 * time.Minute,
		ShortIDLength: 8,
		TagBaseURL:    "http://localhost:8080/api/v1/attendance/nfc/tap",
	})
}

func TestRegisterCardIssuesTagPayload(t *testing.T) {
	cards := &cardRepoStub{}
	svc := newNFCTestService(cards, &sessionRepoStub{}, userReaderStub{user: studentUser()})

	issue, err := svc.RegisterCard(context.Background(), models.RegisterCardRequest{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, issue.Card.ShortID, 8)
	assert.Equal(t, "2110001", issue.Card.NIM)
	assert.True(t, issue.Card.IsActive)
	assert.Contains(t, issue.TagURL, issue.Card.ShortID)

	decoded, err := token.DecodeCard(issue.TagToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", decoded.UserID)
	assert.Equal(t, "card-1", decoded.CardID)
	assert.True(t, decoded.IsActive)
}

func TestRegisterCardRejectsNonStudent(t *testing.T) {
	teacher := &models.User{ID: "user-2", Role: models.RoleTeacher, Active: true}
	svc := newNFCTestService(&cardRepoStub{}, &sessionRepoStub{}, userReaderStub{user: teacher})

	_, err := svc.RegisterCard(context.Background(), models.RegisterCardRequest{UserID: "user-2"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRegisterCardUnknownUser(t *testing.T) {
	svc := newNFCTestService(&cardRepoStub{}, &sessionRepoStub{}, userReaderStub{})

	_, err := svc.RegisterCard(context.Background(), models.RegisterCardRequest{UserID: "ghost"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestActivateSessionSetsExpiry(t *testing.T) {
	sessions := &sessionRepoStub{}
	svc := newNFCTestService(&cardRepoStub{}, sessions, userReaderStub{user: studentUser()})

	before := time.Now().UTC()
	session, err := svc.ActivateSession(context.Background(), "admin-1", models.ActivateSessionRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "2024-03-11",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", session.AdminID)
	assert.Equal(t, "course-1", session.CourseID)
	assert.WithinDuration(t, before.Add(30*time.Minute), session.ExpiresAt, 5*time.Second)
	assert.True(t, session.Usable(before))
}

func TestActivateSessionRejectsBadDate(t *testing.T) {
	svc := newNFCTestService(&cardRepoStub{}, &sessionRepoStub{}, userReaderStub{user: studentUser()})

	_, err := svc.ActivateSession(context.Background(), "admin-1", models.ActivateSessionRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "11/03/2024",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestListUsableSessionsNeverNil(t *testing.T) {
	svc := newNFCTestService(&cardRepoStub{}, &sessionRepoStub{}, userReaderStub{})

	sessions, err := svc.ListUsableSessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}
