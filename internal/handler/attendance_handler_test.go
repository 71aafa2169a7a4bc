package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirku/presensi-api/internal/middleware"
	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/repository"
	"github.com/hadirku/presensi-api/internal/service"
	"github.com/hadirku/presensi-api/pkg/evidence"
)

type ledgerMock struct {
	duplicate bool
}

func (m *ledgerMock) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if m.duplicate {
		return nil, repository.ErrDuplicate
	}
	stored := *record
	stored.ID = "att-1"
	stored.CheckInTime = time.Now().UTC()
	return &stored, nil
}

func (m *ledgerMock) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return []models.AttendanceRecord{}, 0, nil
}

func (m *ledgerMock) ScheduleDay(ctx context.Context, scheduleID string, date time.Time) ([]models.AttendanceRecord, error) {
	return []models.AttendanceRecord{}, nil
}

type scheduleMock struct{}

func (scheduleMock) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	return &models.Schedule{ID: scheduleID, CourseID: "course-1", CourseName: "Algorithms"}, nil
}

type cardMock struct{}

func (cardMock) GetByShortID(ctx context.Context, shortID string) (*models.NFCCard, error) {
	return nil, sql.ErrNoRows
}

type sessionMock struct{}

func (sessionMock) ListUsable(ctx context.Context, now time.Time) ([]models.NFCSession, error) {
	return nil, nil
}

type verifierMock struct{}

func (verifierMock) Verify(ctx context.Context, report *models.LocationReport, mandatory bool) (*models.VerifiedLocation, error) {
	return nil, nil
}

type metricsMock struct{}

func (metricsMock) RecordSubmission(method models.AttendanceMethod) {}
func (metricsMock) RecordDuplicate(method models.AttendanceMethod)  {}
func (metricsMock) RecordMockRejection()                            {}
func (metricsMock) RecordTapOutcome(state models.TapOutcomeState)   {}

func newTestAttendanceHandler(t *testing.T, ledger *ledgerMock) *AttendanceHandler {
	t.Helper()
	svc := service.NewAttendanceService(ledger, scheduleMock{}, cardMock{}, sessionMock{}, verifierMock{}, metricsMock{}, nil, nil)
	store, err := evidence.NewStore(t.TempDir(), "http://localhost:8080/evidence")
	require.NoError(t, err)
	return NewAttendanceHandler(svc, store)
}

func postJSON(c *gin.Context, target string, payload interface{}) {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func TestSubmitManualUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/attendance/manual", models.ManualSubmissionRequest{})

	handler.SubmitManual(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitManualCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/attendance/manual", models.ManualSubmissionRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "2024-03-11",
		Status:         models.StatusPresent,
		PhotoURL:       "http://localhost:8080/evidence/user-1/1.jpg",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.SubmitManual(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.AttendanceRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "att-1", envelope.Data.ID)
	assert.Equal(t, models.MethodManualPhoto, envelope.Data.Method)
}

func TestSubmitManualMissingPhoto(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/attendance/manual", models.ManualSubmissionRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "2024-03-11",
		Status:         models.StatusPresent,
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.SubmitManual(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitManualDuplicateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{duplicate: true})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/attendance/manual", models.ManualSubmissionRequest{
		ScheduleID:     "sched-1",
		AttendanceDate: "2024-03-11",
		Status:         models.StatusPresent,
		PhotoURL:       "http://localhost:8080/evidence/user-1/1.jpg",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.SubmitManual(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTapUnknownCard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/attendance/nfc/tap", models.TapRequest{ShortID: "missing"})

	handler.Tap(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadEvidenceStoresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "selfie.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/attendance/evidence", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.UploadEvidence(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data["url"], "http://localhost:8080/evidence/user-1/")
}

func TestUploadEvidenceMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAttendanceHandler(t, &ledgerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/attendance/evidence", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.UploadEvidence(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
