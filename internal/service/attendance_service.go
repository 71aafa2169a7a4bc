package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/repository"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/token"
)

const dateLayout = "2006-01-02"

type attendanceLedger interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	ScheduleDay(ctx context.Context, scheduleID string, date time.Time) ([]models.AttendanceRecord, error)
}

type scheduleReader interface {
	GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error)
}

type cardReader interface {
	GetByShortID(ctx context.Context, shortID string) (*models.NFCCard, error)
}

type usableSessionLister interface {
	ListUsable(ctx context.Context, now time.Time) ([]models.NFCSession, error)
}

type locationVerifier interface {
	Verify(ctx context.Context, report *models.LocationReport, mandatory bool) (*models.VerifiedLocation, error)
}

type intakeMetrics interface {
	RecordSubmission(method models.AttendanceMethod)
	RecordDuplicate(method models.AttendanceMethod)
	RecordMockRejection()
	RecordTapOutcome(state models.TapOutcomeState)
}

// AttendanceService owns the three intake channels and ledger reads. All
// channels converge on a single write path so the uniqueness rule is enforced
// in exactly one place.
type AttendanceService struct {
	ledger    attendanceLedger
	schedules scheduleReader
	cards     cardReader
	sessions  usableSessionLister
	location  locationVerifier
	metrics   intakeMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(
	ledger attendanceLedger,
	schedules scheduleReader,
	cards cardReader,
	sessions usableSessionLister,
	location locationVerifier,
	metrics intakeMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{
		ledger:    ledger,
		schedules: schedules,
		cards:     cards,
		sessions:  sessions,
		location:  location,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// SubmitManual records a photo-backed manual check-in.
func (s *AttendanceService) SubmitManual(ctx context.Context, userID string, req models.ManualSubmissionRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if req.PhotoURL == "" {
		return nil, appErrors.ErrEvidenceMissing
	}
	if !req.Status.SubmittableBy() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status is not submittable")
	}

	date, err := time.Parse(dateLayout, req.AttendanceDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance_date must be YYYY-MM-DD")
	}

	schedule, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}

	verified, err := s.verifyLocation(ctx, req.Location, false)
	if err != nil {
		return nil, err
	}

	photoURL := req.PhotoURL
	record := &models.AttendanceRecord{
		UserID:         userID,
		CourseID:       schedule.CourseID,
		ScheduleID:     schedule.ID,
		AttendanceDate: date,
		Method:         models.MethodManualPhoto,
		Status:         req.Status,
		Notes:          req.Notes,
		PhotoURL:       &photoURL,
	}
	applyLocation(record, verified)

	return s.write(ctx, record)
}

// SubmitQR records a check-in carried by a QR capability token. The token is
// decoded and expiry-checked here; location is mandatory for this channel
// regardless of the global setting.
func (s *AttendanceService) SubmitQR(ctx context.Context, userID string, req models.QRSubmissionRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	qr, err := token.DecodeQR(req.Token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedToken.Code, appErrors.ErrMalformedToken.Status, appErrors.ErrMalformedToken.Message)
	}
	if qr.Expired(time.Now().UTC()) {
		return nil, appErrors.ErrTokenExpired
	}

	date, err := time.Parse(dateLayout, qr.IssueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrMalformedToken, "token carries an invalid issue date")
	}

	schedule, err := s.schedules.GetByID(ctx, qr.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}

	verified, err := s.verifyLocation(ctx, req.Location, true)
	if err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		UserID:         userID,
		CourseID:       schedule.CourseID,
		ScheduleID:     schedule.ID,
		AttendanceDate: date,
		Method:         models.MethodQR,
		Status:         models.StatusPresent,
	}
	applyLocation(record, verified)

	return s.write(ctx, record)
}

// TapCard resolves a card by its tag alias and fans the tap out across every
// currently usable session. Each session gets its own outcome; one failure
// never blocks the others.
func (s *AttendanceService) TapCard(ctx context.Context, req models.TapRequest) (*models.TapResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tap payload")
	}

	card, err := s.cards.GetByShortID(ctx, req.ShortID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCardNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch card")
	}
	if !card.IsActive {
		return nil, appErrors.ErrCardInactive
	}

	now := time.Now().UTC()
	sessions, err := s.sessions.ListUsable(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	result := &models.TapResult{UserID: card.UserID, NIM: card.NIM}
	for _, session := range sessions {
		if !session.Usable(now) {
			continue
		}
		outcome := models.TapOutcome{
			SessionID:  session.ID,
			ScheduleID: session.ScheduleID,
			CourseID:   session.CourseID,
		}

		record := &models.AttendanceRecord{
			UserID:         card.UserID,
			CourseID:       session.CourseID,
			ScheduleID:     session.ScheduleID,
			AttendanceDate: session.AttendanceDate,
			Method:         models.MethodNFC,
			Status:         models.StatusPresent,
		}
		stored, err := s.ledger.Insert(ctx, record)
		switch {
		case err == nil:
			outcome.State = models.TapSuccess
			outcome.Record = stored
			s.metrics.RecordSubmission(models.MethodNFC)
		case errors.Is(err, repository.ErrDuplicate):
			outcome.State = models.TapAlreadyAttended
			outcome.Message = "attendance already recorded for this session"
			s.metrics.RecordDuplicate(models.MethodNFC)
		default:
			outcome.State = models.TapError
			outcome.Message = "failed to record attendance"
			s.logger.Error("tap insert failed",
				zap.String("session_id", session.ID),
				zap.String("user_id", card.UserID),
				zap.Error(err))
		}
		s.metrics.RecordTapOutcome(outcome.State)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if len(result.Outcomes) == 0 {
		return nil, appErrors.ErrSessionNotUsable
	}
	return result, nil
}

// MyAttendance lists the caller's ledger records.
func (s *AttendanceService) MyAttendance(ctx context.Context, userID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	filter.UserID = userID
	records, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ScheduleDay lists every record captured for one schedule occurrence.
func (s *AttendanceService) ScheduleDay(ctx context.Context, scheduleID string, rawDate string) ([]models.AttendanceRecord, error) {
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	records, err := s.ledger.ScheduleDay(ctx, scheduleID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// write is the single ledger write path shared by every intake channel.
func (s *AttendanceService) write(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	stored, err := s.ledger.Insert(ctx, record)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordDuplicate(record.Method)
			return nil, appErrors.ErrDuplicateSubmission
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.metrics.RecordSubmission(record.Method)
	return stored, nil
}

func (s *AttendanceService) verifyLocation(ctx context.Context, report *models.LocationReport, mandatory bool) (*models.VerifiedLocation, error) {
	verified, err := s.location.Verify(ctx, report, mandatory)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrSuspectedMockLocation) {
			s.metrics.RecordMockRejection()
		}
		return nil, err
	}
	return verified, nil
}

func applyLocation(record *models.AttendanceRecord, verified *models.VerifiedLocation) {
	if verified == nil {
		return
	}
	record.Latitude = verified.Latitude
	record.Longitude = verified.Longitude
	record.Address = verified.Address
}
