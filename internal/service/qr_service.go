package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hadirku/presensi-api/internal/models"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/token"
)

// QRConfig controls capability token issuance.
type QRConfig struct {
	TokenTTL  time.Duration
	SubmitURL string
}

// QRService issues transient capability tokens for projection in class.
type QRService struct {
	schedules scheduleReader
	validator *validator.Validate
	logger    *zap.Logger
	config    QRConfig
}

// NewQRService constructs a QRService.
func NewQRService(schedules scheduleReader, validate *validator.Validate, logger *zap.Logger, config QRConfig) *QRService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QRService{schedules: schedules, validator: validate, logger: logger, config: config}
}

// IssueToken mints an unsigned capability token for one schedule occurrence.
// The short validity window is the token's only defense, so the TTL stays
// tight.
func (s *QRService) IssueToken(ctx context.Context, req models.IssueQRTokenRequest) (*models.QRTokenIssue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid token request")
	}
	if _, err := time.Parse(dateLayout, req.AttendanceDate); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance_date must be YYYY-MM-DD")
	}

	schedule, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}

	expiresAt := time.Now().UTC().Add(s.config.TokenTTL)
	encoded, err := token.EncodeQR(token.QRToken{
		ScheduleID:       schedule.ID,
		CourseLabel:      schedule.CourseName,
		IssueDate:        req.AttendanceDate,
		ExpiresAtEpochMs: expiresAt.UnixMilli(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode token")
	}

	return &models.QRTokenIssue{
		Token:     encoded,
		SubmitURL: fmt.Sprintf("%s?token=%s", s.config.SubmitURL, url.QueryEscape(encoded)),
		ExpiresAt: expiresAt,
		Schedule:  *schedule,
	}, nil
}
