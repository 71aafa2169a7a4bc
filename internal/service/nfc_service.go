package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
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

type cardRepository interface {
	Register(ctx context.Context, card *models.NFCCard) (*models.NFCCard, error)
	GetByShortID(ctx context.Context, shortID string) (*models.NFCCard, error)
	GetActiveByUser(ctx context.Context, userID string) (*models.NFCCard, error)
	ShortIDExists(ctx context.Context, shortID string) (bool, error)
	Deactivate(ctx context.Context, cardID string) error
}

type sessionRepository interface {
	Activate(ctx context.Context, session *models.NFCSession) (*models.NFCSession, error)
	Deactivate(ctx context.Context, sessionID string) error
	GetByID(ctx context.Context, sessionID string) (*models.NFCSession, error)
	ListUsable(ctx context.Context, now time.Time) ([]models.NFCSession, error)
}

type cardUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// NFCConfig controls card registration and session lifetimes.
type NFCConfig struct {
	SessionTTL    time.Duration
	ShortIDLength int
	TagBaseURL    string
}

// NFCService manages card registrations and attendance sessions.
type NFCService struct {
	cards     cardRepository
	sessions  sessionRepository
	users     cardUserReader
	schedules scheduleReader
	validator *validator.Validate
	logger    *zap.Logger
	config    NFCConfig
}

// NewNFCService constructs an NFCService.
func NewNFCService(
	cards cardRepository,
	sessions sessionRepository,
	users cardUserReader,
	schedules scheduleReader,
	validate *validator.Validate,
	logger *zap.Logger,
	config NFCConfig,
) *NFCService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.ShortIDLength <= 0 {
		config.ShortIDLength = 8
	}
	return &NFCService{
		cards:     cards,
		sessions:  sessions,
		users:     users,
		schedules: schedules,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// RegisterCard binds a new physical card to a student, superseding any card
// they already hold, and returns the payload to write onto the tag.
func (s *NFCService) RegisterCard(ctx context.Context, req models.RegisterCardRequest) (*models.CardIssue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cards can only be registered to students")
	}
	nim := ""
	if user.NIM != nil {
		nim = *user.NIM
	}
	if nim == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user has no student number")
	}

	shortID, err := s.newShortID(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate short id")
	}

	card, err := s.cards.Register(ctx, &models.NFCCard{
		UserID:  user.ID,
		NIM:     nim,
		ShortID: shortID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register card")
	}

	tagToken, err := token.EncodeCard(token.CardToken{
		UserID:          card.UserID,
		NIM:             card.NIM,
		CardID:          card.ID,
		IssuedAtEpochMs: card.IssuedAt.UnixMilli(),
		IsActive:        true,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode tag token")
	}

	return &models.CardIssue{
		Card:     *card,
		TagToken: tagToken,
		TagURL:   fmt.Sprintf("%s?c=%s", s.config.TagBaseURL, url.QueryEscape(card.ShortID)),
	}, nil
}

// DeactivateCard revokes a registration. Idempotent.
func (s *NFCService) DeactivateCard(ctx context.Context, cardID string) error {
	if err := s.cards.Deactivate(ctx, cardID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate card")
	}
	return nil
}

// ActiveCard returns the user's current active registration, if any.
func (s *NFCService) ActiveCard(ctx context.Context, userID string) (*models.NFCCard, error) {
	card, err := s.cards.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active card")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch card")
	}
	return card, nil
}

// ActivateSession opens a tap-accepting window for a schedule occurrence,
// superseding any session already active for the same scope.
func (s *NFCService) ActivateSession(ctx context.Context, adminID string, req models.ActivateSessionRequest) (*models.NFCSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
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

	now := time.Now().UTC()
	session, err := s.sessions.Activate(ctx, &models.NFCSession{
		AdminID:        adminID,
		ScheduleID:     schedule.ID,
		CourseID:       schedule.CourseID,
		AttendanceDate: date,
		ExpiresAt:      now.Add(s.config.SessionTTL),
		CreatedAt:      now,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate session")
	}
	return session, nil
}

// DeactivateSession ends a session early. Idempotent.
func (s *NFCService) DeactivateSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Deactivate(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate session")
	}
	return nil
}

// ListUsableSessions returns sessions currently accepting taps.
func (s *NFCService) ListUsableSessions(ctx context.Context) ([]models.NFCSession, error) {
	sessions, err := s.sessions.ListUsable(ctx, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.NFCSession{}
	}
	return sessions, nil
}

// newShortID draws random hex aliases until one is free. Collisions are
// vanishingly rare at the configured length; the retry cap guards against a
// broken randomness source rather than real contention.
func (s *NFCService) newShortID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, (s.config.ShortIDLength+1)/2)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate short id: %w", err)
		}
		candidate := hex.EncodeToString(buf)[:s.config.ShortIDLength]
		taken, err := s.cards.ShortIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted short id attempts")
}
