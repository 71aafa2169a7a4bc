package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hadirku/presensi-api/internal/models"
)

// NFCSessionRepository persists admin-activated attendance sessions.
type NFCSessionRepository struct {
	db *sqlx.DB
}

// NewNFCSessionRepository constructs the repository.
func NewNFCSessionRepository(db *sqlx.DB) *NFCSessionRepository {
	return &NFCSessionRepository{db: db}
}

const sessionColumns = `id, admin_id, schedule_id, course_id, attendance_date, is_active, expires_at, created_at`

// Activate supersedes any active session for the (schedule, date) scope and
// inserts the new one in a single transaction, so at most one active session
// exists per scope at any point.
func (r *NFCSessionRepository) Activate(ctx context.Context, session *models.NFCSession) (*models.NFCSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	session.IsActive = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session activation: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE nfc_sessions SET is_active = FALSE WHERE schedule_id = $1 AND attendance_date = $2 AND is_active`,
		session.ScheduleID, session.AttendanceDate); err != nil {
		return nil, fmt.Errorf("supersede active sessions: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO nfc_sessions (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING %s`, sessionColumns, sessionColumns)
	var stored models.NFCSession
	if err := tx.GetContext(ctx, &stored, query,
		session.ID, session.AdminID, session.ScheduleID, session.CourseID,
		session.AttendanceDate, session.IsActive, session.ExpiresAt, session.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session activation: %w", err)
	}
	committed = true
	return &stored, nil
}

// Deactivate ends a session. Idempotent.
func (r *NFCSessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE nfc_sessions SET is_active = FALSE WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}

// GetByID fetches a session row.
func (r *NFCSessionRepository) GetByID(ctx context.Context, sessionID string) (*models.NFCSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM nfc_sessions WHERE id = $1`, sessionColumns)
	var session models.NFCSession
	if err := r.db.GetContext(ctx, &session, query, sessionID); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListUsable returns sessions that are both flagged active and not yet past
// expiry. The predicate is evaluated against the database clock on every
// call; usable status is never cached because expiry is lazy.
func (r *NFCSessionRepository) ListUsable(ctx context.Context, now time.Time) ([]models.NFCSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM nfc_sessions WHERE is_active AND expires_at > $1 ORDER BY created_at ASC`, sessionColumns)
	var sessions []models.NFCSession
	if err := r.db.SelectContext(ctx, &sessions, query, now); err != nil {
		return nil, fmt.Errorf("list usable sessions: %w", err)
	}
	return sessions, nil
}
