package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hadirku/presensi-api/internal/models"
)

// ErrDuplicate signals that the ledger already holds a record for the
// (user, schedule, date) key. The unique constraint on the attendances table
// is the enforcement mechanism; this error is its application-side shape.
var ErrDuplicate = errors.New("attendance record already exists")

const uniqueViolation = "23505"

// AttendanceRepository persists the attendance ledger.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, user_id, course_id, schedule_id, attendance_date, check_in_time, method, status, notes, photo_url, latitude, longitude, address`

// Insert writes one ledger record. The insert races are settled by the
// database: a conflicting key yields no row, which surfaces as ErrDuplicate.
// Records are immutable once written; there is no update path.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CheckInTime.IsZero() {
		record.CheckInTime = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO attendances (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (user_id, schedule_id, attendance_date) DO NOTHING
RETURNING %s`, attendanceColumns, attendanceColumns)

	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.UserID, record.CourseID, record.ScheduleID, record.AttendanceDate,
		record.CheckInTime, record.Method, record.Status, record.Notes, record.PhotoURL,
		record.Latitude, record.Longitude, record.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDuplicate
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	return &stored, nil
}

// List returns ledger records filtered by the provided criteria, newest first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := "1=1"
	args := []interface{}{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.ScheduleID != "" {
		args = append(args, filter.ScheduleID)
		where += fmt.Sprintf(" AND schedule_id = $%d", len(args))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		where += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where += fmt.Sprintf(" AND attendance_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where += fmt.Sprintf(" AND attendance_date <= $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM attendances WHERE %s ORDER BY attendance_date DESC, check_in_time DESC LIMIT %d OFFSET %d`,
		attendanceColumns, where, size, offset)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendances WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// ScheduleDay returns every record captured for a schedule occurrence.
func (r *AttendanceRepository) ScheduleDay(ctx context.Context, scheduleID string, date time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendances WHERE schedule_id = $1 AND attendance_date = $2 ORDER BY check_in_time ASC`, attendanceColumns)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, scheduleID, date); err != nil {
		return nil, fmt.Errorf("schedule day attendance: %w", err)
	}
	return rows, nil
}
