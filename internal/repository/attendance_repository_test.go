package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirku/presensi-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

var attendanceTestColumns = []string{
	"id", "user_id", "course_id", "schedule_id", "attendance_date", "check_in_time",
	"method", "status", "notes", "photo_url", "latitude", "longitude", "address",
}

func TestAttendanceRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(attendanceTestColumns).
		AddRow("att-1", "user-1", "course-1", "sched-1", date, time.Now().UTC(),
			"manual-photo", "present", nil, "http://x/photo.jpg", nil, nil, nil)
	mock.ExpectQuery("INSERT INTO attendances").WillReturnRows(rows)

	photo := "http://x/photo.jpg"
	stored, err := repo.Insert(context.Background(), &models.AttendanceRecord{
		UserID:         "user-1",
		CourseID:       "course-1",
		ScheduleID:     "sched-1",
		AttendanceDate: date,
		Method:         models.MethodManualPhoto,
		Status:         models.StatusPresent,
		PhotoURL:       &photo,
	})
	require.NoError(t, err)
	assert.Equal(t, "att-1", stored.ID)
	assert.Equal(t, models.MethodManualPhoto, stored.Method)
}

func TestAttendanceRepositoryInsertDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	// ON CONFLICT DO NOTHING yields an empty result set for the losing insert.
	mock.ExpectQuery("INSERT INTO attendances").
		WillReturnRows(sqlmock.NewRows(attendanceTestColumns))

	_, err := repo.Insert(context.Background(), &models.AttendanceRecord{
		UserID:         "user-1",
		CourseID:       "course-1",
		ScheduleID:     "sched-1",
		AttendanceDate: time.Now().UTC(),
		Method:         models.MethodQR,
		Status:         models.StatusPresent,
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestAttendanceRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(attendanceTestColumns).
		AddRow("att-1", "user-1", "course-1", "sched-1", date, time.Now().UTC(),
			"qr", "present", nil, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM attendances").
		WithArgs("user-1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "att-1", records[0].ID)
}
