package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/hadirku/presensi-api/internal/models"
)

// ScheduleRepository reads course schedule slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `s.id, s.course_id, c.name AS course_name, s.day_of_week, s.start_time, s.end_time, s.room`

// GetByID fetches a schedule slot joined with its course name.
func (r *ScheduleRepository) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
FROM schedules s
JOIN courses c ON c.id = s.course_id
WHERE s.id = $1`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, scheduleID); err != nil {
		return nil, err
	}
	return &schedule, nil
}
