package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hadirku/presensi-api/internal/models"
)

// SettingRepository persists global key-value configuration rows.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get fetches one setting row. Missing keys surface as sql.ErrNoRows so the
// service can fall back to its configured default.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT key, value, updated_by, updated_at FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes a setting, replacing any existing value for the key.
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error) {
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO settings (key, value, updated_by, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
RETURNING key, value, updated_by, updated_at`
	var stored models.Setting
	if err := r.db.GetContext(ctx, &stored, query,
		setting.Key, setting.Value, setting.UpdatedBy, setting.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	return &stored, nil
}
