package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hadirku/presensi-api/internal/models"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
)

type settingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error)
}

// SettingsService reads and writes global configuration, with a short-lived
// Redis cache in front of reads on the hot intake path.
type SettingsService struct {
	repo     settingRepository
	redis    *redis.Client
	logger   *zap.Logger
	cacheTTL time.Duration

	// requireLocationDefault applies when no row exists for the key yet.
	requireLocationDefault bool
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingRepository, redisClient *redis.Client, logger *zap.Logger, cacheTTL time.Duration, requireLocationDefault bool) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:                   repo,
		redis:                  redisClient,
		logger:                 logger,
		cacheTTL:               cacheTTL,
		requireLocationDefault: requireLocationDefault,
	}
}

func settingCacheKey(key string) string {
	return fmt.Sprintf("settings:%s", key)
}

// Get returns a setting row. Missing keys map to NotFound.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch setting")
	}
	return setting, nil
}

// Set upserts a setting and invalidates its cache entry.
func (s *SettingsService) Set(ctx context.Context, key, value string, updatedBy string) (*models.Setting, error) {
	setting := &models.Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: &updatedBy,
		UpdatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Upsert(ctx, setting)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, settingCacheKey(key)).Err(); err != nil {
			s.logger.Warn("failed to invalidate setting cache", zap.String("key", key), zap.Error(err))
		}
	}
	return stored, nil
}

// RequireLocation reports whether intake must verify device location. A cache
// or database failure falls back to the configured default rather than
// blocking submissions.
func (s *SettingsService) RequireLocation(ctx context.Context) bool {
	cacheKey := settingCacheKey(models.SettingRequireLocation)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			if parsed, parseErr := strconv.ParseBool(cached); parseErr == nil {
				return parsed
			}
		}
	}

	value := s.requireLocationDefault
	setting, err := s.repo.Get(ctx, models.SettingRequireLocation)
	switch {
	case err == nil:
		if parsed, parseErr := strconv.ParseBool(setting.Value); parseErr == nil {
			value = parsed
		}
	case errors.Is(err, sql.ErrNoRows):
		// No row yet; the configured default rules.
	default:
		s.logger.Warn("failed to read require_location setting", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, strconv.FormatBool(value), s.cacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache require_location setting", zap.Error(err))
		}
	}
	return value
}
