package evidence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically removes expired evidence objects.
type Janitor struct {
	store    *Store
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewJanitor builds a janitor for the store.
func NewJanitor(store *Store, ttl, interval time.Duration, logger *zap.Logger) *Janitor {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{store: store, ttl: ttl, interval: interval, logger: logger}
}

// Run blocks, sweeping on the configured interval until the context ends.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := j.store.CleanupOlderThan(j.ttl)
			if err != nil {
				j.logger.Warn("evidence cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				j.logger.Sugar().Infow("evidence cleanup", "deleted", len(deleted))
			}
		}
	}
}
