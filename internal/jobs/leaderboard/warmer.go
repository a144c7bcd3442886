package leaderboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	ratingsvc "github.com/MwahCodes/dates-and-debates/internal/services/ratings"
)

type Refresher interface {
	RefreshLeaderboard(ctx context.Context) ([]ratingsvc.LeaderboardEntry, error)
}

// Job keeps the leaderboard cache warm so requests rarely fall through to
// the aggregation query.
type Job struct {
	refresher Refresher
	interval  time.Duration
	logger    *zap.Logger
}

func New(refresher Refresher, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.refresher == nil {
		return nil
	}

	entries, err := j.refresher.RefreshLeaderboard(ctx)
	if err != nil {
		return fmt.Errorf("refresh leaderboard cache: %w", err)
	}

	j.logger.Info("leaderboard cache refreshed", zap.Int("entries", len(entries)))
	return nil
}

// Start runs the job on its interval until the context is cancelled.
func (j *Job) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := j.Run(ctx); err != nil && ctx.Err() == nil {
					j.logger.Warn("leaderboard refresh failed", zap.Error(err))
				}
			}
		}
	}()
}
