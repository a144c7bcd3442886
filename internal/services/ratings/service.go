package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
	redrepo "github.com/MwahCodes/dates-and-debates/internal/repo/redis"
)

const (
	MinScore = 1
	MaxScore = 10

	leaderboardCacheKey = "leaderboard:top"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrSelfRating    = errors.New("cannot rate yourself")
	ErrUserNotFound  = errors.New("rated user not found")
	ErrRatingMissing = errors.New("rating not found")
)

type RatingStore interface {
	Upsert(ctx context.Context, raterID, ratedID uuid.UUID, score int) (pgrepo.RatingRecord, error)
	Get(ctx context.Context, raterID, ratedID uuid.UUID) (pgrepo.RatingRecord, error)
	StatsForUser(ctx context.Context, userID uuid.UUID) (pgrepo.RatingStatsRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]pgrepo.RatingStatsRecord, error)
}

type Cache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, target any) error
}

type LeaderboardEntry struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	MBTIType     string    `json:"mbti_type"`
	AvatarKey    string    `json:"avatar_key"`
	AverageScore float64   `json:"average_score"`
	RatingCount  int       `json:"rating_count"`
}

type Config struct {
	LeaderboardSize int
	CacheTTL        time.Duration
}

type Service struct {
	store RatingStore
	cache Cache
	cfg   Config
}

type Dependencies struct {
	RatingStore RatingStore
	Cache       Cache
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 50
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	return &Service{
		store: deps.RatingStore,
		cache: deps.Cache,
		cfg:   cfg,
	}
}

// Submit stores a score, replacing the rater's previous score for the same
// user.
func (s *Service) Submit(ctx context.Context, raterID, ratedID uuid.UUID, score int) (pgrepo.RatingRecord, error) {
	if raterID == uuid.Nil || ratedID == uuid.Nil {
		return pgrepo.RatingRecord{}, ErrValidation
	}
	if raterID == ratedID {
		return pgrepo.RatingRecord{}, ErrSelfRating
	}
	if score < MinScore || score > MaxScore {
		return pgrepo.RatingRecord{}, ErrValidation
	}
	if s.store == nil {
		return pgrepo.RatingRecord{}, fmt.Errorf("ratings service is not configured")
	}

	rating, err := s.store.Upsert(ctx, raterID, ratedID, score)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRatedUserGone) {
			return pgrepo.RatingRecord{}, ErrUserNotFound
		}
		return pgrepo.RatingRecord{}, fmt.Errorf("upsert rating: %w", err)
	}

	return rating, nil
}

func (s *Service) MyRatingFor(ctx context.Context, raterID, ratedID uuid.UUID) (pgrepo.RatingRecord, error) {
	if raterID == uuid.Nil || ratedID == uuid.Nil {
		return pgrepo.RatingRecord{}, ErrValidation
	}
	if s.store == nil {
		return pgrepo.RatingRecord{}, fmt.Errorf("ratings service is not configured")
	}

	rating, err := s.store.Get(ctx, raterID, ratedID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRatingNotFound) {
			return pgrepo.RatingRecord{}, ErrRatingMissing
		}
		return pgrepo.RatingRecord{}, fmt.Errorf("get rating: %w", err)
	}

	return rating, nil
}

func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (pgrepo.RatingStatsRecord, error) {
	if userID == uuid.Nil {
		return pgrepo.RatingStatsRecord{}, ErrValidation
	}
	if s.store == nil {
		return pgrepo.RatingStatsRecord{}, fmt.Errorf("ratings service is not configured")
	}

	stats, err := s.store.StatsForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return pgrepo.RatingStatsRecord{}, ErrUserNotFound
		}
		return pgrepo.RatingStatsRecord{}, fmt.Errorf("get rating stats: %w", err)
	}

	return stats, nil
}

// Leaderboard serves the cached snapshot when fresh and falls back to the
// aggregation query on a miss.
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("ratings service is not configured")
	}

	if s.cache != nil {
		var cached []LeaderboardEntry
		err := s.cache.GetJSON(ctx, leaderboardCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redrepo.ErrCacheMiss) {
			return nil, fmt.Errorf("read leaderboard cache: %w", err)
		}
	}

	return s.RefreshLeaderboard(ctx)
}

// RefreshLeaderboard recomputes the snapshot and repopulates the cache. The
// warmer job calls it on an interval so interactive reads stay on the cache.
func (s *Service) RefreshLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("ratings service is not configured")
	}

	records, err := s.store.Leaderboard(ctx, s.cfg.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("compute leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, LeaderboardEntry{
			UserID:       record.UserID,
			Name:         record.Name,
			MBTIType:     record.MBTIType,
			AvatarKey:    record.AvatarKey,
			AverageScore: record.AverageScore,
			RatingCount:  record.RatingCount,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, leaderboardCacheKey, entries, s.cfg.CacheTTL); err != nil {
			return nil, fmt.Errorf("write leaderboard cache: %w", err)
		}
	}

	return entries, nil
}
