package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrSelfSwipe      = errors.New("cannot swipe on yourself")
	ErrTargetNotFound = errors.New("swipe target not found")
	ErrRateLimited    = errors.New("swipe rate limit reached")
)

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, swiperID, targetID uuid.UUID, isLike bool) (pgrepo.SwipeRecord, *bool, error)
}

type MatchStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) error
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) (pgrepo.MatchRecord, bool, error)
}

type UserStore interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID uuid.UUID) (int64, bool, error)
}

type SwipeResult struct {
	Swipe         pgrepo.SwipeRecord
	PriorDecision *bool
	MatchCreated  bool
	Match         pgrepo.MatchRecord
	RetryAfterSec int64
}

type Service struct {
	pool        *pgxpool.Pool
	swipeStore  SwipeStore
	matchStore  MatchStore
	userStore   UserStore
	rateLimiter RateLimiter
	now         func() time.Time
	runTx       func(context.Context, *pgxpool.Pool, func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	MatchStore  MatchStore
	UserStore   UserStore
	RateLimiter RateLimiter
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:        deps.Pool,
		swipeStore:  deps.SwipeStore,
		matchStore:  deps.MatchStore,
		userStore:   deps.UserStore,
		rateLimiter: deps.RateLimiter,
		now:         time.Now,
		runTx:       pgrepo.WithTx,
	}
}

// Record stores a swipe decision and creates a match when the like is
// mutual. Re-swiping the same target overwrites the earlier decision; an
// existing match is never removed by a later dislike.
//
// The whole decision runs inside one transaction under a per-pair advisory
// lock, so two users liking each other at the same time produce exactly one
// match no matter how the transactions interleave.
func (s *Service) Record(ctx context.Context, swiperID, targetID uuid.UUID, isLike bool) (SwipeResult, error) {
	if swiperID == uuid.Nil || targetID == uuid.Nil {
		return SwipeResult{}, ErrValidation
	}
	if swiperID == targetID {
		return SwipeResult{}, ErrSelfSwipe
	}
	if s.swipeStore == nil || s.matchStore == nil {
		return SwipeResult{}, fmt.Errorf("swipe service is not configured")
	}

	if s.rateLimiter != nil {
		retryAfter, ok, err := s.rateLimiter.AllowSwipe(ctx, swiperID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("check swipe rate limit: %w", err)
		}
		if !ok {
			return SwipeResult{RetryAfterSec: retryAfter}, ErrRateLimited
		}
	}

	if s.userStore != nil {
		exists, err := s.userStore.Exists(ctx, targetID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("check swipe target: %w", err)
		}
		if !exists {
			return SwipeResult{}, ErrTargetNotFound
		}
	}

	var result SwipeResult
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.matchStore.LockPair(ctx, tx, swiperID, targetID); err != nil {
			return err
		}

		swipe, prior, err := s.swipeStore.Upsert(ctx, tx, swiperID, targetID, isLike)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSwipeTargetGone) {
				return ErrTargetNotFound
			}
			return err
		}
		result.Swipe = swipe
		result.PriorDecision = prior

		if !isLike {
			return nil
		}

		match, created, err := s.matchStore.CreateIfMutualLike(ctx, tx, swiperID, targetID)
		if err != nil {
			return err
		}
		result.Match = match
		result.MatchCreated = created

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			return SwipeResult{}, ErrTargetNotFound
		}
		return SwipeResult{}, err
	}

	return result, nil
}
