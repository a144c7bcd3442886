package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSwipeNotFound   = errors.New("swipe not found")
	ErrSwipeTargetGone = errors.New("swipe target does not exist")
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID        int64
	SwiperID  uuid.UUID
	TargetID  uuid.UUID
	IsLike    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Upsert records a swipe decision, overwriting any previous decision for the
// same directed pair. The returned prior pointer is nil on the first swipe.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, swiperID, targetID uuid.UUID, isLike bool) (SwipeRecord, *bool, error) {
	if swiperID == uuid.Nil || targetID == uuid.Nil {
		return SwipeRecord{}, nil, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, nil, fmt.Errorf("transaction is required")
	}

	var prior *bool
	var priorLike bool
	err := tx.QueryRow(ctx, `
SELECT is_like
FROM swipes
WHERE swiper_id = $1 AND target_id = $2
FOR UPDATE
`, swiperID, targetID).Scan(&priorLike)
	switch {
	case err == nil:
		prior = &priorLike
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return SwipeRecord{}, nil, fmt.Errorf("get prior swipe: %w", err)
	}

	var rec SwipeRecord
	err = tx.QueryRow(ctx, `
INSERT INTO swipes (
	swiper_id,
	target_id,
	is_like,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (swiper_id, target_id) DO UPDATE SET
	is_like = EXCLUDED.is_like,
	updated_at = NOW()
RETURNING id, swiper_id, target_id, is_like, created_at, updated_at
`, swiperID, targetID, isLike).Scan(
		&rec.ID,
		&rec.SwiperID,
		&rec.TargetID,
		&rec.IsLike,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyMissing {
			return SwipeRecord{}, nil, ErrSwipeTargetGone
		}
		return SwipeRecord{}, nil, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, prior, nil
}

func (r *SwipeRepo) Get(ctx context.Context, swiperID, targetID uuid.UUID) (SwipeRecord, error) {
	if swiperID == uuid.Nil || targetID == uuid.Nil {
		return SwipeRecord{}, fmt.Errorf("invalid swipe lookup")
	}
	if r.pool == nil {
		return SwipeRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec SwipeRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, swiper_id, target_id, is_like, created_at, updated_at
FROM swipes
WHERE swiper_id = $1 AND target_id = $2
`, swiperID, targetID).Scan(
		&rec.ID,
		&rec.SwiperID,
		&rec.TargetID,
		&rec.IsLike,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get swipe: %w", err)
	}

	return rec, nil
}

func (r *SwipeRepo) HasLike(ctx context.Context, tx pgx.Tx, swiperID, targetID uuid.UUID) (bool, error) {
	if swiperID == uuid.Nil || targetID == uuid.Nil {
		return false, fmt.Errorf("invalid swipe lookup")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE swiper_id = $1 AND target_id = $2 AND is_like
LIMIT 1
`, swiperID, targetID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return true, nil
}
