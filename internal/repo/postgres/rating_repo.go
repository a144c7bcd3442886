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
	ErrRatingNotFound = errors.New("rating not found")
	ErrRatedUserGone  = errors.New("rated user does not exist")
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

type RatingRecord struct {
	ID        int64
	RaterID   uuid.UUID
	RatedID   uuid.UUID
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RatingStatsRecord struct {
	UserID       uuid.UUID
	Name         string
	MBTIType     string
	AvatarKey    string
	AverageScore float64
	RatingCount  int
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

// Upsert stores a rating, replacing the rater's previous score for the same
// user. One row per (rater, rated) pair.
func (r *RatingRepo) Upsert(ctx context.Context, raterID, ratedID uuid.UUID, score int) (RatingRecord, error) {
	if raterID == uuid.Nil || ratedID == uuid.Nil || score < 1 || score > 10 {
		return RatingRecord{}, fmt.Errorf("invalid rating payload")
	}
	if r.pool == nil {
		return RatingRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec RatingRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO ratings (
	rater_id,
	rated_id,
	score,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (rater_id, rated_id) DO UPDATE SET
	score = EXCLUDED.score,
	updated_at = NOW()
RETURNING id, rater_id, rated_id, score, created_at, updated_at
`, raterID, ratedID, score).Scan(
		&rec.ID,
		&rec.RaterID,
		&rec.RatedID,
		&rec.Score,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyMissing {
			return RatingRecord{}, ErrRatedUserGone
		}
		return RatingRecord{}, fmt.Errorf("upsert rating: %w", err)
	}

	return rec, nil
}

func (r *RatingRepo) Get(ctx context.Context, raterID, ratedID uuid.UUID) (RatingRecord, error) {
	if raterID == uuid.Nil || ratedID == uuid.Nil {
		return RatingRecord{}, fmt.Errorf("invalid rating lookup")
	}
	if r.pool == nil {
		return RatingRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec RatingRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, rater_id, rated_id, score, created_at, updated_at
FROM ratings
WHERE rater_id = $1 AND rated_id = $2
`, raterID, ratedID).Scan(
		&rec.ID,
		&rec.RaterID,
		&rec.RatedID,
		&rec.Score,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RatingRecord{}, ErrRatingNotFound
		}
		return RatingRecord{}, fmt.Errorf("get rating: %w", err)
	}

	return rec, nil
}

func (r *RatingRepo) StatsForUser(ctx context.Context, userID uuid.UUID) (RatingStatsRecord, error) {
	if userID == uuid.Nil {
		return RatingStatsRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return RatingStatsRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var stats RatingStatsRecord
	err := r.pool.QueryRow(ctx, `
SELECT
	u.id,
	u.name,
	COALESCE(u.mbti_type, ''),
	COALESCE(u.avatar_key, ''),
	COALESCE(AVG(rt.score), 0),
	COUNT(rt.id)
FROM users u
LEFT JOIN ratings rt ON rt.rated_id = u.id
WHERE u.id = $1
GROUP BY u.id
`, userID).Scan(
		&stats.UserID,
		&stats.Name,
		&stats.MBTIType,
		&stats.AvatarKey,
		&stats.AverageScore,
		&stats.RatingCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RatingStatsRecord{}, ErrUserNotFound
		}
		return RatingStatsRecord{}, fmt.Errorf("get rating stats: %w", err)
	}

	return stats, nil
}

// Leaderboard aggregates received ratings per user, best average first.
// Ties break on rating count, then on user id for a stable order.
func (r *RatingRepo) Leaderboard(ctx context.Context, limit int) ([]RatingStatsRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []RatingStatsRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	u.id,
	u.name,
	COALESCE(u.mbti_type, ''),
	COALESCE(u.avatar_key, ''),
	AVG(rt.score),
	COUNT(rt.id)
FROM users u
JOIN ratings rt ON rt.rated_id = u.id
GROUP BY u.id
ORDER BY AVG(rt.score) DESC, COUNT(rt.id) DESC, u.id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	defer rows.Close()

	items := make([]RatingStatsRecord, 0, limit)
	for rows.Next() {
		var item RatingStatsRecord
		if err := rows.Scan(
			&item.UserID,
			&item.Name,
			&item.MBTIType,
			&item.AvatarKey,
			&item.AverageScore,
			&item.RatingCount,
		); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", rows.Err())
	}

	return items, nil
}
