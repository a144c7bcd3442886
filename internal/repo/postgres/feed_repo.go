package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedRepo struct {
	pool *pgxpool.Pool
}

type CandidateRecord struct {
	ID             uuid.UUID
	Name           string
	Birthday       *time.Time
	EducationLevel string
	HeightCM       int
	WeightKG       int
	MBTIType       string
	AvatarKey      string
	CreatedAt      time.Time
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

// ListCandidates returns users the viewer has not swiped on yet, excluding
// the viewer. Keyset pagination on user id; a nil cursor starts from the top.
func (r *FeedRepo) ListCandidates(ctx context.Context, viewerID uuid.UUID, afterID *uuid.UUID, limit int) ([]CandidateRecord, error) {
	if viewerID == uuid.Nil {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []CandidateRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	u.id,
	u.name,
	u.birthday,
	COALESCE(u.education_level, ''),
	COALESCE(u.height_cm, 0),
	COALESCE(u.weight_kg, 0),
	COALESCE(u.mbti_type, ''),
	COALESCE(u.avatar_key, ''),
	u.created_at
FROM users u
WHERE u.id <> $1
	AND ($2::uuid IS NULL OR u.id > $2)
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.swiper_id = $1 AND s.target_id = u.id
	)
ORDER BY u.id ASC
LIMIT $3
`, viewerID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]CandidateRecord, 0, limit)
	for rows.Next() {
		var item CandidateRecord
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Birthday,
			&item.EducationLevel,
			&item.HeightCM,
			&item.WeightKG,
			&item.MBTIType,
			&item.AvatarKey,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}

func (r *FeedRepo) CountRemaining(ctx context.Context, viewerID uuid.UUID) (int, error) {
	if viewerID == uuid.Nil {
		return 0, fmt.Errorf("invalid viewer id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM users u
WHERE u.id <> $1
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.swiper_id = $1 AND s.target_id = u.id
	)
`, viewerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count remaining candidates: %w", err)
	}

	return count, nil
}
