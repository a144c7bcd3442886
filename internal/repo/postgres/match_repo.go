package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MwahCodes/dates-and-debates/internal/domain/rules"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

type MatchRecord struct {
	ID        int64
	UserAID   uuid.UUID
	UserBID   uuid.UUID
	CreatedAt time.Time
}

type MatchPartnerRecord struct {
	MatchID   int64
	PartnerID uuid.UUID
	Name      string
	MBTIType  string
	AvatarKey string
	CreatedAt time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// LockPair takes a transaction-scoped advisory lock on the unordered user
// pair. Concurrent reciprocal swipes serialize on it, so the reciprocal-like
// check below never runs against an uncommitted peer transaction.
func (r *MatchRepo) LockPair(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) error {
	if userID == uuid.Nil || targetID == uuid.Nil {
		return fmt.Errorf("invalid pair lock payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
`, rules.PairKey(userID, targetID)); err != nil {
		return fmt.Errorf("lock swipe pair: %w", err)
	}

	return nil
}

func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) (MatchRecord, bool, error) {
	if userID == uuid.Nil || targetID == uuid.Nil {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE swiper_id = $1 AND target_id = $2 AND is_like
LIMIT 1
`, targetID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, false, nil
		}
		return MatchRecord{}, false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA, userB := rules.OrderPair(userID, targetID)

	var rec MatchRecord
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, user_a_id, user_b_id, created_at
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Pair already matched; a re-like never creates a second row.
			return MatchRecord{}, false, nil
		}
		return MatchRecord{}, false, fmt.Errorf("create match: %w", err)
	}

	return rec, true, nil
}

func (r *MatchRepo) GetByUsers(ctx context.Context, userID, targetID uuid.UUID) (MatchRecord, error) {
	if userID == uuid.Nil || targetID == uuid.Nil {
		return MatchRecord{}, fmt.Errorf("invalid match lookup")
	}
	if r.pool == nil {
		return MatchRecord{}, fmt.Errorf("postgres pool is nil")
	}

	userA, userB := rules.OrderPair(userID, targetID)

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]MatchPartnerRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchPartnerRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	u.id,
	u.name,
	COALESCE(u.mbti_type, ''),
	COALESCE(u.avatar_key, ''),
	m.created_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchPartnerRecord, 0, limit)
	for rows.Next() {
		var item MatchPartnerRecord
		if err := rows.Scan(
			&item.MatchID,
			&item.PartnerID,
			&item.Name,
			&item.MBTIType,
			&item.AvatarKey,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || targetID == uuid.Nil {
		return false, fmt.Errorf("invalid match delete payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.OrderPair(userID, targetID)

	result, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
