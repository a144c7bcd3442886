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

var ErrMessageReceiverGone = errors.New("message receiver does not exist")

type MessageRepo struct {
	pool *pgxpool.Pool
}

type MessageRecord struct {
	ID         int64
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Content    string
	CreatedAt  time.Time
	ReadAt     *time.Time
}

type ThreadRecord struct {
	PartnerID     uuid.UUID
	LastContent   string
	LastSenderID  uuid.UUID
	LastCreatedAt time.Time
	UnreadCount   int
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, senderID, receiverID uuid.UUID, content string) (MessageRecord, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil || content == "" {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return MessageRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec MessageRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (
	sender_id,
	receiver_id,
	content,
	created_at
) VALUES ($1, $2, $3, NOW())
RETURNING id, sender_id, receiver_id, content, created_at, read_at
`, senderID, receiverID, content).Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.Content,
		&rec.CreatedAt,
		&rec.ReadAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyMissing {
			return MessageRecord{}, ErrMessageReceiverGone
		}
		return MessageRecord{}, fmt.Errorf("create message: %w", err)
	}

	return rec, nil
}

// ListConversation returns the latest page of a two-user conversation in
// ascending order. beforeID = 0 means the newest page.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, partnerID uuid.UUID, beforeID int64, limit int) ([]MessageRecord, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return nil, fmt.Errorf("invalid conversation lookup")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, sender_id, receiver_id, content, created_at, read_at
FROM (
	SELECT id, sender_id, receiver_id, content, created_at, read_at
	FROM messages
	WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		AND ($3 = 0 OR id < $3)
	ORDER BY id DESC
	LIMIT $4
) page
ORDER BY id ASC
`, userID, partnerID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, limit)
}

// ListSince returns conversation messages with an id above the watermark,
// ascending. The chat poller drives this.
func (r *MessageRepo) ListSince(ctx context.Context, userID, partnerID uuid.UUID, afterID int64, limit int) ([]MessageRecord, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return nil, fmt.Errorf("invalid conversation lookup")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, sender_id, receiver_id, content, created_at, read_at
FROM messages
WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
	AND id > $3
ORDER BY id ASC
LIMIT $4
`, userID, partnerID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages since: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, limit)
}

func (r *MessageRepo) ListThreads(ctx context.Context, userID uuid.UUID, limit int) ([]ThreadRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ThreadRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id,
	m.content,
	m.sender_id,
	m.created_at,
	(
		SELECT COUNT(*)
		FROM messages unread
		WHERE unread.receiver_id = $1
			AND unread.sender_id = CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END
			AND unread.read_at IS NULL
	)
FROM (
	SELECT DISTINCT ON (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id))
		id, sender_id, receiver_id, content, created_at
	FROM messages
	WHERE sender_id = $1 OR receiver_id = $1
	ORDER BY LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id), id DESC
) m
ORDER BY m.created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	items := make([]ThreadRecord, 0, limit)
	for rows.Next() {
		var item ThreadRecord
		if err := rows.Scan(
			&item.PartnerID,
			&item.LastContent,
			&item.LastSenderID,
			&item.LastCreatedAt,
			&item.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate threads: %w", rows.Err())
	}

	return items, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, userID, partnerID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return 0, fmt.Errorf("invalid mark read payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE messages
SET read_at = NOW()
WHERE receiver_id = $1 AND sender_id = $2 AND read_at IS NULL
`, userID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteBetween removes a conversation. Unmatching runs this inside the
// same transaction that deletes the match row.
func (r *MessageRepo) DeleteBetween(ctx context.Context, tx pgx.Tx, userID, partnerID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return 0, fmt.Errorf("invalid conversation delete payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM messages
WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
`, userID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanMessages(rows pgx.Rows, limit int) ([]MessageRecord, error) {
	items := make([]MessageRecord, 0, limit)
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SenderID,
			&rec.ReceiverID,
			&rec.Content,
			&rec.CreatedAt,
			&rec.ReadAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
