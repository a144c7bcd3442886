package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	uniqueViolation   = "23505"
	foreignKeyMissing = "23503"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	Name           string
	Birthday       *time.Time
	EducationLevel string
	HeightCM       int
	WeightKG       int
	MBTIType       string
	AvatarKey      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserProfileUpdate struct {
	Name           *string
	Birthday       *time.Time
	EducationLevel *string
	HeightCM       *int
	WeightKG       *int
	MBTIType       *string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash, name string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(email) == "" || passwordHash == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}

	var user UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, name, created_at, updated_at)
VALUES (LOWER($1), $2, $3, NOW(), NOW())
RETURNING id, email, password_hash, name, birthday, COALESCE(education_level, ''),
	COALESCE(height_cm, 0), COALESCE(weight_kg, 0), COALESCE(mbti_type, ''),
	COALESCE(avatar_key, ''), created_at, updated_at
`, email, passwordHash, name).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Birthday,
		&user.EducationLevel,
		&user.HeightCM,
		&user.WeightKG,
		&user.MBTIType,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID == uuid.Nil {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	return r.getOne(ctx, `WHERE id = $1`, userID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(email) == "" {
		return UserRecord{}, fmt.Errorf("invalid email")
	}

	return r.getOne(ctx, `WHERE email = LOWER($1)`, email)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (UserRecord, error) {
	var user UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, name, birthday, COALESCE(education_level, ''),
	COALESCE(height_cm, 0), COALESCE(weight_kg, 0), COALESCE(mbti_type, ''),
	COALESCE(avatar_key, ''), created_at, updated_at
FROM users
`+where, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Birthday,
		&user.EducationLevel,
		&user.HeightCM,
		&user.WeightKG,
		&user.MBTIType,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID == uuid.Nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return true, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, update UserProfileUpdate) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID == uuid.Nil {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var user UserRecord
	err := r.pool.QueryRow(ctx, `
UPDATE users SET
	name = COALESCE($2, name),
	birthday = COALESCE($3, birthday),
	education_level = COALESCE($4, education_level),
	height_cm = COALESCE($5, height_cm),
	weight_kg = COALESCE($6, weight_kg),
	mbti_type = COALESCE($7, mbti_type),
	updated_at = NOW()
WHERE id = $1
RETURNING id, email, password_hash, name, birthday, COALESCE(education_level, ''),
	COALESCE(height_cm, 0), COALESCE(weight_kg, 0), COALESCE(mbti_type, ''),
	COALESCE(avatar_key, ''), created_at, updated_at
`, userID,
		update.Name,
		update.Birthday,
		update.EducationLevel,
		update.HeightCM,
		update.WeightKG,
		update.MBTIType,
	).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Birthday,
		&user.EducationLevel,
		&user.HeightCM,
		&user.WeightKG,
		&user.MBTIType,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("update user profile: %w", err)
	}

	return user, nil
}

func (r *UserRepo) SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("postgres pool is nil")
	}
	if userID == uuid.Nil {
		return "", fmt.Errorf("invalid user id")
	}

	var previous string
	err := r.pool.QueryRow(ctx, `
UPDATE users u SET
	avatar_key = $2,
	updated_at = NOW()
FROM (
	SELECT id, COALESCE(avatar_key, '') AS old_key
	FROM users
	WHERE id = $1
	FOR UPDATE
) prev
WHERE u.id = prev.id
RETURNING prev.old_key
`, userID, key).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("set avatar key: %w", err)
	}

	return previous, nil
}
