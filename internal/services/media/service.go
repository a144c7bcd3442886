package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	signedURLTTL  = 15 * time.Minute
	maxAvatarSize = 5 << 20
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnsupportedType = errors.New("unsupported avatar content type")
	ErrTooLarge        = errors.New("avatar exceeds size limit")
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type Storage interface {
	EnsureBucket(ctx context.Context) error
	PutAvatar(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type AvatarStore interface {
	SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) (string, error)
}

type Service struct {
	storage Storage
	users   AvatarStore
}

func NewService(storage Storage, users AvatarStore) *Service {
	return &Service{
		storage: storage,
		users:   users,
	}
}

// UploadAvatar stores the image, points the user at the new key and removes
// the replaced object. A failed cleanup is not fatal; the new avatar is
// already live.
func (s *Service) UploadAvatar(ctx context.Context, userID uuid.UUID, body io.Reader, size int64, contentType string) (string, error) {
	if userID == uuid.Nil || body == nil || size <= 0 {
		return "", ErrValidation
	}
	if size > maxAvatarSize {
		return "", ErrTooLarge
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	if s.storage == nil || s.users == nil {
		return "", fmt.Errorf("media service is not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), ext)
	if err := s.storage.PutAvatar(ctx, key, body, size, contentType); err != nil {
		return "", err
	}

	previous, err := s.users.SetAvatarKey(ctx, userID, key)
	if err != nil {
		return "", fmt.Errorf("set avatar key: %w", err)
	}

	if previous != "" && previous != key {
		_ = s.storage.Delete(ctx, previous)
	}

	return key, nil
}

func (s *Service) AvatarURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrValidation
	}
	if s.storage == nil {
		return "", fmt.Errorf("media service is not configured")
	}

	return s.storage.PresignGet(ctx, key, signedURLTTL)
}
