package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

const maxContentLen = 2000

var (
	ErrValidation     = errors.New("validation error")
	ErrNotMatched     = errors.New("users are not matched")
	ErrMessageTooLong = errors.New("message content too long")
)

type MessageStore interface {
	Create(ctx context.Context, senderID, receiverID uuid.UUID, content string) (pgrepo.MessageRecord, error)
	ListConversation(ctx context.Context, userID, partnerID uuid.UUID, beforeID int64, limit int) ([]pgrepo.MessageRecord, error)
	ListSince(ctx context.Context, userID, partnerID uuid.UUID, afterID int64, limit int) ([]pgrepo.MessageRecord, error)
	ListThreads(ctx context.Context, userID uuid.UUID, limit int) ([]pgrepo.ThreadRecord, error)
	MarkRead(ctx context.Context, userID, partnerID uuid.UUID) (int64, error)
}

type MatchStore interface {
	GetByUsers(ctx context.Context, userID, targetID uuid.UUID) (pgrepo.MatchRecord, error)
}

type Config struct {
	PageSize int
}

type Service struct {
	messages MessageStore
	matches  MatchStore
	cfg      Config
}

type Dependencies struct {
	MessageStore MessageStore
	MatchStore   MatchStore
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}

	return &Service{
		messages: deps.MessageStore,
		matches:  deps.MatchStore,
		cfg:      cfg,
	}
}

// Send delivers a message between matched users only.
func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (pgrepo.MessageRecord, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil || senderID == receiverID {
		return pgrepo.MessageRecord{}, ErrValidation
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return pgrepo.MessageRecord{}, ErrValidation
	}
	if len(content) > maxContentLen {
		return pgrepo.MessageRecord{}, ErrMessageTooLong
	}
	if s.messages == nil || s.matches == nil {
		return pgrepo.MessageRecord{}, fmt.Errorf("chat service is not configured")
	}

	if _, err := s.matches.GetByUsers(ctx, senderID, receiverID); err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MessageRecord{}, ErrNotMatched
		}
		return pgrepo.MessageRecord{}, fmt.Errorf("check match before send: %w", err)
	}

	message, err := s.messages.Create(ctx, senderID, receiverID, content)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMessageReceiverGone) {
			return pgrepo.MessageRecord{}, ErrValidation
		}
		return pgrepo.MessageRecord{}, fmt.Errorf("create message: %w", err)
	}

	return message, nil
}

func (s *Service) History(ctx context.Context, userID, partnerID uuid.UUID, beforeID int64, limit int) ([]pgrepo.MessageRecord, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.messages == nil {
		return nil, fmt.Errorf("chat service is not configured")
	}

	if limit <= 0 || limit > s.cfg.PageSize {
		limit = s.cfg.PageSize
	}

	items, err := s.messages.ListConversation(ctx, userID, partnerID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	return items, nil
}

func (s *Service) Threads(ctx context.Context, userID uuid.UUID, limit int) ([]pgrepo.ThreadRecord, error) {
	if userID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.messages == nil {
		return nil, fmt.Errorf("chat service is not configured")
	}

	items, err := s.messages.ListThreads(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, partnerID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return 0, ErrValidation
	}
	if s.messages == nil {
		return 0, fmt.Errorf("chat service is not configured")
	}

	marked, err := s.messages.MarkRead(ctx, userID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}

	return marked, nil
}
