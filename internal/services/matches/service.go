package matches

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrMatchNotFound = errors.New("match not found")
)

type MatchStore interface {
	GetByUsers(ctx context.Context, userID, targetID uuid.UUID) (pgrepo.MatchRecord, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]pgrepo.MatchPartnerRecord, error)
	DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) (bool, error)
}

type MessageStore interface {
	DeleteBetween(ctx context.Context, tx pgx.Tx, userID, partnerID uuid.UUID) (int64, error)
}

type Service struct {
	pool         *pgxpool.Pool
	matchStore   MatchStore
	messageStore MessageStore
	runTx        func(context.Context, *pgxpool.Pool, func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MatchStore   MatchStore
	MessageStore MessageStore
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:         deps.Pool,
		matchStore:   deps.MatchStore,
		messageStore: deps.MessageStore,
		runTx:        pgrepo.WithTx,
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]pgrepo.MatchPartnerRecord, error) {
	if userID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("matches service is not configured")
	}

	items, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return items, nil
}

func (s *Service) Get(ctx context.Context, userID, partnerID uuid.UUID) (pgrepo.MatchRecord, error) {
	if userID == uuid.Nil || partnerID == uuid.Nil {
		return pgrepo.MatchRecord{}, ErrValidation
	}
	if s.matchStore == nil {
		return pgrepo.MatchRecord{}, fmt.Errorf("matches service is not configured")
	}

	match, err := s.matchStore.GetByUsers(ctx, userID, partnerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MatchRecord{}, ErrMatchNotFound
		}
		return pgrepo.MatchRecord{}, fmt.Errorf("get match: %w", err)
	}

	return match, nil
}

// Unmatch removes the match and the conversation in one transaction. The
// swipe rows stay, so neither user resurfaces in the other's feed.
func (s *Service) Unmatch(ctx context.Context, userID, partnerID uuid.UUID) error {
	if userID == uuid.Nil || partnerID == uuid.Nil || userID == partnerID {
		return ErrValidation
	}
	if s.matchStore == nil {
		return fmt.Errorf("matches service is not configured")
	}

	return s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		deleted, err := s.matchStore.DeleteByUsers(ctx, tx, userID, partnerID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrMatchNotFound
		}

		if s.messageStore != nil {
			if _, err := s.messageStore.DeleteBetween(ctx, tx, userID, partnerID); err != nil {
				return err
			}
		}

		return nil
	})
}
