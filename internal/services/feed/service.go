package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

const maxPageSize = 100

type CandidateStore interface {
	ListCandidates(ctx context.Context, viewerID uuid.UUID, afterID *uuid.UUID, limit int) ([]pgrepo.CandidateRecord, error)
	CountRemaining(ctx context.Context, viewerID uuid.UUID) (int, error)
}

type Config struct {
	DefaultPageSize int
}

type Page struct {
	Candidates []pgrepo.CandidateRecord
	NextCursor *uuid.UUID
	Remaining  int
}

type Service struct {
	store CandidateStore
	cfg   Config
}

func NewService(store CandidateStore, cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}

	return &Service{
		store: store,
		cfg:   cfg,
	}
}

// List returns the next page of swipe candidates. The cursor is the id of
// the last candidate from the previous page.
func (s *Service) List(ctx context.Context, viewerID uuid.UUID, cursor *uuid.UUID, limit int) (Page, error) {
	if viewerID == uuid.Nil {
		return Page{}, ErrValidation
	}
	if s.store == nil {
		return Page{}, fmt.Errorf("feed service is not configured")
	}

	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	candidates, err := s.store.ListCandidates(ctx, viewerID, cursor, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list candidates: %w", err)
	}

	remaining, err := s.store.CountRemaining(ctx, viewerID)
	if err != nil {
		return Page{}, fmt.Errorf("count remaining candidates: %w", err)
	}

	page := Page{
		Candidates: candidates,
		Remaining:  remaining,
	}
	if len(candidates) == limit {
		last := candidates[len(candidates)-1].ID
		page.NextCursor = &last
	}

	return page, nil
}
