package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

type candidateStoreStub struct {
	candidates []pgrepo.CandidateRecord
	remaining  int
	lastAfter  *uuid.UUID
	lastLimit  int
}

func (s *candidateStoreStub) ListCandidates(_ context.Context, _ uuid.UUID, afterID *uuid.UUID, limit int) ([]pgrepo.CandidateRecord, error) {
	s.lastAfter = afterID
	s.lastLimit = limit
	if limit < len(s.candidates) {
		return s.candidates[:limit], nil
	}
	return s.candidates, nil
}

func (s *candidateStoreStub) CountRemaining(context.Context, uuid.UUID) (int, error) {
	return s.remaining, nil
}

func candidates(n int) []pgrepo.CandidateRecord {
	out := make([]pgrepo.CandidateRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pgrepo.CandidateRecord{ID: uuid.New()})
	}
	return out
}

func TestListRejectsNilViewer(t *testing.T) {
	svc := NewService(&candidateStoreStub{}, Config{})

	if _, err := svc.List(context.Background(), uuid.Nil, nil, 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestListSetsCursorOnFullPage(t *testing.T) {
	store := &candidateStoreStub{candidates: candidates(3), remaining: 10}
	svc := NewService(store, Config{DefaultPageSize: 20})

	page, err := svc.List(context.Background(), uuid.New(), nil, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if page.NextCursor == nil {
		t.Fatalf("expected cursor when the page is full")
	}
	if *page.NextCursor != page.Candidates[2].ID {
		t.Fatalf("cursor must be the last candidate id")
	}
	if page.Remaining != 10 {
		t.Fatalf("unexpected remaining count: %d", page.Remaining)
	}
}

func TestListOmitsCursorOnShortPage(t *testing.T) {
	store := &candidateStoreStub{candidates: candidates(2)}
	svc := NewService(store, Config{DefaultPageSize: 20})

	page, err := svc.List(context.Background(), uuid.New(), nil, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.NextCursor != nil {
		t.Fatalf("expected no cursor on a short page")
	}
}

func TestListPassesCursorThrough(t *testing.T) {
	store := &candidateStoreStub{}
	svc := NewService(store, Config{DefaultPageSize: 20})

	cursor := uuid.New()
	if _, err := svc.List(context.Background(), uuid.New(), &cursor, 0); err != nil {
		t.Fatalf("list: %v", err)
	}

	if store.lastAfter == nil || *store.lastAfter != cursor {
		t.Fatalf("expected cursor to reach the store, got %v", store.lastAfter)
	}
	if store.lastLimit != 20 {
		t.Fatalf("expected default page size for zero limit, got %d", store.lastLimit)
	}
}

func TestListClampsLimit(t *testing.T) {
	store := &candidateStoreStub{}
	svc := NewService(store, Config{DefaultPageSize: 20})

	if _, err := svc.List(context.Background(), uuid.New(), nil, 10_000); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastLimit != maxPageSize {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageSize, store.lastLimit)
	}
}
