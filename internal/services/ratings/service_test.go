package ratings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
	redrepo "github.com/MwahCodes/dates-and-debates/internal/repo/redis"
)

type ratingStoreStub struct {
	upserts          int
	lastScore        int
	leaderboardCalls int
	leaderboard      []pgrepo.RatingStatsRecord
	getErr           error
}

func (s *ratingStoreStub) Upsert(_ context.Context, raterID, ratedID uuid.UUID, score int) (pgrepo.RatingRecord, error) {
	s.upserts++
	s.lastScore = score
	return pgrepo.RatingRecord{
		ID:      1,
		RaterID: raterID,
		RatedID: ratedID,
		Score:   score,
	}, nil
}

func (s *ratingStoreStub) Get(_ context.Context, raterID, ratedID uuid.UUID) (pgrepo.RatingRecord, error) {
	if s.getErr != nil {
		return pgrepo.RatingRecord{}, s.getErr
	}
	return pgrepo.RatingRecord{RaterID: raterID, RatedID: ratedID, Score: s.lastScore}, nil
}

func (s *ratingStoreStub) StatsForUser(_ context.Context, userID uuid.UUID) (pgrepo.RatingStatsRecord, error) {
	return pgrepo.RatingStatsRecord{UserID: userID, AverageScore: 7.5, RatingCount: 2}, nil
}

func (s *ratingStoreStub) Leaderboard(context.Context, int) ([]pgrepo.RatingStatsRecord, error) {
	s.leaderboardCalls++
	return s.leaderboard, nil
}

func newCache(t *testing.T) *redrepo.CacheRepo {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redrepo.NewCacheRepo(client)
}

func TestSubmitValidation(t *testing.T) {
	store := &ratingStoreStub{}
	svc := NewService(Dependencies{RatingStore: store}, Config{})
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Submit(ctx, userID, userID, 5); !errors.Is(err, ErrSelfRating) {
		t.Fatalf("expected ErrSelfRating, got %v", err)
	}
	if _, err := svc.Submit(ctx, userID, uuid.New(), MinScore-1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for low score, got %v", err)
	}
	if _, err := svc.Submit(ctx, userID, uuid.New(), MaxScore+1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for high score, got %v", err)
	}
	if store.upserts != 0 {
		t.Fatalf("expected no writes for invalid input, got %d", store.upserts)
	}
}

func TestSubmitStoresScore(t *testing.T) {
	store := &ratingStoreStub{}
	svc := NewService(Dependencies{RatingStore: store}, Config{})

	rating, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), 8)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rating.Score != 8 || store.lastScore != 8 {
		t.Fatalf("unexpected stored score: %+v", rating)
	}
}

func TestMyRatingForMissing(t *testing.T) {
	store := &ratingStoreStub{getErr: pgrepo.ErrRatingNotFound}
	svc := NewService(Dependencies{RatingStore: store}, Config{})

	if _, err := svc.MyRatingFor(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrRatingMissing) {
		t.Fatalf("expected ErrRatingMissing, got %v", err)
	}
}

func TestLeaderboardUsesCache(t *testing.T) {
	store := &ratingStoreStub{
		leaderboard: []pgrepo.RatingStatsRecord{
			{UserID: uuid.New(), Name: "Alice", AverageScore: 9.5, RatingCount: 12},
			{UserID: uuid.New(), Name: "Bob", AverageScore: 8.0, RatingCount: 4},
		},
	}
	svc := NewService(Dependencies{RatingStore: store, Cache: newCache(t)}, Config{
		LeaderboardSize: 10,
		CacheTTL:        time.Minute,
	})
	ctx := context.Background()

	first, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard on cold cache: %v", err)
	}
	if len(first) != 2 || first[0].Name != "Alice" {
		t.Fatalf("unexpected leaderboard: %+v", first)
	}
	if store.leaderboardCalls != 1 {
		t.Fatalf("expected one aggregation query, got %d", store.leaderboardCalls)
	}

	second, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard on warm cache: %v", err)
	}
	if len(second) != 2 || second[1].Name != "Bob" {
		t.Fatalf("unexpected cached leaderboard: %+v", second)
	}
	if store.leaderboardCalls != 1 {
		t.Fatalf("warm read must not query the store, got %d calls", store.leaderboardCalls)
	}
}

func TestRefreshLeaderboardRepopulatesCache(t *testing.T) {
	store := &ratingStoreStub{
		leaderboard: []pgrepo.RatingStatsRecord{
			{UserID: uuid.New(), Name: "Alice", AverageScore: 9.5, RatingCount: 12},
		},
	}
	svc := NewService(Dependencies{RatingStore: store, Cache: newCache(t)}, Config{
		LeaderboardSize: 10,
		CacheTTL:        time.Minute,
	})
	ctx := context.Background()

	if _, err := svc.RefreshLeaderboard(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	entries, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard after refresh: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}
	if store.leaderboardCalls != 1 {
		t.Fatalf("read after refresh must hit the cache, got %d calls", store.leaderboardCalls)
	}
}

func TestLeaderboardWithoutCache(t *testing.T) {
	store := &ratingStoreStub{}
	svc := NewService(Dependencies{RatingStore: store}, Config{})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard without cache: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", entries)
	}
}
