package leaderboard

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	ratingsvc "github.com/MwahCodes/dates-and-debates/internal/services/ratings"
)

type refresherStub struct {
	calls atomic.Int64
	err   error
}

func (s *refresherStub) RefreshLeaderboard(context.Context) ([]ratingsvc.LeaderboardEntry, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []ratingsvc.LeaderboardEntry{{Name: "Alice"}}, nil
}

func TestRunRefreshesOnce(t *testing.T) {
	refresher := &refresherStub{}
	job := New(refresher, time.Minute, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := refresher.calls.Load(); got != 1 {
		t.Fatalf("expected one refresh, got %d", got)
	}
}

func TestRunPropagatesError(t *testing.T) {
	job := New(&refresherStub{err: fmt.Errorf("db down")}, time.Minute, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error from failed refresh")
	}
}

func TestStartRefreshesUntilCancelled(t *testing.T) {
	refresher := &refresherStub{}
	job := New(refresher, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)

	deadline := time.After(time.Second)
	for refresher.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("warmer did not tick, calls=%d", refresher.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
}
