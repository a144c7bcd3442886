package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/MwahCodes/dates-and-debates/internal/repo/redis"
)

func newTestLimiter(t *testing.T, perMinute, per10Sec int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(redrepo.NewRateRepo(client), perMinute, per10Sec), mr
}

func TestAllowSwipeWithinLimits(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, 3)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		retryAfter, ok, err := limiter.AllowSwipe(context.Background(), userID)
		if err != nil {
			t.Fatalf("allow swipe %d: %v", i+1, err)
		}
		if !ok || retryAfter != 0 {
			t.Fatalf("swipe %d should be allowed, got ok=%v retry=%d", i+1, ok, retryAfter)
		}
	}
}

func TestAllowSwipeBlocksOverMinuteLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, 0)
	userID := uuid.New()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, ok, err := limiter.AllowSwipe(ctx, userID); err != nil || !ok {
			t.Fatalf("swipe %d should be allowed: ok=%v err=%v", i+1, ok, err)
		}
	}

	retryAfter, ok, err := limiter.AllowSwipe(ctx, userID)
	if err != nil {
		t.Fatalf("allow swipe over limit: %v", err)
	}
	if ok {
		t.Fatalf("third swipe should be blocked")
	}
	if retryAfter <= 0 || retryAfter > 60 {
		t.Fatalf("unexpected retry_after: %d", retryAfter)
	}
}

func TestAllowSwipeIsolatesUsers(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, 0)
	ctx := context.Background()

	if _, ok, err := limiter.AllowSwipe(ctx, uuid.New()); err != nil || !ok {
		t.Fatalf("first user should be allowed: ok=%v err=%v", ok, err)
	}
	if _, ok, err := limiter.AllowSwipe(ctx, uuid.New()); err != nil || !ok {
		t.Fatalf("second user must not share the first user's window: ok=%v err=%v", ok, err)
	}
}

func TestAllowSwipeRecoversAfterWindow(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, 0)
	userID := uuid.New()
	ctx := context.Background()

	if _, ok, err := limiter.AllowSwipe(ctx, userID); err != nil || !ok {
		t.Fatalf("first swipe should be allowed: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := limiter.AllowSwipe(ctx, userID); ok {
		t.Fatalf("second swipe should be blocked")
	}

	mr.FastForward(61 * time.Second)

	if _, ok, err := limiter.AllowSwipe(ctx, userID); err != nil || !ok {
		t.Fatalf("swipe after window should be allowed: ok=%v err=%v", ok, err)
	}
}

func TestRetryAfterSwipeReportsState(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, 0)
	userID := uuid.New()
	ctx := context.Background()

	retryAfter, err := limiter.RetryAfterSwipe(ctx, userID)
	if err != nil {
		t.Fatalf("retry after on empty state: %v", err)
	}
	if retryAfter != 0 {
		t.Fatalf("expected zero retry_after before any swipes, got %d", retryAfter)
	}

	if _, _, err := limiter.AllowSwipe(ctx, userID); err != nil {
		t.Fatalf("allow swipe: %v", err)
	}

	retryAfter, err = limiter.RetryAfterSwipe(ctx, userID)
	if err != nil {
		t.Fatalf("retry after at limit: %v", err)
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry_after at the limit, got %d", retryAfter)
	}
}
