package swipes

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MwahCodes/dates-and-debates/internal/domain/rules"
	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

type txLockSetKey struct{}

// txLockSet collects pair locks taken inside one transaction and releases
// them when the transaction ends, the way an advisory xact lock behaves.
type txLockSet struct {
	mu    sync.Mutex
	locks []*sync.Mutex
}

func (s *txLockSet) add(m *sync.Mutex) {
	s.mu.Lock()
	s.locks = append(s.locks, m)
	s.mu.Unlock()
}

func (s *txLockSet) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.locks) - 1; i >= 0; i-- {
		s.locks[i].Unlock()
	}
	s.locks = nil
}

// pairDB mimics the storage semantics the service depends on: a per-pair
// lock held until the transaction ends, likes visible to later lock
// holders, and at most one match row per unordered pair.
type pairDB struct {
	mu        sync.Mutex
	pairLocks map[string]*sync.Mutex
	likes     map[string]bool
	matches   map[string]pgrepo.MatchRecord
	nextMatch int64
}

func newPairDB() *pairDB {
	return &pairDB{
		pairLocks: map[string]*sync.Mutex{},
		likes:     map[string]bool{},
		matches:   map[string]pgrepo.MatchRecord{},
	}
}

func (d *pairDB) LockPair(ctx context.Context, _ pgx.Tx, userID, targetID uuid.UUID) error {
	key := rules.PairKey(userID, targetID)

	d.mu.Lock()
	lock, ok := d.pairLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		d.pairLocks[key] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	if set, ok := ctx.Value(txLockSetKey{}).(*txLockSet); ok {
		set.add(lock)
	}
	return nil
}

func (d *pairDB) Upsert(_ context.Context, _ pgx.Tx, swiperID, targetID uuid.UUID, isLike bool) (pgrepo.SwipeRecord, *bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := swiperID.String() + ">" + targetID.String()
	var prior *bool
	if v, ok := d.likes[key]; ok {
		prior = &v
	}
	d.likes[key] = isLike

	return pgrepo.SwipeRecord{SwiperID: swiperID, TargetID: targetID, IsLike: isLike}, prior, nil
}

func (d *pairDB) CreateIfMutualLike(_ context.Context, _ pgx.Tx, userID, targetID uuid.UUID) (pgrepo.MatchRecord, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.likes[targetID.String()+">"+userID.String()] {
		return pgrepo.MatchRecord{}, false, nil
	}

	key := rules.PairKey(userID, targetID)
	if _, ok := d.matches[key]; ok {
		return pgrepo.MatchRecord{}, false, nil
	}

	d.nextMatch++
	userA, userB := rules.OrderPair(userID, targetID)
	rec := pgrepo.MatchRecord{ID: d.nextMatch, UserAID: userA, UserBID: userB}
	d.matches[key] = rec
	return rec, true, nil
}

func TestRecordConcurrentMutualLikesCreateOneMatch(t *testing.T) {
	const pairs = 25

	db := newPairDB()
	svc := NewService(Dependencies{
		SwipeStore: db,
		MatchStore: db,
		UserStore:  &userStoreStub{exists: true},
	})
	svc.runTx = func(ctx context.Context, _ *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
		set := &txLockSet{}
		ctx = context.WithValue(ctx, txLockSetKey{}, set)
		err := fn(ctx, nil)
		set.release()
		return err
	}

	start := make(chan struct{})
	created := make([]atomic.Int32, pairs)
	errs := make(chan error, pairs*2)

	var wg sync.WaitGroup
	for i := 0; i < pairs; i++ {
		userA, userB := uuid.New(), uuid.New()
		for _, pair := range [][2]uuid.UUID{{userA, userB}, {userB, userA}} {
			wg.Add(1)
			go func(idx int, swiperID, targetID uuid.UUID) {
				defer wg.Done()
				<-start

				result, err := svc.Record(context.Background(), swiperID, targetID, true)
				if err != nil {
					errs <- err
					return
				}
				if result.MatchCreated {
					created[idx].Add(1)
				}
			}(i, pair[0], pair[1])
		}
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("record swipe: %v", err)
	}
	for i := range created {
		if n := created[i].Load(); n != 1 {
			t.Fatalf("pair %d: expected exactly one match creation, got %d", i, n)
		}
	}
	if len(db.matches) != pairs {
		t.Fatalf("expected %d match rows, got %d", pairs, len(db.matches))
	}
	for key, rec := range db.matches {
		if bytes.Compare(rec.UserAID[:], rec.UserBID[:]) > 0 {
			t.Fatalf("match row %s not stored in canonical order: %+v", key, rec)
		}
	}
}
