package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

type userStoreStub struct {
	user       pgrepo.UserRecord
	getErr     error
	lastUpdate pgrepo.UserProfileUpdate
	updates    int
}

func (s *userStoreStub) GetByID(context.Context, uuid.UUID) (pgrepo.UserRecord, error) {
	if s.getErr != nil {
		return pgrepo.UserRecord{}, s.getErr
	}
	return s.user, nil
}

func (s *userStoreStub) UpdateProfile(_ context.Context, _ uuid.UUID, update pgrepo.UserProfileUpdate) (pgrepo.UserRecord, error) {
	s.updates++
	s.lastUpdate = update
	return s.user, nil
}

func newTestService(users *userStoreStub, now time.Time) *Service {
	svc := NewService(users)
	svc.now = func() time.Time { return now }
	return svc
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestGetMapsNotFound(t *testing.T) {
	svc := newTestService(&userStoreStub{getErr: pgrepo.ErrUserNotFound}, time.Now())

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateNormalizesMBTI(t *testing.T) {
	users := &userStoreStub{}
	svc := newTestService(users, time.Now())

	if _, err := svc.Update(context.Background(), uuid.New(), ProfileUpdate{MBTIType: strPtr(" intj ")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if users.lastUpdate.MBTIType == nil || *users.lastUpdate.MBTIType != "INTJ" {
		t.Fatalf("expected normalized MBTI, got %v", users.lastUpdate.MBTIType)
	}

	if _, err := svc.Update(context.Background(), uuid.New(), ProfileUpdate{MBTIType: strPtr("ABCD")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bogus MBTI, got %v", err)
	}
}

func TestUpdateEnforcesAdultAge(t *testing.T) {
	users := &userStoreStub{}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(users, now)

	tooYoung := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), uuid.New(), ProfileUpdate{Birthday: &tooYoung}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for underage birthday, got %v", err)
	}

	adult := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), uuid.New(), ProfileUpdate{Birthday: &adult}); err != nil {
		t.Fatalf("update with adult birthday: %v", err)
	}

	// Eighteen years old on the day itself.
	exactly := time.Date(2008, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), uuid.New(), ProfileUpdate{Birthday: &exactly}); err != nil {
		t.Fatalf("update with exact 18th birthday: %v", err)
	}
}

func TestUpdateBodyBounds(t *testing.T) {
	users := &userStoreStub{}
	svc := newTestService(users, time.Now())
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Update(ctx, userID, ProfileUpdate{HeightCM: intPtr(99)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short height, got %v", err)
	}
	if _, err := svc.Update(ctx, userID, ProfileUpdate{HeightCM: intPtr(251)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for tall height, got %v", err)
	}
	if _, err := svc.Update(ctx, userID, ProfileUpdate{WeightKG: intPtr(29)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for low weight, got %v", err)
	}
	if _, err := svc.Update(ctx, userID, ProfileUpdate{WeightKG: intPtr(301)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for high weight, got %v", err)
	}
	if users.updates != 0 {
		t.Fatalf("expected no writes for out-of-range values, got %d", users.updates)
	}

	if _, err := svc.Update(ctx, userID, ProfileUpdate{HeightCM: intPtr(180), WeightKG: intPtr(75)}); err != nil {
		t.Fatalf("update with sane values: %v", err)
	}
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc := newTestService(&userStoreStub{}, time.Now())

	if _, err := svc.Update(context.Background(), uuid.New(), ProfileUpdate{Name: strPtr("   ")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank name, got %v", err)
	}
}
