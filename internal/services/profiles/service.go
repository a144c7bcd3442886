package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MwahCodes/dates-and-debates/internal/domain/rules"
	"github.com/MwahCodes/dates-and-debates/internal/pkg/validate"
	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

const (
	minHeightCM = 100
	maxHeightCM = 250
	minWeightKG = 30
	maxWeightKG = 300
	minAgeYears = 18
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUserNotFound = errors.New("user not found")
)

type UserStore interface {
	GetByID(ctx context.Context, userID uuid.UUID) (pgrepo.UserRecord, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update pgrepo.UserProfileUpdate) (pgrepo.UserRecord, error)
}

type ProfileUpdate struct {
	Name           *string
	Birthday       *time.Time
	EducationLevel *string
	HeightCM       *int
	WeightKG       *int
	MBTIType       *string
}

type Service struct {
	users UserStore
	now   func() time.Time
}

func NewService(users UserStore) *Service {
	return &Service{
		users: users,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (pgrepo.UserRecord, error) {
	if userID == uuid.Nil {
		return pgrepo.UserRecord{}, ErrValidation
	}
	if s.users == nil {
		return pgrepo.UserRecord{}, fmt.Errorf("profiles service is not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return pgrepo.UserRecord{}, ErrUserNotFound
		}
		return pgrepo.UserRecord{}, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (pgrepo.UserRecord, error) {
	if userID == uuid.Nil {
		return pgrepo.UserRecord{}, ErrValidation
	}
	if s.users == nil {
		return pgrepo.UserRecord{}, fmt.Errorf("profiles service is not configured")
	}

	repoUpdate := pgrepo.UserProfileUpdate{
		Birthday:       update.Birthday,
		EducationLevel: update.EducationLevel,
		HeightCM:       update.HeightCM,
		WeightKG:       update.WeightKG,
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if !validate.Required(name) {
			return pgrepo.UserRecord{}, ErrValidation
		}
		repoUpdate.Name = &name
	}
	if update.Birthday != nil {
		if s.ageAt(*update.Birthday) < minAgeYears {
			return pgrepo.UserRecord{}, ErrValidation
		}
	}
	if update.HeightCM != nil && (*update.HeightCM < minHeightCM || *update.HeightCM > maxHeightCM) {
		return pgrepo.UserRecord{}, ErrValidation
	}
	if update.WeightKG != nil && (*update.WeightKG < minWeightKG || *update.WeightKG > maxWeightKG) {
		return pgrepo.UserRecord{}, ErrValidation
	}
	if update.MBTIType != nil {
		normalized := rules.NormalizeMBTI(*update.MBTIType)
		if normalized == "" {
			return pgrepo.UserRecord{}, ErrValidation
		}
		repoUpdate.MBTIType = &normalized
	}

	user, err := s.users.UpdateProfile(ctx, userID, repoUpdate)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return pgrepo.UserRecord{}, ErrUserNotFound
		}
		return pgrepo.UserRecord{}, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

func (s *Service) ageAt(birthday time.Time) int {
	now := s.now().UTC()
	years := now.Year() - birthday.Year()
	anniversary := birthday.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
