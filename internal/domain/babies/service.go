package babies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"childcare-vaccines/internal/platform/dates"
	"childcare-vaccines/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("baby not found")
)

// BirthDateListener recibe el bebé ya actualizado cuando cambia su fecha de
// nacimiento o la marca de rotavirus (el calendario se regenera completo).
type BirthDateListener interface {
	BirthDateChanged(ctx context.Context, b Baby) error
}

type Service struct {
	repo      Repository
	now       func() time.Time
	loc       *time.Location
	log       logger.Logger
	listeners []BirthDateListener
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		now:  time.Now,
		loc:  time.UTC,
		log:  log,
	}
}

// SetLocation fija la zona usada para decidir qué día es "hoy".
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

func (s *Service) OnBirthDateChange(l BirthDateListener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

type CreateInput struct {
	Name                    string
	BirthDate               time.Time
	Gender                  string
	RotavirusThreeDoseBrand *bool
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Baby, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Baby{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Baby{}, ErrInvalidInput
	}
	bd, err := s.validBirthDate(in.BirthDate)
	if err != nil {
		return Baby{}, err
	}
	g, err := ParseGender(in.Gender)
	if err != nil {
		return Baby{}, err
	}

	now := s.now()
	b := Baby{
		ID:                      uuid.NewString(),
		OwnerUserID:             strings.TrimSpace(ownerUserID),
		Name:                    strings.TrimSpace(in.Name),
		Gender:                  g,
		BirthDate:               bd,
		RotavirusThreeDoseBrand: in.RotavirusThreeDoseBrand,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return Baby{}, err
	}
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Baby, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Baby{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Baby, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// UpdateProfileInput usa punteros para PATCH real: nil = no tocar.
type UpdateProfileInput struct {
	Name                    *string
	Gender                  *string
	BirthDate               *time.Time
	RotavirusThreeDoseBrand *bool
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Baby, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return Baby{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Baby{}, ErrInvalidInput
		}
		b.Name = name
	}
	if in.Gender != nil {
		g, err := ParseGender(*in.Gender)
		if err != nil {
			return Baby{}, err
		}
		b.Gender = g
	}

	scheduleChanged := false
	if in.BirthDate != nil {
		bd, err := s.validBirthDate(*in.BirthDate)
		if err != nil {
			return Baby{}, err
		}
		if !bd.Equal(b.BirthDate) {
			b.BirthDate = bd
			scheduleChanged = true
		}
	}
	if in.RotavirusThreeDoseBrand != nil {
		if b.RotavirusThreeDoseBrand == nil || *b.RotavirusThreeDoseBrand != *in.RotavirusThreeDoseBrand {
			v := *in.RotavirusThreeDoseBrand
			b.RotavirusThreeDoseBrand = &v
			scheduleChanged = true
		}
	}

	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		return Baby{}, err
	}

	if scheduleChanged {
		for _, l := range s.listeners {
			if err := l.BirthDateChanged(ctx, b); err != nil {
				s.log.Error("schedule regeneration failed", map[string]any{
					"baby_id": b.ID,
					"error":   err.Error(),
				})
				return b, fmt.Errorf("regenerate schedule: %w", err)
			}
		}
	}

	return b, nil
}

// UpdateBirthDate es el atajo usado cuando solo cambia la fecha.
func (s *Service) UpdateBirthDate(ctx context.Context, id string, birthDate time.Time) (Baby, error) {
	return s.UpdateProfile(ctx, id, UpdateProfileInput{BirthDate: &birthDate})
}

// validBirthDate exige fecha presente y no futura respecto de hoy.
func (s *Service) validBirthDate(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, ErrInvalidInput
	}
	bd := dates.DateOnly(t)
	if bd.After(dates.Today(s.now(), s.loc)) {
		return time.Time{}, ErrInvalidInput
	}
	return bd, nil
}
