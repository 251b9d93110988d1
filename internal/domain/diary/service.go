package diary

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("entry not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Code       string
	OccurredAt time.Time
	Value      *float64
	Notes      string
}

func (s *Service) Create(ctx context.Context, babyID, authorUserID string, in CreateInput) (Entry, error) {
	if strings.TrimSpace(babyID) == "" || strings.TrimSpace(authorUserID) == "" {
		return Entry{}, ErrInvalidInput
	}
	code, ok := ParseCode(strings.ToLower(strings.TrimSpace(in.Code)))
	if !ok {
		return Entry{}, ErrInvalidInput
	}

	now := s.now()
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	if occurred.After(now.Add(time.Minute)) {
		return Entry{}, ErrInvalidInput
	}

	e := Entry{
		ID:           uuid.NewString(),
		BabyID:       babyID,
		Kind:         code.Kind(),
		Code:         code,
		OccurredAt:   occurred,
		RecordedAt:   now,
		Notes:        strings.TrimSpace(in.Notes),
		AuthorUserID: authorUserID,
		Status:       StatusActive,
	}

	// Solo los hábitos llevan cantidad.
	if e.Kind == KindHabit {
		if in.Value == nil || *in.Value < 0 {
			return Entry{}, ErrInvalidInput
		}
		v := *in.Value
		e.Value = &v
		e.Unit = code.Unit()
	} else if in.Value != nil {
		return Entry{}, ErrInvalidInput
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByBaby(ctx context.Context, babyID string, filter ListFilter) ([]Entry, error) {
	return s.repo.ListByBaby(ctx, babyID, filter)
}

// Void marca el registro como anulado (no se borra).
func (s *Service) Void(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrInvalidInput
	}
	if err := s.repo.Void(ctx, id); err != nil {
		return Entry{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// RecentAlerts evalúa las reglas de alerta sobre la última semana.
func (s *Service) RecentAlerts(ctx context.Context, babyID string, loc *time.Location) ([]Alert, error) {
	now := s.now()
	from := now.AddDate(0, 0, -7)
	items, err := s.repo.ListByBaby(ctx, babyID, ListFilter{Kind: KindSymptom, From: &from})
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return Alerts(items, now.In(loc), loc), nil
}
