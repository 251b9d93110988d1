package redisdoc

import (
	"context"
	"errors"
	"sort"
	"time"

	"childcare-vaccines/internal/domain/vaccines"
)

const (
	scheduleKeyPrefix = "vaccines:schedule:"
	schedulesSetKey   = "vaccines:schedules"
)

type doseDoc struct {
	ID              string                                  `json:"id"`
	BabyID          string                                  `json:"baby_id"`
	Vaccine         vaccines.Vaccine                        `json:"vaccine"`
	Name            string                                  `json:"name"`
	Description     string                                  `json:"description"`
	AgeInMonths     int                                     `json:"age_in_months"`
	RecommendedDate time.Time                               `json:"recommended_date"`
	Optional        bool                                    `json:"optional"`
	IsApplied       bool                                    `json:"is_applied"`
	AppliedDate     *time.Time                              `json:"applied_date,omitempty"`
	RemindersSent   map[vaccines.ReminderCategory]time.Time `json:"reminders_sent,omitempty"`
}

// DosesRepo guarda el esquema completo de un bebé en una sola llave.
type DosesRepo struct {
	c kv
}

func NewDosesRepo(c kv) *DosesRepo {
	return &DosesRepo{c: c}
}

func (r *DosesRepo) LoadDoses(ctx context.Context, babyID string) ([]vaccines.Dose, error) {
	var docs []doseDoc
	if err := getJSON(ctx, r.c, scheduleKeyPrefix+babyID, &docs); err != nil {
		if errors.Is(err, errMissing) {
			return []vaccines.Dose{}, nil
		}
		return nil, err
	}

	out := make([]vaccines.Dose, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDoseDoc(d))
	}
	return out, nil
}

func (r *DosesRepo) SaveDoses(ctx context.Context, babyID string, doses []vaccines.Dose) error {
	docs := make([]doseDoc, 0, len(doses))
	for _, d := range doses {
		docs = append(docs, toDoseDoc(d))
	}
	if err := setJSON(ctx, r.c, scheduleKeyPrefix+babyID, docs); err != nil {
		return err
	}
	return addMember(ctx, r.c, schedulesSetKey, babyID)
}

// UpdateDose reescribe el documento del bebé con la dosis reemplazada.
func (r *DosesRepo) UpdateDose(ctx context.Context, d vaccines.Dose) error {
	list, err := r.LoadDoses(ctx, d.BabyID)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == d.ID {
			list[i] = d
			return r.SaveDoses(ctx, d.BabyID, list)
		}
	}
	return vaccines.ErrNotFound
}

func (r *DosesRepo) ListOutstanding(ctx context.Context) ([]vaccines.Dose, error) {
	ids, err := members(ctx, r.c, schedulesSetKey)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	out := make([]vaccines.Dose, 0)
	for _, id := range ids {
		list, err := r.LoadDoses(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			if !d.IsApplied {
				out = append(out, d)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecommendedDate.Before(out[j].RecommendedDate)
	})
	return out, nil
}

func toDoseDoc(d vaccines.Dose) doseDoc {
	return doseDoc{
		ID:              d.ID,
		BabyID:          d.BabyID,
		Vaccine:         d.Vaccine,
		Name:            d.Name,
		Description:     d.Description,
		AgeInMonths:     d.AgeInMonths,
		RecommendedDate: d.RecommendedDate,
		Optional:        d.Optional,
		IsApplied:       d.IsApplied,
		AppliedDate:     d.AppliedDate,
		RemindersSent:   d.RemindersSent,
	}
}

func fromDoseDoc(d doseDoc) vaccines.Dose {
	return vaccines.Dose{
		ID:              d.ID,
		BabyID:          d.BabyID,
		Vaccine:         d.Vaccine,
		Name:            d.Name,
		Description:     d.Description,
		AgeInMonths:     d.AgeInMonths,
		RecommendedDate: d.RecommendedDate.UTC(),
		Optional:        d.Optional,
		IsApplied:       d.IsApplied,
		AppliedDate:     d.AppliedDate,
		RemindersSent:   d.RemindersSent,
	}
}
