package vaccines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"childcare-vaccines/internal/ports/notifier"
)

// FiringMode decide quién dispara los recordatorios en un despliegue.
// Siempre hay uno solo: con dos caminos un mismo ID saldría dos veces.
type FiringMode string

const (
	// FiringWorker: no se programa nada afuera; el dispatcher entrega lo vencido.
	FiringWorker FiringMode = "worker"
	// FiringNotifier: el servicio externo recibe Schedule/Cancel y dispara solo.
	FiringNotifier FiringMode = "notifier"
)

func ParseFiringMode(s string) (FiringMode, error) {
	switch m := FiringMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FiringWorker, nil
	case FiringWorker, FiringNotifier:
		return m, nil
	default:
		return "", fmt.Errorf("unknown reminder firing mode %q", s)
	}
}

type ReminderConfig struct {
	// Hour del día (0-23) en Location a la que se disparan los recordatorios.
	Hour     int
	Location *time.Location

	// CatchUp: un recordatorio vencido hace más de esto ya no se entrega
	// (igual que un trigger de calendario en el pasado).
	CatchUp time.Duration
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{Hour: 9, Location: time.UTC, CatchUp: 24 * time.Hour}
}

type ReminderScheduler struct {
	notifier notifier.Notifier
	cfg      ReminderConfig
}

func NewReminderScheduler(n notifier.Notifier, cfg ReminderConfig) *ReminderScheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Hour < 0 || cfg.Hour > 23 {
		cfg.Hour = 9
	}
	if cfg.CatchUp <= 0 {
		cfg.CatchUp = 24 * time.Hour
	}
	return &ReminderScheduler{notifier: n, cfg: cfg}
}

// ReminderID => "{doseID}-{categoría}".
func ReminderID(doseID string, c ReminderCategory) string {
	return doseID + "-" + string(c)
}

// IDs devuelve los 4 identificadores de recordatorio de la dosis.
func IDs(doseID string) []string {
	out := make([]string, 0, len(ReminderCategories))
	for _, c := range ReminderCategories {
		out = append(out, ReminderID(doseID, c))
	}
	return out
}

// Plan calcula los 4 eventos de la dosis; no decide si deben programarse.
func (s *ReminderScheduler) Plan(d Dose, babyFirstName string) []ReminderEvent {
	name := strings.TrimSpace(babyFirstName)
	if name == "" {
		name = "tu bebé"
	}

	y, m, day := d.RecommendedDate.Date()
	out := make([]ReminderEvent, 0, len(ReminderCategories))
	for _, c := range ReminderCategories {
		info := reminderInfo[c]
		out = append(out, ReminderEvent{
			ID:       ReminderID(d.ID, c),
			DoseID:   d.ID,
			Category: c,
			FireAt:   time.Date(y, m, day+info.offsetDays, s.cfg.Hour, 0, 0, 0, s.cfg.Location),
			Title:    info.title,
			Body:     fmt.Sprintf(info.body, d.Name, name),
		})
	}
	return out
}

// ScheduleFor entrega los eventos al notifier si la dosis no está aplicada.
// Sigue con los demás aunque alguno falle; los errores vuelven unidos.
func (s *ReminderScheduler) ScheduleFor(ctx context.Context, d Dose, babyFirstName string) error {
	if d.IsApplied {
		return nil
	}
	var errs []error
	for _, ev := range s.Plan(d, babyFirstName) {
		if err := s.notifier.Schedule(ctx, toNotification(ev)); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", ev.ID, err))
		}
	}
	return errors.Join(errs...)
}

// CancelFor pide borrar los 4 IDs, estén programados o no.
func (s *ReminderScheduler) CancelFor(ctx context.Context, d Dose) error {
	if err := s.notifier.Cancel(ctx, IDs(d.ID)); err != nil {
		return fmt.Errorf("cancel reminders of %s: %w", d.ID, err)
	}
	return nil
}

// Due devuelve los eventos ya vencidos (dentro de CatchUp) cuya categoría
// todavía no se entregó. Dosis aplicadas no tienen eventos vencidos.
func (s *ReminderScheduler) Due(d Dose, babyFirstName string, now time.Time) []ReminderEvent {
	if d.IsApplied {
		return nil
	}
	var out []ReminderEvent
	for _, ev := range s.Plan(d, babyFirstName) {
		if _, sent := d.RemindersSent[ev.Category]; sent {
			continue
		}
		if ev.FireAt.After(now) || now.Sub(ev.FireAt) > s.cfg.CatchUp {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func toNotification(ev ReminderEvent) notifier.Notification {
	return notifier.Notification{
		ID:       ev.ID,
		DoseID:   ev.DoseID,
		Category: string(ev.Category),
		FireAt:   ev.FireAt,
		Title:    ev.Title,
		Body:     ev.Body,
	}
}
