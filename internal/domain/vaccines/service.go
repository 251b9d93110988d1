package vaccines

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/platform/dates"
	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/notifier"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrNotApplied: se pidió desmarcar una dosis que no está aplicada.
	ErrNotApplied = errors.New("dose is not applied")

	// ErrDispatchDisabled: DispatchDue con FiringNotifier; el externo ya dispara.
	ErrDispatchDisabled = errors.New("reminder dispatch disabled: notifier fires reminders")
)

// NotFoundError indica qué no existe (Kind "baby" o "dose").
// errors.Is(err, ErrNotFound) es true.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " " + e.ID + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// BabyLookup es la parte de babies.Service que usa este módulo.
type BabyLookup interface {
	GetByID(ctx context.Context, id string) (babies.Baby, error)
}

type Service struct {
	repo      Repository
	babies    BabyLookup
	reminders *ReminderScheduler
	log       logger.Logger

	now       func() time.Time
	loc       *time.Location
	rotavirus RotavirusPolicy
	firing    FiringMode

	// mu serializa lectura-modificación-escritura del conjunto de dosis.
	mu sync.Mutex
}

func NewService(repo Repository, lookup BabyLookup, reminders *ReminderScheduler, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		babies:    lookup,
		reminders: reminders,
		log:       log,
		now:       time.Now,
		loc:       time.UTC,
		rotavirus: RotavirusByAge,
		firing:    FiringNotifier,
	}
}

func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

func (s *Service) SetRotavirusPolicy(p RotavirusPolicy) {
	if p != "" {
		s.rotavirus = p
	}
}

// SetFiringMode elige el único camino de disparo. Con FiringWorker las
// transiciones no llaman al notifier y solo DispatchDue entrega.
func (s *Service) SetFiringMode(m FiringMode) {
	if m != "" {
		s.firing = m
	}
}

func (s *Service) FiringMode() FiringMode { return s.firing }

// Today es el día de calendario actual en la zona configurada.
func (s *Service) Today() time.Time {
	return dates.Today(s.now(), s.loc)
}

func (s *Service) Reminders() *ReminderScheduler { return s.reminders }

func (s *Service) generate(b babies.Baby) []Dose {
	return Generate(b, GenerateOptions{Now: s.Today(), Rotavirus: s.rotavirus})
}

func (s *Service) baby(ctx context.Context, babyID string) (babies.Baby, error) {
	b, err := s.babies.GetByID(ctx, babyID)
	if err != nil {
		if errors.Is(err, babies.ErrNotFound) {
			return babies.Baby{}, &NotFoundError{Kind: "baby", ID: babyID}
		}
		return babies.Baby{}, err
	}
	return b, nil
}

// EnsureSchedule genera y guarda el esquema la primera vez; después solo lo carga.
func (s *Service) EnsureSchedule(ctx context.Context, b babies.Baby) ([]Dose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(ctx, b)
}

func (s *Service) ensureLocked(ctx context.Context, b babies.Baby) ([]Dose, error) {
	doses, err := s.repo.LoadDoses(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if len(doses) > 0 || b.BirthDate.IsZero() {
		return doses, nil
	}

	doses = s.generate(b)
	if err := s.repo.SaveDoses(ctx, b.ID, doses); err != nil {
		return nil, err
	}
	s.log.Info("vaccine schedule generated", map[string]any{
		"baby_id": b.ID,
		"doses":   len(doses),
	})

	s.scheduleAll(ctx, b, doses)
	return doses, nil
}

// ListDoses devuelve el esquema del bebé, generándolo si hace falta.
func (s *Service) ListDoses(ctx context.Context, babyID string) ([]Dose, error) {
	b, err := s.baby(ctx, babyID)
	if err != nil {
		return nil, err
	}
	return s.EnsureSchedule(ctx, b)
}

// Regenerate rehace el esquema completo (p. ej. al corregir la fecha de nacimiento).
// Las dosis cuyo slot sigue existiendo conservan el estado de aplicación.
func (s *Service) Regenerate(ctx context.Context, b babies.Baby) ([]Dose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.repo.LoadDoses(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	prev := make(map[string]Dose, len(old))
	for _, d := range old {
		s.cancel(ctx, d)
		prev[d.ID] = d
	}

	fresh := s.generate(b)
	for i := range fresh {
		p, ok := prev[fresh[i].ID]
		if !ok {
			continue
		}
		delete(prev, fresh[i].ID)
		fresh[i].IsApplied = p.IsApplied
		fresh[i].AppliedDate = p.AppliedDate
		// los envíos solo valen si la fecha recomendada no se movió
		if SameDay(p.RecommendedDate, fresh[i].RecommendedDate) {
			fresh[i].RemindersSent = p.RemindersSent
		}
	}

	// una dosis aplicada cuyo slot ya no se genera (p. ej. la 3ra de rotavirus
	// al pasar de 6 meses) se conserva: es un registro real.
	for _, d := range old {
		p, ok := prev[d.ID]
		if !ok || !p.IsApplied {
			continue
		}
		s.log.Warn("applied dose outside regenerated schedule kept", map[string]any{
			"baby_id":      b.ID,
			"dose_id":      p.ID,
			"dose":         p.Name,
			"applied_date": appliedDateText(p),
		})
		fresh = append(fresh, p)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].AgeInMonths < fresh[j].AgeInMonths
	})

	if err := s.repo.SaveDoses(ctx, b.ID, fresh); err != nil {
		return nil, err
	}
	s.log.Info("vaccine schedule regenerated", map[string]any{
		"baby_id":  b.ID,
		"previous": len(old),
		"doses":    len(fresh),
	})

	s.scheduleAll(ctx, b, fresh)
	return fresh, nil
}

func appliedDateText(d Dose) string {
	if d.AppliedDate == nil {
		return ""
	}
	return dates.Format(*d.AppliedDate)
}

// BirthDateChanged implementa babies.BirthDateListener.
func (s *Service) BirthDateChanged(ctx context.Context, b babies.Baby) error {
	_, err := s.Regenerate(ctx, b)
	return err
}

// MarkApplied acepta cualquier fecha (se permite registrar con atraso).
// Marcar de nuevo una dosis aplicada sobrescribe la fecha.
func (s *Service) MarkApplied(ctx context.Context, babyID, doseID string, appliedOn time.Time) (Dose, error) {
	b, err := s.baby(ctx, babyID)
	if err != nil {
		return Dose{}, err
	}
	if appliedOn.IsZero() {
		appliedOn = s.Today()
	}
	appliedOn = dates.DateOnly(appliedOn)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.findLocked(ctx, b, doseID)
	if err != nil {
		return Dose{}, err
	}

	from := d.Status(s.Today())
	d.IsApplied = true
	d.AppliedDate = &appliedOn
	if err := s.repo.UpdateDose(ctx, d); err != nil {
		return Dose{}, s.mapRepoErr(err, doseID)
	}

	s.log.Info("dose marked applied", map[string]any{
		"baby_id":      b.ID,
		"dose_id":      d.ID,
		"from":         string(from),
		"applied_date": dates.Format(appliedOn),
	})

	s.cancel(ctx, d)
	return d, nil
}

// UnmarkApplied solo procede desde Applied; si no, ErrNotApplied sin tocar nada.
func (s *Service) UnmarkApplied(ctx context.Context, babyID, doseID string) (Dose, error) {
	b, err := s.baby(ctx, babyID)
	if err != nil {
		return Dose{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.findLocked(ctx, b, doseID)
	if err != nil {
		return Dose{}, err
	}
	if !d.IsApplied {
		s.log.Warn("unmark on dose that is not applied", map[string]any{
			"baby_id": b.ID,
			"dose_id": d.ID,
		})
		return d, ErrNotApplied
	}

	d.IsApplied = false
	d.AppliedDate = nil
	if err := s.repo.UpdateDose(ctx, d); err != nil {
		return Dose{}, s.mapRepoErr(err, doseID)
	}

	s.log.Info("dose unmarked", map[string]any{
		"baby_id": b.ID,
		"dose_id": d.ID,
	})

	s.schedule(ctx, b, d)
	return d, nil
}

// GetDose busca una dosis del bebé.
func (s *Service) GetDose(ctx context.Context, babyID, doseID string) (babies.Baby, Dose, error) {
	b, err := s.baby(ctx, babyID)
	if err != nil {
		return babies.Baby{}, Dose{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.findLocked(ctx, b, doseID)
	return b, d, err
}

// PlannedReminders devuelve los 4 eventos de la dosis (programados o no).
func (s *Service) PlannedReminders(ctx context.Context, babyID, doseID string) (Dose, []ReminderEvent, error) {
	b, d, err := s.GetDose(ctx, babyID, doseID)
	if err != nil {
		return Dose{}, nil, err
	}
	return d, s.reminders.Plan(d, b.FirstName()), nil
}

func (s *Service) findLocked(ctx context.Context, b babies.Baby, doseID string) (Dose, error) {
	doseID = strings.TrimSpace(doseID)
	doses, err := s.ensureLocked(ctx, b)
	if err != nil {
		return Dose{}, err
	}
	for _, d := range doses {
		if d.ID == doseID {
			return d, nil
		}
	}
	return Dose{}, &NotFoundError{Kind: "dose", ID: doseID}
}

func (s *Service) mapRepoErr(err error, doseID string) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{Kind: "dose", ID: doseID}
	}
	return err
}

// Fallas del notifier nunca interrumpen una transición: solo se registran.

func (s *Service) scheduleAll(ctx context.Context, b babies.Baby, doses []Dose) {
	for _, d := range doses {
		s.schedule(ctx, b, d)
	}
}

func (s *Service) schedule(ctx context.Context, b babies.Baby, d Dose) {
	if s.firing == FiringWorker {
		return
	}
	if err := s.reminders.ScheduleFor(ctx, d, b.FirstName()); err != nil {
		s.log.Warn("reminder scheduling failed", map[string]any{
			"baby_id": b.ID,
			"dose_id": d.ID,
			"error":   err.Error(),
		})
	}
}

func (s *Service) cancel(ctx context.Context, d Dose) {
	if s.firing == FiringWorker {
		return
	}
	if err := s.reminders.CancelFor(ctx, d); err != nil {
		s.log.Warn("reminder cancel failed", map[string]any{
			"baby_id": d.BabyID,
			"dose_id": d.ID,
			"error":   err.Error(),
		})
	}
}

// DispatchResult resume una pasada del despacho.
type DispatchResult struct {
	Checked   int
	Delivered int
	Failed    int
}

// DispatchDue entrega los recordatorios vencidos de todas las dosis pendientes.
// Una categoría se registra en RemindersSent solo después de entregarse,
// así que un (dosis, categoría) nunca se dispara dos veces.
// Solo corre con FiringWorker.
func (s *Service) DispatchDue(ctx context.Context, d notifier.Deliverer) (DispatchResult, error) {
	var res DispatchResult
	if s.firing != FiringWorker {
		return res, ErrDispatchDisabled
	}

	outstanding, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return res, err
	}

	now := s.now()
	names := map[string]string{}
	for _, dose := range outstanding {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		name, ok := names[dose.BabyID]
		if !ok {
			name = "tu bebé"
			if b, err := s.babies.GetByID(ctx, dose.BabyID); err == nil {
				name = b.FirstName()
			}
			names[dose.BabyID] = name
		}

		sent := map[ReminderCategory]time.Time{}
		for _, ev := range s.reminders.Due(dose, name, now) {
			if err := d.Deliver(ctx, toNotification(ev)); err != nil {
				res.Failed++
				s.log.Warn("reminder delivery failed", map[string]any{
					"reminder_id": ev.ID,
					"error":       err.Error(),
				})
				continue
			}
			sent[ev.Category] = now
			res.Delivered++
		}
		if len(sent) == 0 {
			continue
		}

		if err := s.recordSent(ctx, dose, sent); err != nil {
			s.log.Error("record reminders sent failed", map[string]any{
				"dose_id": dose.ID,
				"error":   err.Error(),
			})
		}
	}

	return res, nil
}

// recordSent relee la dosis antes de escribir para no pisar un MarkApplied concurrente.
func (s *Service) recordSent(ctx context.Context, dose Dose, sent map[ReminderCategory]time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doses, err := s.repo.LoadDoses(ctx, dose.BabyID)
	if err != nil {
		return err
	}
	for _, cur := range doses {
		if cur.ID != dose.ID {
			continue
		}
		if cur.RemindersSent == nil {
			cur.RemindersSent = map[ReminderCategory]time.Time{}
		}
		for c, at := range sent {
			cur.RemindersSent[c] = at
		}
		return s.repo.UpdateDose(ctx, cur)
	}
	return &NotFoundError{Kind: "dose", ID: dose.ID}
}
