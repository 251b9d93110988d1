package vaccines

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/notifier"
)

// -------------------------
// Fakes
// -------------------------

type testDoseRepo struct {
	byBaby map[string][]Dose
	saves  int
}

func newTestDoseRepo() *testDoseRepo {
	return &testDoseRepo{byBaby: map[string][]Dose{}}
}

func (r *testDoseRepo) LoadDoses(ctx context.Context, babyID string) ([]Dose, error) {
	out := make([]Dose, 0, len(r.byBaby[babyID]))
	for _, d := range r.byBaby[babyID] {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (r *testDoseRepo) SaveDoses(ctx context.Context, babyID string, doses []Dose) error {
	r.saves++
	cp := make([]Dose, 0, len(doses))
	for _, d := range doses {
		cp = append(cp, d.Clone())
	}
	r.byBaby[babyID] = cp
	return nil
}

func (r *testDoseRepo) UpdateDose(ctx context.Context, d Dose) error {
	list := r.byBaby[d.BabyID]
	for i := range list {
		if list[i].ID == d.ID {
			list[i] = d.Clone()
			return nil
		}
	}
	return ErrNotFound
}

func (r *testDoseRepo) ListOutstanding(ctx context.Context) ([]Dose, error) {
	var out []Dose
	for _, list := range r.byBaby {
		for _, d := range list {
			if !d.IsApplied {
				out = append(out, d.Clone())
			}
		}
	}
	return out, nil
}

type testBabies map[string]babies.Baby

func (t testBabies) GetByID(ctx context.Context, id string) (babies.Baby, error) {
	b, ok := t[id]
	if !ok {
		return babies.Baby{}, babies.ErrNotFound
	}
	return b, nil
}

type recordingDeliverer struct {
	delivered []notifier.Notification
	fail      bool
}

func (d *recordingDeliverer) Deliver(ctx context.Context, n notifier.Notification) error {
	if d.fail {
		return errors.New("broker down")
	}
	d.delivered = append(d.delivered, n)
	return nil
}

type fixture struct {
	svc      *Service
	repo     *testDoseRepo
	notifier *recordingNotifier
	baby     babies.Baby
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	b := babies.Baby{ID: "baby-1", Name: "Sofía Pérez", BirthDate: day(2024, 1, 15)}
	repo := newTestDoseRepo()
	n := newRecordingNotifier()
	svc := NewService(repo, testBabies{b.ID: b}, NewReminderScheduler(n, DefaultReminderConfig()), nil)
	svc.now = func() time.Time { return now }
	return fixture{svc: svc, repo: repo, notifier: n, baby: b}
}

// newWorkerFixture: el dispatcher es el único que dispara.
func newWorkerFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	f := newFixture(t, now)
	f.svc.SetFiringMode(FiringWorker)
	return f
}

func (f fixture) dose(t *testing.T, name string) Dose {
	t.Helper()
	doses, err := f.repo.LoadDoses(context.Background(), f.baby.ID)
	if err != nil {
		t.Fatalf("LoadDoses: %v", err)
	}
	d, ok := findByName(doses, name)
	if !ok {
		t.Fatalf("dose %q not found", name)
	}
	return d
}

// -------------------------
// Tests
// -------------------------

func TestService_EnsureSchedule_GeneratesOnce(t *testing.T) {
	f := newFixture(t, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	doses, err := f.svc.ListDoses(ctx, f.baby.ID)
	if err != nil {
		t.Fatalf("ListDoses error: %v", err)
	}
	if len(doses) != FixedDoseCount()+1 {
		t.Fatalf("expected %d doses, got %d", FixedDoseCount()+1, len(doses))
	}
	if len(f.notifier.scheduled) != 4*len(doses) {
		t.Fatalf("expected 4 reminders per dose, got %d", len(f.notifier.scheduled))
	}

	if _, err := f.svc.ListDoses(ctx, f.baby.ID); err != nil {
		t.Fatalf("ListDoses error: %v", err)
	}
	if f.repo.saves != 1 {
		t.Fatalf("expected schedule saved once, got %d", f.repo.saves)
	}
}

func TestService_ListDoses_UnknownBaby(t *testing.T) {
	f := newFixture(t, time.Now())

	_, err := f.svc.ListDoses(context.Background(), "nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "baby" || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected baby NotFoundError, got %v", err)
	}
}

func TestService_MarkApplied_LateDose(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := f.svc.ListDoses(ctx, f.baby.ID); err != nil {
		t.Fatalf("ListDoses error: %v", err)
	}
	hexa := f.dose(t, "Hexavalente (1ra dosis)")
	if st := hexa.Status(f.svc.Today()); st != StatusDelayed {
		t.Fatalf("expected delayed before applying, got %s", st)
	}

	got, err := f.svc.MarkApplied(ctx, f.baby.ID, hexa.ID, day(2024, 3, 20))
	if err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}
	if !got.IsApplied || got.AppliedDate == nil || !got.AppliedDate.Equal(day(2024, 3, 20)) {
		t.Fatalf("unexpected dose after apply: %#v", got)
	}
	if st := f.dose(t, "Hexavalente (1ra dosis)").Status(f.svc.Today()); st != StatusApplied {
		t.Fatalf("expected applied in store, got %s", st)
	}
	for _, id := range IDs(hexa.ID) {
		if _, ok := f.notifier.scheduled[id]; ok {
			t.Fatalf("expected reminder %s cancelled", id)
		}
	}
}

func TestService_MarkApplied_LastWriteWins(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)
	bcg := f.dose(t, "BCG")

	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, bcg.ID, day(2024, 1, 16)); err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}
	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, bcg.ID, day(2024, 1, 20)); err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}

	stored := f.dose(t, "BCG")
	if !stored.IsApplied || !stored.AppliedDate.Equal(day(2024, 1, 20)) {
		t.Fatalf("expected last applied date to win, got %#v", stored.AppliedDate)
	}
}

func TestService_MarkApplied_DefaultsToToday(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 20, 23, 30, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)

	got, err := f.svc.MarkApplied(ctx, f.baby.ID, f.dose(t, "BCG").ID, time.Time{})
	if err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}
	if !got.AppliedDate.Equal(day(2024, 3, 20)) {
		t.Fatalf("expected today, got %v", got.AppliedDate)
	}
}

func TestService_MarkApplied_UnknownDose(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))

	_, err := f.svc.MarkApplied(context.Background(), f.baby.ID, "missing", time.Time{})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "dose" || nf.ID != "missing" {
		t.Fatalf("expected dose NotFoundError, got %v", err)
	}
}

func TestService_UnmarkApplied_RestoresAndReschedules(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)
	hexa := f.dose(t, "Hexavalente (1ra dosis)")

	before := make([]string, 0, 4)
	for _, id := range IDs(hexa.ID) {
		if _, ok := f.notifier.scheduled[id]; ok {
			before = append(before, id)
		}
	}

	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, hexa.ID, day(2024, 3, 1)); err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}
	got, err := f.svc.UnmarkApplied(ctx, f.baby.ID, hexa.ID)
	if err != nil {
		t.Fatalf("UnmarkApplied error: %v", err)
	}
	if got.IsApplied || got.AppliedDate != nil {
		t.Fatalf("expected dose restored, got %#v", got)
	}

	after := make([]string, 0, 4)
	for _, id := range IDs(hexa.ID) {
		if _, ok := f.notifier.scheduled[id]; ok {
			after = append(after, id)
		}
	}
	if len(after) != 4 || len(before) != 4 {
		t.Fatalf("expected 4 reminders before and after, got %d / %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("reminder ids changed: %v vs %v", before, after)
		}
	}
}

func TestService_UnmarkApplied_NotAppliedIsPrecondition(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)
	bcg := f.dose(t, "BCG")

	_, err := f.svc.UnmarkApplied(ctx, f.baby.ID, bcg.ID)
	if !errors.Is(err, ErrNotApplied) {
		t.Fatalf("expected ErrNotApplied, got %v", err)
	}
	if stored := f.dose(t, "BCG"); stored.IsApplied || stored.AppliedDate != nil {
		t.Fatalf("expected state untouched, got %#v", stored)
	}
}

func TestService_NotifierFailureDoesNotBlockTransition(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)
	f.notifier.cancelErr = errors.New("notifier down")

	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, f.dose(t, "BCG").ID, time.Time{}); err != nil {
		t.Fatalf("expected transition to succeed despite notifier, got %v", err)
	}
	if !f.dose(t, "BCG").IsApplied {
		t.Fatalf("expected dose applied")
	}
}

func TestService_Regenerate_PreservesApplied(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)
	bcg := f.dose(t, "BCG")
	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, bcg.ID, day(2024, 1, 15)); err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}

	moved := f.baby
	moved.BirthDate = day(2024, 1, 31)
	if err := f.svc.BirthDateChanged(ctx, moved); err != nil {
		t.Fatalf("BirthDateChanged error: %v", err)
	}

	after := f.dose(t, "BCG")
	if after.ID != bcg.ID || !after.IsApplied || !after.RecommendedDate.Equal(day(2024, 1, 31)) {
		t.Fatalf("expected applied BCG preserved with new date, got %#v", after)
	}
	hexa := f.dose(t, "Hexavalente (1ra dosis)")
	if !hexa.RecommendedDate.Equal(day(2024, 3, 31)) || hexa.IsApplied {
		t.Fatalf("unexpected regenerated hexavalente %#v", hexa)
	}
	if _, ok := f.notifier.scheduled[ReminderID(hexa.ID, ReminderDueDay)]; !ok {
		t.Fatalf("expected reminders rescheduled after regenerate")
	}
	if _, ok := f.notifier.scheduled[ReminderID(bcg.ID, ReminderDueDay)]; ok {
		t.Fatalf("applied dose must not get reminders")
	}
}

func TestService_DispatchDue_FiresOncePerCategory(t *testing.T) {
	now := time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)
	f := newWorkerFixture(t, now)
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)

	del := &recordingDeliverer{}
	res, err := f.svc.DispatchDue(ctx, del)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	// dosis del 15 de marzo: solo el aviso de 3 días antes
	if res.Delivered != 3 || len(del.delivered) != 3 {
		t.Fatalf("expected 3 deliveries (3 doses at 2 months), got %+v", res)
	}
	for _, n := range del.delivered {
		if n.Category != string(ReminderThreeDaysBefore) {
			t.Fatalf("unexpected category %s", n.Category)
		}
	}
	if sent := f.dose(t, "Hexavalente (1ra dosis)").RemindersSent[ReminderThreeDaysBefore]; !sent.Equal(now) {
		t.Fatalf("expected sent timestamp recorded, got %v", sent)
	}

	res, err = f.svc.DispatchDue(ctx, del)
	if err != nil || res.Delivered != 0 {
		t.Fatalf("expected no redelivery, got %+v %v", res, err)
	}
}

func TestService_DispatchDue_FailureIsRetried(t *testing.T) {
	now := time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)
	f := newWorkerFixture(t, now)
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)

	res, err := f.svc.DispatchDue(ctx, &recordingDeliverer{fail: true})
	if err != nil || res.Failed != 3 || res.Delivered != 0 {
		t.Fatalf("expected 3 failures, got %+v %v", res, err)
	}
	if len(f.dose(t, "Hexavalente (1ra dosis)").RemindersSent) != 0 {
		t.Fatalf("failed delivery must not be recorded")
	}

	res, _ = f.svc.DispatchDue(ctx, &recordingDeliverer{})
	if res.Delivered != 3 {
		t.Fatalf("expected retry to deliver, got %+v", res)
	}
}

func TestService_WorkerFiring_EachReminderLeavesOnce(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	f := newWorkerFixture(t, now)
	ctx := context.Background()
	if _, err := f.svc.ListDoses(ctx, f.baby.ID); err != nil {
		t.Fatalf("ListDoses error: %v", err)
	}

	del := &recordingDeliverer{}
	for i := 0; i < 3; i++ {
		if _, err := f.svc.DispatchDue(ctx, del); err != nil {
			t.Fatalf("DispatchDue error: %v", err)
		}
	}

	if len(f.notifier.calls) != 0 {
		t.Fatalf("worker mode must not schedule externally, got %v", f.notifier.calls)
	}
	// T-0 de las 3 dosis de 2 meses; T-1 ya quedó fuera de la ventana
	if len(del.delivered) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(del.delivered))
	}
	seen := map[string]int{}
	for _, n := range del.delivered {
		seen[n.ID]++
		if seen[n.ID] > 1 {
			t.Fatalf("reminder %s delivered twice", n.ID)
		}
	}

	hexa := f.dose(t, "Hexavalente (1ra dosis)")
	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, hexa.ID, time.Time{}); err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}
	if len(f.notifier.cancelled) != 0 {
		t.Fatalf("worker mode must not cancel externally, got %v", f.notifier.cancelled)
	}
}

func TestService_NotifierFiring_DispatchDisabled(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()
	if _, err := f.svc.ListDoses(ctx, f.baby.ID); err != nil {
		t.Fatalf("ListDoses error: %v", err)
	}

	del := &recordingDeliverer{}
	if _, err := f.svc.DispatchDue(ctx, del); !errors.Is(err, ErrDispatchDisabled) {
		t.Fatalf("expected ErrDispatchDisabled, got %v", err)
	}
	if len(del.delivered) != 0 {
		t.Fatalf("notifier mode must not deliver from the worker")
	}

	seen := map[string]bool{}
	for _, id := range f.notifier.calls {
		if seen[id] {
			t.Fatalf("reminder %s scheduled twice", id)
		}
		seen[id] = true
	}
	if len(seen) == 0 {
		t.Fatalf("expected reminders scheduled with the notifier")
	}
}

func TestService_Regenerate_KeepsAppliedDoseOutsideSchedule(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	f.svc.log = logger.New(logger.Options{Level: logger.Debug, Output: &buf})
	ctx := context.Background()
	_, _ = f.svc.ListDoses(ctx, f.baby.ID)

	rota3 := f.dose(t, "Rotavirus (3ra dosis)*")
	if _, err := f.svc.MarkApplied(ctx, f.baby.ID, rota3.ID, day(2024, 2, 20)); err != nil {
		t.Fatalf("MarkApplied error: %v", err)
	}

	// con esta fecha el bebé ya pasó los 6 meses y la 3ra dosis no se genera
	older := f.baby
	older.BirthDate = day(2023, 6, 1)
	doses, err := f.svc.Regenerate(ctx, older)
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}
	if len(doses) != FixedDoseCount()+1 {
		t.Fatalf("expected %d doses, got %d", FixedDoseCount()+1, len(doses))
	}

	kept := f.dose(t, "Rotavirus (3ra dosis)*")
	if kept.ID != rota3.ID || !kept.IsApplied || !kept.AppliedDate.Equal(day(2024, 2, 20)) {
		t.Fatalf("expected applied rotavirus 3rd dose kept, got %#v", kept)
	}
	for i := 1; i < len(doses); i++ {
		if doses[i].AgeInMonths < doses[i-1].AgeInMonths {
			t.Fatalf("schedule out of order at %d", i)
		}
	}
	if !strings.Contains(buf.String(), "applied dose outside regenerated schedule kept") {
		t.Fatalf("expected warning about kept dose, got:\n%s", buf.String())
	}
}
