package diary

import (
	"sort"
	"time"

	"childcare-vaccines/internal/platform/dates"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

type alertRule struct {
	code          Code
	daysThreshold int
	severity      Severity
	message       string
}

var alertRules = []alertRule{
	{code: SymptomFiebre, daysThreshold: 2, severity: SeverityUrgent,
		message: "Tu bebé ha tenido fiebre durante 2 días consecutivos. Si la temperatura supera los 38°C o el bebé muestra signos de malestar, consulta al pediatra inmediatamente."},
	{code: SymptomVomito, daysThreshold: 2, severity: SeverityUrgent,
		message: "Se ha registrado vómito durante 2 días seguidos. Mantén al bebé hidratado con pequeñas cantidades de líquido frecuentemente. Si continúa, acude al médico."},
	{code: SymptomDiarrea, daysThreshold: 3, severity: SeverityWarning,
		message: "La diarrea ha persistido por 3 días. Asegúrate de que el bebé se mantenga bien hidratado. Si notas signos de deshidratación (boca seca, menos pañales mojados), consulta urgentemente."},
	{code: SymptomIrritable, daysThreshold: 4, severity: SeverityWarning,
		message: "El bebé ha estado irritable por varios días. Esto podría indicar malestar o dolor. Considera una revisión médica para descartar otras causas."},
	{code: SymptomSarpullido, daysThreshold: 3, severity: SeverityWarning,
		message: "El sarpullido ha durado más de 3 días. Si se extiende, tiene pus, o el bebé tiene fiebre, consulta al pediatra."},
}

type Alert struct {
	Code     Code
	Days     int
	Severity Severity
	Message  string
}

// Alerts revisa síntomas registrados en días consecutivos que terminan hoy.
// Los registros anulados no cuentan.
func Alerts(entries []Entry, today time.Time, loc *time.Location) []Alert {
	if loc == nil {
		loc = time.UTC
	}
	days := map[Code]map[time.Time]bool{}
	for _, e := range entries {
		if e.Status == StatusVoided || e.Kind != KindSymptom {
			continue
		}
		if days[e.Code] == nil {
			days[e.Code] = map[time.Time]bool{}
		}
		days[e.Code][dates.DateOnly(e.OccurredAt.In(loc))] = true
	}

	today = dates.DateOnly(today)
	out := make([]Alert, 0)
	for _, r := range alertRules {
		streak := 0
		for d := today; days[r.code][d]; d = d.AddDate(0, 0, -1) {
			streak++
		}
		if streak >= r.daysThreshold {
			out = append(out, Alert{Code: r.code, Days: streak, Severity: r.severity, Message: r.message})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity == SeverityUrgent && out[j].Severity != SeverityUrgent
	})
	return out
}

// Tally suma los valores de hábitos por código dentro de [from, to).
func Tally(entries []Entry, from, to time.Time) map[Code]float64 {
	out := map[Code]float64{}
	for _, e := range entries {
		if e.Status == StatusVoided || e.Kind != KindHabit || e.Value == nil {
			continue
		}
		if e.OccurredAt.Before(from) || !e.OccurredAt.Before(to) {
			continue
		}
		out[e.Code] += *e.Value
	}
	return out
}
