package vaccines

import (
	"sort"
	"time"
)

// DosesOn: dosis cuya fecha recomendada cae en el mismo día que date.
func DosesOn(doses []Dose, date time.Time) []Dose {
	out := make([]Dose, 0)
	for _, d := range doses {
		if SameDay(d.RecommendedDate, date) {
			out = append(out, d)
		}
	}
	return out
}

func byStatus(doses []Dose, today time.Time, st Status) []Dose {
	out := make([]Dose, 0)
	for _, d := range doses {
		if d.Status(today) == st {
			out = append(out, d)
		}
	}
	return out
}

// Applied ordena por fecha de aplicación, la más reciente primero.
// Sin fecha registrada cuenta como la más antigua.
func Applied(doses []Dose, today time.Time) []Dose {
	out := byStatus(doses, today, StatusApplied)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AppliedDate, out[j].AppliedDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

// Pending ordena por fecha recomendada ascendente.
func Pending(doses []Dose, today time.Time) []Dose {
	out := byStatus(doses, today, StatusPending)
	sortByRecommended(out)
	return out
}

// Delayed: la más atrasada primero.
func Delayed(doses []Dose, today time.Time) []Dose {
	out := byStatus(doses, today, StatusDelayed)
	sortByRecommended(out)
	return out
}

func sortByRecommended(doses []Dose) {
	sort.SliceStable(doses, func(i, j int) bool {
		return doses[i].RecommendedDate.Before(doses[j].RecommendedDate)
	})
}

type Summary struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Pending int `json:"pending"`
	Delayed int `json:"delayed"`
}

// Progress es la fracción aplicada (0..1).
func (s Summary) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Applied) / float64(s.Total)
}

func Summarize(doses []Dose, today time.Time) Summary {
	sum := Summary{Total: len(doses)}
	for _, d := range doses {
		switch d.Status(today) {
		case StatusApplied:
			sum.Applied++
		case StatusDelayed:
			sum.Delayed++
		default:
			sum.Pending++
		}
	}
	return sum
}

// Next es la próxima dosis pendiente (no cuenta las retrasadas).
func Next(doses []Dose, today time.Time) (Dose, bool) {
	p := Pending(doses, today)
	if len(p) == 0 {
		return Dose{}, false
	}
	return p[0], true
}

// DaysUntil cuenta días de calendario de today a la fecha recomendada.
func DaysUntil(d Dose, today time.Time) int {
	a := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	r := d.RecommendedDate
	b := time.Date(r.Year(), r.Month(), r.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CalendarCell es una celda de la vista mensual; Date nil es un hueco inicial.
type CalendarCell struct {
	Date  *time.Time
	Doses []Dose
}

// MonthGrid combina DaysInMonth con las dosis de cada día.
func MonthGrid(doses []Dose, anchor time.Time) []CalendarCell {
	days := DaysInMonth(anchor)
	out := make([]CalendarCell, 0, len(days))
	for _, day := range days {
		c := CalendarCell{Date: day}
		if day != nil {
			c.Doses = DosesOn(doses, *day)
		}
		out = append(out, c)
	}
	return out
}
