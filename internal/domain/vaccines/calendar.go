package vaccines

import (
	"strconv"
	"time"

	"childcare-vaccines/internal/platform/dates"
)

// AddMonths avanza n meses de calendario conservando el día; si el día no
// existe en el mes destino se usa el último día de ese mes (31 ene + 1 => 29 feb en bisiesto).
func AddMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	hh, mm, ss := d.Clock()
	return time.Date(first.Year(), first.Month(), day, hh, mm, ss, d.Nanosecond(), d.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthsBetween cuenta meses de calendario completos de from a to.
func MonthsBetween(from, to time.Time) int {
	from, to = dates.DateOnly(from), dates.DateOnly(to)
	fy, fm, _ := from.Date()
	ty, tm, _ := to.Date()

	months := (ty-fy)*12 + int(tm-fm)
	switch {
	case months > 0 && AddMonths(from, months).After(to):
		months--
	case months < 0 && AddMonths(from, months).Before(to):
		months++
	}
	return months
}

// DaysInMonth arma la grilla del mes de anchor con semanas que empiezan en lunes.
// Las celdas vacías iniciales son nil.
func DaysInMonth(anchor time.Time) []*time.Time {
	y, m, _ := anchor.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	leading := (int(first.Weekday()) + 6) % 7
	n := daysIn(y, m)

	out := make([]*time.Time, 0, leading+n)
	for i := 0; i < leading; i++ {
		out = append(out, nil)
	}
	for d := 1; d <= n; d++ {
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		out = append(out, &day)
	}
	return out
}

// WeekdayHeader es la cabecera del calendario, de lunes a domingo.
var WeekdayHeader = []string{"Lu", "Ma", "Mi", "Ju", "Vi", "Sa", "Do"}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// MonthLabel => "marzo 2024".
func MonthLabel(t time.Time) string {
	return monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// LongDate => "15 de marzo de 2024".
func LongDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + " de " + monthNames[t.Month()-1] + " de " + strconv.Itoa(t.Year())
}
