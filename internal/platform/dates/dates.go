// Package dates normaliza fechas de calendario (sin hora) a medianoche UTC.
//
// Las fechas de nacimiento, fechas recomendadas y de aplicación son días de
// calendario; se guardan como 00:00 UTC para que comparar y persistir
// (columna DATE en Postgres) no dependa de la zona horaria del servidor.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// DateOnly descarta la hora conservando el día tal como se ve en t.Location().
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today devuelve el día actual visto desde loc (nil = UTC).
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(now.In(loc))
}

// Parse acepta YYYY-MM-DD.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}
