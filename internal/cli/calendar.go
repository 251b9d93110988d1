package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/platform/dates"

	"github.com/spf13/cobra"
)

type calendarDay struct {
	Date  string   `json:"date"`
	Doses []string `json:"doses"`
}

type calendarOutput struct {
	Month string        `json:"month"`
	Label string        `json:"label"`
	Days  []calendarDay `json:"days"`
}

func newCalendarCommand(opts *RootOptions) *cobra.Command {
	var (
		f     babyFlags
		month string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Vista mensual con las dosis de cada día",
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := opts.today()
			if err != nil {
				return err
			}
			anchor := today
			if strings.TrimSpace(month) != "" {
				anchor, err = time.Parse("2006-01", strings.TrimSpace(month))
				if err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
			}

			_, doses, err := f.schedule(opts, today)
			if err != nil {
				return err
			}
			grid := vaccines.MonthGrid(doses, anchor)

			if opts.json() {
				out := calendarOutput{
					Month: anchor.Format("2006-01"),
					Label: vaccines.MonthLabel(anchor),
					Days:  make([]calendarDay, 0, len(grid)),
				}
				for _, c := range grid {
					if c.Date == nil || len(c.Doses) == 0 {
						continue
					}
					day := calendarDay{Date: dates.Format(*c.Date)}
					for _, d := range c.Doses {
						day.Doses = append(day.Doses, d.Name)
					}
					out.Days = append(out.Days, day)
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			renderCalendar(cmd.OutOrStdout(), anchor, grid, today)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&month, "month", "", "mes YYYY-MM (por defecto el actual)")
	return cmd
}

// renderCalendar marca con * los días con vacuna y con [] el día de hoy.
func renderCalendar(w io.Writer, anchor time.Time, grid []vaccines.CalendarCell, today time.Time) {
	fmt.Fprintf(w, "%s\n", vaccines.MonthLabel(anchor))
	for i, h := range vaccines.WeekdayHeader {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%-3s", h)
	}
	fmt.Fprintln(w)

	var listed []vaccines.CalendarCell
	for i, c := range grid {
		if i > 0 {
			if i%7 == 0 {
				fmt.Fprintln(w)
			} else {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprint(w, cellText(c, today))
		if c.Date != nil && len(c.Doses) > 0 {
			listed = append(listed, c)
		}
	}
	fmt.Fprintln(w)

	if len(listed) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, c := range listed {
		for _, d := range c.Doses {
			fmt.Fprintf(w, "%2d  %s\n", c.Date.Day(), d.Name)
		}
	}
}

func cellText(c vaccines.CalendarCell, today time.Time) string {
	if c.Date == nil {
		return "   "
	}
	mark := " "
	if len(c.Doses) > 0 {
		mark = "*"
	}
	if vaccines.SameDay(*c.Date, today) {
		mark = "<"
	}
	return fmt.Sprintf("%2d%s", c.Date.Day(), mark)
}
