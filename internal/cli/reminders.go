package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/ports/notifier"

	"github.com/spf13/cobra"
)

type reminderRow struct {
	ID       string                    `json:"id"`
	Dose     string                    `json:"dose"`
	Category vaccines.ReminderCategory `json:"category"`
	FireAt   time.Time                 `json:"fire_at"`
	Title    string                    `json:"title"`
	Body     string                    `json:"body"`
}

func newRemindersCommand(opts *RootOptions) *cobra.Command {
	var (
		f    babyFlags
		days int
		hour int
	)

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Recordatorios que se dispararían en los próximos días",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			today, err := opts.today()
			if err != nil {
				return err
			}
			b, doses, err := f.schedule(opts, today)
			if err != nil {
				return err
			}

			h := opts.cfg.ReminderHour
			if cmd.Flags().Changed("hour") {
				h = hour
			}
			if h < 0 || h > 23 {
				return fmt.Errorf("--hour must be 0-23")
			}
			loc := opts.cfg.Location
			if loc == nil {
				loc = time.UTC
			}

			// el CLI no entrega nada: solo planifica
			sched := vaccines.NewReminderScheduler(planOnly{}, vaccines.ReminderConfig{Hour: h, Location: loc})

			from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
			to := from.AddDate(0, 0, days+1)

			rows := make([]reminderRow, 0)
			for _, d := range doses {
				if d.IsApplied {
					continue
				}
				for _, ev := range sched.Plan(d, b.FirstName()) {
					if ev.FireAt.Before(from) || !ev.FireAt.Before(to) {
						continue
					}
					rows = append(rows, reminderRow{
						ID:       ev.ID,
						Dose:     d.Name,
						Category: ev.Category,
						FireAt:   ev.FireAt,
						Title:    ev.Title,
						Body:     ev.Body,
					})
				}
			}
			sortReminders(rows)

			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			renderReminders(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&days, "days", 30, "ventana en días a partir de hoy")
	cmd.Flags().IntVar(&hour, "hour", 9, "hora del día (0-23) de los recordatorios")
	return cmd
}

// planOnly descarta todo; el CLI solo usa Plan.
type planOnly struct{}

func (planOnly) Schedule(context.Context, notifier.Notification) error { return nil }
func (planOnly) Cancel(context.Context, []string) error { return nil }

func sortReminders(rows []reminderRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FireAt.Before(rows[j].FireAt)
	})
}

func renderReminders(w io.Writer, rows []reminderRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Sin recordatorios en la ventana.")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %-16s  %s\n", r.FireAt.Format("2006-01-02 15:04"), r.Category, r.Body)
	}
}
