package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/platform/dates"

	"github.com/spf13/cobra"
)

// babyFlags son los datos mínimos para generar un esquema sin base de datos.
type babyFlags struct {
	birth     string
	name      string
	rotavirus string
}

func (f *babyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.birth, "birth", "", "fecha de nacimiento YYYY-MM-DD")
	cmd.Flags().StringVar(&f.name, "name", "", "nombre del bebé")
	cmd.Flags().StringVar(&f.rotavirus, "rotavirus", "", "política de 3ra dosis de rotavirus (by_age|always|never)")
	_ = cmd.MarkFlagRequired("birth")
}

func (f *babyFlags) schedule(opts *RootOptions, today time.Time) (babies.Baby, []vaccines.Dose, error) {
	birth, err := dates.Parse(f.birth)
	if err != nil {
		return babies.Baby{}, nil, fmt.Errorf("--birth: %w", err)
	}
	policyName := f.rotavirus
	if policyName == "" {
		policyName = opts.cfg.RotavirusPolicy
	}
	policy, err := vaccines.ParseRotavirusPolicy(policyName)
	if err != nil {
		return babies.Baby{}, nil, err
	}

	b := babies.Baby{ID: "cli", Name: strings.TrimSpace(f.name), BirthDate: birth}
	return b, vaccines.Generate(b, vaccines.GenerateOptions{Now: today, Rotavirus: policy}), nil
}

type scheduleRow struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Vaccine         vaccines.Vaccine `json:"vaccine"`
	AgeInMonths     int              `json:"age_in_months"`
	RecommendedDate string           `json:"recommended_date"`
	Optional        bool             `json:"optional"`
	Status          vaccines.Status  `json:"status"`
}

type scheduleOutput struct {
	Baby    string           `json:"baby"`
	Birth   string           `json:"birth_date"`
	Today   string           `json:"today"`
	Doses   []scheduleRow    `json:"doses"`
	Summary vaccines.Summary `json:"summary"`
}

func newScheduleCommand(opts *RootOptions) *cobra.Command {
	var f babyFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Esquema completo con el estado de cada dosis",
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := opts.today()
			if err != nil {
				return err
			}
			b, doses, err := f.schedule(opts, today)
			if err != nil {
				return err
			}

			if opts.json() {
				out := scheduleOutput{
					Baby:    b.FirstName(),
					Birth:   dates.Format(b.BirthDate),
					Today:   dates.Format(today),
					Doses:   make([]scheduleRow, 0, len(doses)),
					Summary: vaccines.Summarize(doses, today),
				}
				for _, d := range doses {
					out.Doses = append(out.Doses, scheduleRow{
						ID:              d.ID,
						Name:            d.Name,
						Vaccine:         d.Vaccine,
						AgeInMonths:     d.AgeInMonths,
						RecommendedDate: dates.Format(d.RecommendedDate),
						Optional:        d.Optional,
						Status:          d.Status(today),
					})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			return renderSchedule(cmd.OutOrStdout(), b, doses, today)
		},
	}
	f.register(cmd)
	return cmd
}

func renderSchedule(w io.Writer, b babies.Baby, doses []vaccines.Dose, today time.Time) error {
	fmt.Fprintf(w, "Esquema de vacunación: %s\n", b.FirstName())
	fmt.Fprintf(w, "Nacimiento: %s\n", vaccines.LongDate(b.BirthDate))
	fmt.Fprintf(w, "Hoy: %s\n\n", vaccines.LongDate(today))

	fmt.Fprintf(w, "%-10s  %-4s  %-9s  %s\n", "FECHA", "EDAD", "ESTADO", "VACUNA")
	for _, d := range doses {
		fmt.Fprintf(w, "%-10s  %-4s  %-9s  %s\n",
			dates.Format(d.RecommendedDate),
			fmt.Sprintf("%dm", d.AgeInMonths),
			d.Status(today).Label(),
			d.Name,
		)
	}

	sum := vaccines.Summarize(doses, today)
	fmt.Fprintf(w, "\nResumen: %d/%d aplicadas (%.0f%%), %d retrasadas, %d pendientes\n",
		sum.Applied, sum.Total, sum.Progress()*100, sum.Delayed, sum.Pending)

	if next, ok := vaccines.Next(doses, today); ok {
		fmt.Fprintf(w, "Próxima: %s, %s (en %d días)\n",
			next.Name, vaccines.LongDate(next.RecommendedDate), vaccines.DaysUntil(next, today))
	}
	return nil
}
