// Package cli implementa vaxcal: consulta offline del esquema de vacunación.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"childcare-vaccines/internal/platform/config"
	"childcare-vaccines/internal/platform/dates"

	"github.com/spf13/cobra"
)

// RootOptions son los flags globales.
type RootOptions struct {
	Format     string // "text" | "json"
	ConfigFile string
	Now        string // YYYY-MM-DD; vacío = hoy en la zona configurada

	cfg config.Config
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "vaxcal",
		Short:         "Cartilla de vacunación del esquema nacional",
		Long:          "Genera el esquema de vacunación, el calendario mensual y los recordatorios a partir de la fecha de nacimiento.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(config.New(), opts.ConfigFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml|json|toml)")
	cmd.PersistentFlags().StringVar(&opts.Now, "now", "", "fecha de referencia YYYY-MM-DD (por defecto hoy)")

	cmd.AddCommand(newScheduleCommand(opts))
	cmd.AddCommand(newCalendarCommand(opts))
	cmd.AddCommand(newRemindersCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// today resuelve --now o el día actual en la zona de la config.
func (o *RootOptions) today() (time.Time, error) {
	if strings.TrimSpace(o.Now) != "" {
		return dates.Parse(o.Now)
	}
	return dates.Today(time.Now(), o.cfg.Location), nil
}

func (o *RootOptions) json() bool { return o.Format == "json" }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
