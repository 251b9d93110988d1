package cli

import (
	"fmt"
	"time"

	"childcare-vaccines/internal/adapters/auth/jwtauth"

	"github.com/spf13/cobra"
)

func newTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de prueba firmado con JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := jwtauth.NewVerifier(opts.cfg.JWTSecret, opts.cfg.AppName)
			if err != nil {
				return err
			}
			tok, err := v.Issue(userID, email, ttl)
			if err != nil {
				return err
			}
			if opts.json() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"token":      tok,
					"user_id":    userID,
					"expires_in": int(ttl.Seconds()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id del dueño")
	cmd.Flags().StringVar(&email, "email", "", "email (opcional)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "vigencia del token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
