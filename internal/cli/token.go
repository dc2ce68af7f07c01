package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"babymind/internal/repository"
	"babymind/internal/security"
	"babymind/internal/service"
)

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [baby-id]",
		Short: "Issue a caregiver access token for one baby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			babyID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid baby id %q: %w", args[0], err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if ttl == 0 {
				ttl = e.cfg.TokenTTL
			}
			issuer, err := security.NewTokenIssuer(e.cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}

			baby, err := service.NewBabyService(repository.NewBabyRepository(e.db)).Get(babyID)
			if err != nil {
				return err
			}

			token, expires, err := issuer.Issue(baby.ID, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s token for %s, expires %s\n", ok("✓"), baby.Name, expires.Format(time.RFC3339))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: TOKEN_TTL)")
	return cmd
}
