package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

func newTriggerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Run the pipeline once without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			ctx := c.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = observability.WithRequestID(ctx, uuid.NewString())

			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}

			out, err := svc.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "Problem: %s\nSolution scheduled for %s delay.\n", out.Estimation.Problem, out.SolutionDelay)
			return nil
		},
	}
}
