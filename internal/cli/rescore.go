package cli

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookprepper/bookprepper-server/internal/service"
)

func rescoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rescore",
		Short: "Rebuild every prep score from its feedback events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(i do.Injector) error {
				feedback := do.MustInvoke[*service.FeedbackService](i)

				count, err := feedback.RebuildAllScores(cmd.Context())
				if err != nil {
					return fmt.Errorf("rescore: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rescored %d preps\n", count)
				return nil
			})
		},
	}
}
