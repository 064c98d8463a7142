package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/service"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func suggestionsCommand(a *app) *cobra.Command {
	var (
		kind   string
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List suggestions waiting for moderation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(i do.Injector) error {
				suggestions := do.MustInvoke[*service.SuggestionService](i)

				res, err := suggestions.List(cmd.Context(),
					domain.SuggestionKind(strings.ToLower(kind)),
					domain.SuggestionStatus(strings.ToUpper(status)),
					store.PaginationParams{Limit: limit},
				)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tUSER\tCREATED\tSUMMARY")
				for _, s := range res.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						s.ID, s.Status, s.UserID, s.CreatedAt.Format(time.DateTime), describe(s.Proposal))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d %s suggestions\n", len(res.Items), res.Total, kind)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.SuggestionBook), "Suggestion kind (book, metadata, prep)")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusPending), "Status filter (PENDING, APPROVED, REJECTED; empty for all)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to print")

	return cmd
}

// describe renders a one-line summary of a proposal.
func describe(p domain.Proposal) string {
	switch v := p.(type) {
	case domain.BookProposal:
		return fmt.Sprintf("%q by %s", v.Title, v.AuthorName)
	case domain.MetadataProposal:
		return "metadata for " + v.BookID
	case domain.PrepProposal:
		return fmt.Sprintf("%q for %s", v.Title, v.BookID)
	default:
		return ""
	}
}
