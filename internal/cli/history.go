package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/ledger"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [term...]",
		Short: "Search past quotes by request text and explanation",
		Long: `Search quote history for past pricing decisions. Every term must match
either the original request text or the quote explanation
(case-insensitive). Without terms, the most recent quotes are listed.

Example:
  paperledger history --db ./ledger.db wedding "bulk discount"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 5, "maximum quotes to return")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, terms []string) error {
	store, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	hits, err := store.SearchQuoteHistory(cmd.Context(), terms, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "history search failed", err)
	}

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	return formatter.Print(historyJSON(hits), func(w io.Writer) error {
		if len(hits) == 0 {
			_, err := fmt.Fprintln(w, "No matching quotes.")
			return err
		}
		for _, hit := range hits {
			if _, err := fmt.Fprintf(w, "%s  $%-10s %s / %s / %s\n    %s\n",
				hit.OrderDate.Format(ledger.DateLayout),
				hit.TotalAmount.StringFixed(2),
				hit.Job, hit.NeedSize, hit.Event,
				hit.Explanation,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func historyJSON(hits []ledger.QuoteHistoryHit) []map[string]any {
	out := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		out = append(out, map[string]any{
			"order_date":   hit.OrderDate.Format(ledger.DateLayout),
			"total_amount": hit.TotalAmount,
			"explanation":  hit.Explanation,
			"job":          hit.Job,
			"need_size":    hit.NeedSize,
			"event":        hit.Event,
			"request_text": hit.RequestText,
		})
	}
	return out
}
