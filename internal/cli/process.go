package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/fulfill"
	"github.com/mdifflin/paperledger/internal/report"
)

// ProcessOptions holds flags for the process command.
type ProcessOptions struct {
	*RootOptions
	OutPath string
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "process <requests.csv>",
		Short: "Process a request feed through the fulfillment engine",
		Long: `Load a customer request feed (columns job, need_size, event,
request_date), process each request in date order, and write per-request
results with the cash balance and inventory value after each one.

Example:
  paperledger process --db ./ledger.db ./quote_requests.csv --out results.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.OutPath, "out", "", "write result rows as CSV to this path")

	return cmd
}

func runProcess(opts *ProcessOptions, cmd *cobra.Command, feedPath string) error {
	requests, err := report.LoadRequestsFile(feedPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load request feed", err)
	}
	slog.Info("request feed loaded", "path", feedPath, "requests", len(requests))

	store, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}

	orch := fulfill.New(store, cat)
	result, err := report.Run(cmd.Context(), orch, requests)
	if err != nil {
		return WrapExitError(ExitCommandError, "processing run aborted", err)
	}

	if opts.OutPath != "" {
		f, err := os.Create(opts.OutPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create results file", err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, result.Rows); err != nil {
			return WrapExitError(ExitCommandError, "failed to write results", err)
		}
		slog.Info("results written", "path", opts.OutPath, "rows", len(result.Rows))
	}

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	if err := formatter.Print(processJSON(result), func(w io.Writer) error {
		return result.Summary.Render(w)
	}); err != nil {
		return err
	}

	// Failed requests mean the run itself needs attention even though
	// every request produced an outcome.
	if result.Summary.Failed > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d requests failed", result.Summary.Failed, result.Summary.TotalRequests))
	}
	return nil
}

func processJSON(result report.RunResult) map[string]any {
	s := result.Summary
	return map[string]any{
		"total_requests":      s.TotalRequests,
		"fulfilled":           s.Fulfilled,
		"partially_fulfilled": s.PartiallyFulfilled,
		"unfulfilled":         s.Unfulfilled,
		"failed":              s.Failed,
		"success_rate":        s.SuccessRate(),
		"initial_cash":        s.InitialCash,
		"final_cash":          s.FinalCash,
		"initial_inventory":   s.InitialInventory,
		"final_inventory":     s.FinalInventory,
		"assets_change":       s.AssetsChange(),
	}
}
