package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/ledger"
	"github.com/mdifflin/paperledger/internal/report"
	"github.com/mdifflin/paperledger/internal/valuation"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	AsOf string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Derive a full financial snapshot from the ledger",
		Long: `Fold the ledger up to a date and report cash balance, inventory value
across the full catalog, total assets, a per-item breakdown, and the top
sellers by revenue.

Example:
  paperledger report --db ./ledger.db --as-of 2025-04-01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AsOf, "as-of", "", "snapshot date (YYYY-MM-DD, default today)")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	asOf, err := resolveAsOf(opts.AsOf)
	if err != nil {
		return err
	}

	store, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}

	snapshot, err := valuation.New(store, cat).FinancialReport(cmd.Context(), asOf)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to derive report", err)
	}

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	return formatter.Print(reportJSON(snapshot), func(w io.Writer) error {
		return report.RenderFinancial(w, snapshot)
	})
}

func reportJSON(r *valuation.Report) map[string]any {
	inventory := make([]map[string]any, 0, len(r.Inventory))
	for _, item := range r.Inventory {
		if item.Stock == 0 {
			continue
		}
		inventory = append(inventory, map[string]any{
			"item":       item.ItemName,
			"stock":      item.Stock,
			"unit_price": item.UnitPrice,
			"value":      item.Value,
		})
	}
	topSellers := make([]map[string]any, 0, len(r.TopSellers))
	for _, s := range r.TopSellers {
		topSellers = append(topSellers, map[string]any{
			"item":    s.ItemName,
			"units":   s.TotalUnits,
			"revenue": s.TotalRevenue,
		})
	}
	return map[string]any{
		"as_of":           r.AsOf.Format(ledger.DateLayout),
		"cash_balance":    r.CashBalance,
		"inventory_value": r.InventoryValue,
		"total_assets":    r.TotalAssets,
		"inventory":       inventory,
		"top_sellers":     topSellers,
	}
}

// resolveAsOf parses an --as-of flag, defaulting to today.
func resolveAsOf(asOf string) (time.Time, error) {
	if asOf == "" {
		return ledger.Date(time.Now()), nil
	}
	t, err := ledger.ParseDate(asOf)
	if err != nil {
		return time.Time{}, WrapExitError(ExitCommandError, "invalid --as-of", err)
	}
	return t, nil
}
