package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/ledger"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	OpeningCash string
	OpeningDate string
	Coverage    float64
	RandSeed    int64
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create and seed a fresh ledger database",
		Long: `Create the ledger database and open the books: one opening-cash entry
plus one restock entry per covered catalog item. Seeding is deterministic
for a given --seed, and refuses to run on a non-empty ledger.

Example:
  paperledger init --db ./ledger.db
  paperledger init --db ./ledger.db --cash 25000 --coverage 0.5 --seed 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	defaults := ledger.DefaultSeedOptions()
	cmd.Flags().StringVar(&opts.OpeningCash, "cash", defaults.OpeningCash.String(), "opening cash balance")
	cmd.Flags().StringVar(&opts.OpeningDate, "date", defaults.OpeningDate.Format(ledger.DateLayout), "opening date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&opts.Coverage, "coverage", defaults.Coverage, "fraction of catalog items to stock")
	cmd.Flags().Int64Var(&opts.RandSeed, "seed", defaults.RandSeed, "random seed for opening stock")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}

	cash, err := decimal.NewFromString(opts.OpeningCash)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --cash", err)
	}
	date, err := ledger.ParseDate(opts.OpeningDate)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --date", err)
	}

	store, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	seedOpts := ledger.SeedOptions{
		OpeningCash: cash,
		OpeningDate: date,
		Coverage:    opts.Coverage,
		RandSeed:    opts.RandSeed,
	}
	if err := store.Seed(cmd.Context(), cat, seedOpts); err != nil {
		return WrapExitError(ExitCommandError, "failed to seed ledger", err)
	}

	count, err := store.EntryCount(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count entries", err)
	}
	slog.Info("ledger seeded", "db", opts.Database, "entries", count)

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	return formatter.Print(
		map[string]any{"database": opts.Database, "entries": count},
		func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Seeded %s with %d opening entries.\n", opts.Database, count)
			return err
		},
	)
}
