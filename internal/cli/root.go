package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/catalog"
	"github.com/mdifflin/paperledger/internal/ledger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Database is the SQLite ledger path. Defaults to $PAPERLEDGER_DB.
	Database string

	// CatalogPath optionally points at a catalog CSV; empty means the
	// built-in paper-supplies catalog.
	CatalogPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the paperledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "paperledger",
		Short: "Paper-product order desk on an append-only ledger",
		Long: "paperledger quotes, prices, and fulfills paper-product orders.\n" +
			"All stock and cash state is derived from an append-only transaction log.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", os.Getenv("PAPERLEDGER_DB"), "path to SQLite ledger database")
	cmd.PersistentFlags().StringVar(&opts.CatalogPath, "catalog", "", "catalog CSV (default: built-in paper catalog)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewQuoteCommand(opts))
	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewInventoryCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging installs the default slog handler.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openStore opens the ledger database from the global --db flag.
func openStore(opts *RootOptions) (*ledger.Store, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database: pass --db or set PAPERLEDGER_DB")
	}
	store, err := ledger.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger database", err)
	}
	return store, nil
}

// loadCatalog resolves the catalog from the global --catalog flag.
func loadCatalog(opts *RootOptions) (*catalog.Catalog, error) {
	if opts.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(opts.CatalogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return cat, nil
}
