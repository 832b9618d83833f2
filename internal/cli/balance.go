package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/ledger"
	"github.com/mdifflin/paperledger/internal/valuation"
)

// BalanceOptions holds flags for the balance command.
type BalanceOptions struct {
	*RootOptions
	AsOf string
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalanceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "balance",
		Short:         "Derive the cash balance as of a date",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AsOf, "as-of", "", "snapshot date (YYYY-MM-DD, default today)")

	return cmd
}

func runBalance(opts *BalanceOptions, cmd *cobra.Command) error {
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

	cash, err := valuation.New(store, cat).CashBalance(cmd.Context(), asOf)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to derive balance", err)
	}

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	return formatter.Print(
		map[string]any{"as_of": asOf.Format(ledger.DateLayout), "cash_balance": cash},
		func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Cash balance as of %s: $%s\n",
				asOf.Format(ledger.DateLayout), cash.StringFixed(2))
			return err
		},
	)
}

// InventoryOptions holds flags for the inventory command.
type InventoryOptions struct {
	*RootOptions
	AsOf string
}

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InventoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "inventory",
		Short:         "Derive available stock per item as of a date",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInventory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AsOf, "as-of", "", "snapshot date (YYYY-MM-DD, default today)")

	return cmd
}

func runInventory(opts *InventoryOptions, cmd *cobra.Command) error {
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

	available, err := valuation.New(store, cat).AllAvailable(cmd.Context(), asOf)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to derive inventory", err)
	}

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	return formatter.Print(
		map[string]any{"as_of": asOf.Format(ledger.DateLayout), "available": available},
		func(w io.Writer) error {
			if len(names) == 0 {
				_, err := fmt.Fprintln(w, "No items in stock.")
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintf(w, "%-45s %6d units\n", name, available[name]); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
