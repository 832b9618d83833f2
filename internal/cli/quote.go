package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/pricing"
)

// QuoteOptions holds flags for the quote command.
type QuoteOptions struct {
	*RootOptions
	UnitPrice string
}

// NewQuoteCommand creates the quote command.
// Quoting is pure: it needs the catalog but never touches the ledger.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quote <item> <quantity>",
		Short: "Price an item/quantity pair with bulk discounts",
		Long: `Compute a tiered bulk-discount quote for a single item and quantity.

The unit price comes from the catalog; unknown items are priced at the
documented fallback. Pass --unit-price to override both.

Example:
  paperledger quote "A4 paper" 800
  paperledger quote "Custom stock" 250 --unit-price 0.42`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.UnitPrice, "unit-price", "", "explicit unit price (bypasses catalog)")

	return cmd
}

func runQuote(opts *QuoteOptions, cmd *cobra.Command, item, quantityArg string) error {
	quantity, err := strconv.Atoi(quantityArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid quantity", err)
	}

	cat, err := loadCatalog(opts.RootOptions)
	if err != nil {
		return err
	}
	pricer := pricing.New(cat)

	var quote pricing.Quote
	if opts.UnitPrice != "" {
		unitPrice, err := decimal.NewFromString(opts.UnitPrice)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --unit-price", err)
		}
		quote, err = pricer.QuoteAt(item, quantity, unitPrice)
		if err != nil {
			return WrapExitError(ExitCommandError, "quote failed", err)
		}
	} else {
		quote, err = pricer.Quote(item, quantity)
		if err != nil {
			return WrapExitError(ExitCommandError, "quote failed", err)
		}
	}

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	return formatter.Print(quoteJSON(quote), func(w io.Writer) error {
		return renderQuote(w, quote)
	})
}

func quoteJSON(q pricing.Quote) map[string]any {
	return map[string]any{
		"item":           q.ItemName,
		"quantity":       q.Quantity,
		"unit_price":     q.UnitPrice,
		"base_price":     q.BasePrice,
		"discount_rate":  q.DiscountRate,
		"final_price":    q.FinalPrice,
		"savings":        q.Savings,
		"explanation":    q.Explanation,
		"fallback_price": q.UsedFallbackPrice,
	}
}

func renderQuote(w io.Writer, q pricing.Quote) error {
	var err error
	p := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	p("Quote: %d units of %s\n", q.Quantity, q.ItemName)
	p("  Unit price:  $%s", q.UnitPrice.StringFixed(2))
	if q.UsedFallbackPrice {
		p(" (fallback: item not in catalog)")
	}
	p("\n")
	p("  Base price:  $%s\n", q.BasePrice.StringFixed(2))
	p("  Discount:    %s%% (%s)\n", q.DiscountRate.Mul(decimal.New(100, 0)).StringFixed(0), q.Explanation)
	p("  Final price: $%s\n", q.FinalPrice.StringFixed(2))
	return err
}
