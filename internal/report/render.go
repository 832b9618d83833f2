package report

import (
	"fmt"
	"io"

	"github.com/mdifflin/paperledger/internal/ledger"
	"github.com/mdifflin/paperledger/internal/valuation"
)

// RenderFinancial writes a financial snapshot as aligned text.
// Inventory rows with no stock are skipped to keep the table readable;
// their zero value is still part of the totals.
func RenderFinancial(w io.Writer, r *valuation.Report) error {
	var err error
	p := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	p("Financial report as of %s\n\n", r.AsOf.Format(ledger.DateLayout))
	p("Cash balance:     $%s\n", r.CashBalance.StringFixed(2))
	p("Inventory value:  $%s\n", r.InventoryValue.StringFixed(2))
	p("Total assets:     $%s\n", r.TotalAssets.StringFixed(2))

	p("\nInventory (items with stock):\n")
	stocked := 0
	for _, item := range r.Inventory {
		if item.Stock == 0 {
			continue
		}
		stocked++
		p("  %-45s %6d units @ $%s = $%s\n",
			item.ItemName, item.Stock,
			item.UnitPrice.StringFixed(2), item.Value.StringFixed(2))
	}
	if stocked == 0 {
		p("  (none)\n")
	}

	p("\nTop sellers by revenue:\n")
	if len(r.TopSellers) == 0 {
		p("  (no sales yet)\n")
	}
	for i, seller := range r.TopSellers {
		p("  %d. %-42s %6d units  $%s\n",
			i+1, seller.ItemName, seller.TotalUnits,
			seller.TotalRevenue.StringFixed(2))
	}

	return err
}
