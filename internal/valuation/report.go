package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/ledger"
)

// TopSellerLimit is how many items the report ranks by revenue.
const TopSellerLimit = 5

// Report is a full financial snapshot as of a date.
type Report struct {
	AsOf           time.Time
	CashBalance    decimal.Decimal
	InventoryValue decimal.Decimal
	TotalAssets    decimal.Decimal
	Inventory      []ItemValuation
	TopSellers     []Seller
}

// ItemValuation is the per-item breakdown: derived stock and its value at
// catalog price. Value is never negative: oversold or empty items
// contribute zero.
type ItemValuation struct {
	ItemName  string
	Stock     int
	UnitPrice decimal.Decimal
	Value     decimal.Decimal
}

// Seller is one row of the top-seller ranking.
type Seller struct {
	ItemName     string
	TotalUnits   int
	TotalRevenue decimal.Decimal
}

// FinancialReport derives a complete snapshot from a single pass over the
// ledger: cash balance, inventory value across the FULL catalog (not only
// items with positive stock), total assets, per-item breakdown, and the
// top sellers by summed sale revenue.
//
// Deterministic: top sellers are ranked by revenue descending with ties
// broken by item name ascending, and the inventory breakdown follows
// catalog declaration order.
func (e *Engine) FinancialReport(ctx context.Context, asOf time.Time) (*Report, error) {
	entries, err := e.store.EntriesUpTo(ctx, asOf, "")
	if err != nil {
		return nil, fmt.Errorf("financial report: %w", err)
	}

	stock := foldStock(entries)

	report := &Report{
		AsOf:           ledger.Date(asOf),
		CashBalance:    foldCash(entries),
		InventoryValue: decimal.Zero,
	}

	for _, item := range e.cat.Items() {
		units := stock[item.Name]
		value := decimal.Zero
		if units > 0 {
			value = item.UnitPrice.Mul(decimal.New(int64(units), 0))
		}
		report.InventoryValue = report.InventoryValue.Add(value)
		report.Inventory = append(report.Inventory, ItemValuation{
			ItemName:  item.Name,
			Stock:     units,
			UnitPrice: item.UnitPrice,
			Value:     value,
		})
	}

	report.TotalAssets = report.CashBalance.Add(report.InventoryValue)
	report.TopSellers = topSellers(entries, TopSellerLimit)

	return report, nil
}

// topSellers ranks items by summed sale revenue. Pure cash sales (no item)
// are not sellers and are excluded.
func topSellers(entries []ledger.Entry, limit int) []Seller {
	revenue := make(map[string]*Seller)
	for _, entry := range entries {
		if entry.Kind != ledger.KindSale || entry.ItemName == "" {
			continue
		}
		s, ok := revenue[entry.ItemName]
		if !ok {
			s = &Seller{ItemName: entry.ItemName, TotalRevenue: decimal.Zero}
			revenue[entry.ItemName] = s
		}
		s.TotalUnits += entry.Units
		s.TotalRevenue = s.TotalRevenue.Add(entry.Amount)
	}

	sellers := make([]Seller, 0, len(revenue))
	for _, s := range revenue {
		sellers = append(sellers, *s)
	}

	sort.Slice(sellers, func(i, j int) bool {
		cmp := sellers[i].TotalRevenue.Cmp(sellers[j].TotalRevenue)
		if cmp != 0 {
			return cmp > 0
		}
		return sellers[i].ItemName < sellers[j].ItemName
	})

	if len(sellers) > limit {
		sellers = sellers[:limit]
	}
	return sellers
}
