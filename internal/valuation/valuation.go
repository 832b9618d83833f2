package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/catalog"
	"github.com/mdifflin/paperledger/internal/ledger"
)

// Engine derives point-in-time state from the transaction log.
//
// Nothing here mutates anything: every method folds entries up to an as-of
// date and returns the result. Calling the same method twice without new
// appends yields identical output.
type Engine struct {
	store *ledger.Store
	cat   *catalog.Catalog
}

// New creates a valuation engine over a ledger store and catalog.
func New(store *ledger.Store, cat *catalog.Catalog) *Engine {
	return &Engine{store: store, cat: cat}
}

// StockOf returns the derived stock for an item as of a date:
// sum of restocked units minus sum of sold units. An item with no entries
// has stock 0; that is not an error.
func (e *Engine) StockOf(ctx context.Context, itemName string, asOf time.Time) (int, error) {
	entries, err := e.store.EntriesUpTo(ctx, asOf, itemName)
	if err != nil {
		return 0, fmt.Errorf("stock of %s: %w", itemName, err)
	}

	stock := 0
	for _, entry := range entries {
		switch entry.Kind {
		case ledger.KindRestock:
			stock += entry.Units
		case ledger.KindSale:
			stock -= entry.Units
		}
	}
	return stock, nil
}

// AllAvailable returns derived stock per item as of a date, for items with
// positive stock only. Items the ledger has never seen are omitted, not
// zero-filled.
func (e *Engine) AllAvailable(ctx context.Context, asOf time.Time) (map[string]int, error) {
	entries, err := e.store.EntriesUpTo(ctx, asOf, "")
	if err != nil {
		return nil, fmt.Errorf("all available: %w", err)
	}

	stock := foldStock(entries)
	available := make(map[string]int, len(stock))
	for item, units := range stock {
		if units > 0 {
			available[item] = units
		}
	}
	return available, nil
}

// CashBalance returns sales revenue minus restock cost as of a date.
// An empty ledger has balance zero.
func (e *Engine) CashBalance(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	entries, err := e.store.EntriesUpTo(ctx, asOf, "")
	if err != nil {
		return decimal.Zero, fmt.Errorf("cash balance: %w", err)
	}
	return foldCash(entries), nil
}

// foldStock accumulates net units per item. Pure cash events (no item)
// are skipped.
func foldStock(entries []ledger.Entry) map[string]int {
	stock := make(map[string]int)
	for _, entry := range entries {
		if entry.ItemName == "" {
			continue
		}
		switch entry.Kind {
		case ledger.KindRestock:
			stock[entry.ItemName] += entry.Units
		case ledger.KindSale:
			stock[entry.ItemName] -= entry.Units
		}
	}
	return stock
}

// foldCash accumulates sales minus restocks over all entries, including
// pure cash events.
func foldCash(entries []ledger.Entry) decimal.Decimal {
	cash := decimal.Zero
	for _, entry := range entries {
		switch entry.Kind {
		case ledger.KindSale:
			cash = cash.Add(entry.Amount)
		case ledger.KindRestock:
			cash = cash.Sub(entry.Amount)
		}
	}
	return cash
}
