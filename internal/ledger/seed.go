package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/catalog"
)

// SeedOptions controls how Seed opens the books.
type SeedOptions struct {
	// OpeningCash is recorded as a single item-less sale entry.
	OpeningCash decimal.Decimal

	// OpeningDate stamps every seed entry. Zero means 2025-01-01.
	OpeningDate time.Time

	// Coverage is the fraction of catalog items that receive opening stock,
	// within [0, 1]. Zero means 0.9.
	Coverage float64

	// RandSeed drives the deterministic selection of stocked items and
	// their quantities. Zero means 137.
	RandSeed int64
}

// DefaultSeedOptions returns the opening-books configuration used by the
// simulated business: $50,000 cash on 2025-01-01, stock for 90% of the
// catalog, reproducible under seed 137.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		OpeningCash: decimal.New(50000, 0),
		OpeningDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Coverage:    0.9,
		RandSeed:    137,
	}
}

// Seed writes the opening entries for a fresh ledger: one pure cash sale
// for the opening balance, then one restock entry per covered catalog item
// with a pseudo-random quantity in [600, 2000). The same options always
// produce the same entries.
//
// Seed refuses to run on a ledger that already has entries.
func (s *Store) Seed(ctx context.Context, cat *catalog.Catalog, opts SeedOptions) error {
	count, err := s.EntryCount(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("seed: ledger already has %d entries", count)
	}

	if opts.OpeningDate.IsZero() {
		opts.OpeningDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.Coverage == 0 {
		opts.Coverage = 0.9
	}
	if opts.Coverage < 0 || opts.Coverage > 1 {
		return fmt.Errorf("seed: coverage %g out of range [0, 1]", opts.Coverage)
	}
	if opts.RandSeed == 0 {
		opts.RandSeed = 137
	}
	openingDate := Date(opts.OpeningDate)

	if opts.OpeningCash.IsPositive() {
		_, err := s.Append(ctx, Entry{
			Kind:       KindSale,
			Amount:     opts.OpeningCash,
			OccurredOn: openingDate,
		})
		if err != nil {
			return fmt.Errorf("seed opening cash: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(opts.RandSeed))
	items := cat.Items()

	// Pick coverage × N items without replacement, in shuffled order.
	numItems := int(float64(len(items)) * opts.Coverage)
	indices := rng.Perm(len(items))[:numItems]

	for _, i := range indices {
		item := items[i]
		stock := 600 + rng.Intn(1400)
		cost := item.UnitPrice.Mul(decimal.New(int64(stock), 0))

		_, err := s.Append(ctx, Entry{
			ItemName:   item.Name,
			Kind:       KindRestock,
			Units:      stock,
			Amount:     cost,
			OccurredOn: openingDate,
		})
		if err != nil {
			return fmt.Errorf("seed stock for %s: %w", item.Name, err)
		}
	}

	return nil
}
