package ledger

import (
	"context"
	"testing"

	"github.com/mdifflin/paperledger/internal/catalog"
)

func TestSeed_WritesOpeningCashFirst(t *testing.T) {
	s := createTestStore(t)
	cat := catalog.Default()

	if err := s.Seed(context.Background(), cat, DefaultSeedOptions()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	first, err := s.Entry(context.Background(), 1)
	if err != nil {
		t.Fatalf("Entry(1) failed: %v", err)
	}
	if first.Kind != KindSale {
		t.Errorf("first entry kind = %q, want sale", first.Kind)
	}
	if first.ItemName != "" {
		t.Errorf("opening cash entry has item %q, want none", first.ItemName)
	}
	if !first.Amount.Equal(amount(t, "50000")) {
		t.Errorf("opening cash = %s, want 50000", first.Amount)
	}
}

func TestSeed_CoversMostOfTheCatalog(t *testing.T) {
	s := createTestStore(t)
	cat := catalog.Default()

	if err := s.Seed(context.Background(), cat, DefaultSeedOptions()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	count, err := s.EntryCount(context.Background())
	if err != nil {
		t.Fatalf("EntryCount() failed: %v", err)
	}
	// Opening cash plus 90% of the catalog.
	wantStocked := int64(float64(cat.Len()) * 0.9)
	if count != wantStocked+1 {
		t.Errorf("EntryCount() = %d, want %d", count, wantStocked+1)
	}

	entries, err := s.EntriesUpTo(context.Background(), day(t, "2025-01-01"), "")
	if err != nil {
		t.Fatalf("EntriesUpTo() failed: %v", err)
	}
	for _, e := range entries[1:] {
		if e.Kind != KindRestock {
			t.Errorf("seed entry for %q has kind %q, want restock", e.ItemName, e.Kind)
		}
		if e.Units < 600 || e.Units >= 2000 {
			t.Errorf("seed stock for %q = %d, want in [600, 2000)", e.ItemName, e.Units)
		}
	}
}

func TestSeed_Deterministic(t *testing.T) {
	cat := catalog.Default()

	run := func() []Entry {
		s := createTestStore(t)
		if err := s.Seed(context.Background(), cat, DefaultSeedOptions()); err != nil {
			t.Fatalf("Seed() failed: %v", err)
		}
		entries, err := s.EntriesUpTo(context.Background(), day(t, "2025-01-01"), "")
		if err != nil {
			t.Fatalf("EntriesUpTo() failed: %v", err)
		}
		return entries
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ItemName != second[i].ItemName || first[i].Units != second[i].Units {
			t.Errorf("entry %d differs across runs: %q/%d vs %q/%d",
				i, first[i].ItemName, first[i].Units, second[i].ItemName, second[i].Units)
		}
	}
}

func TestSeed_RejectsCoverageOutOfRange(t *testing.T) {
	cat := catalog.Default()

	for _, coverage := range []float64{-0.1, 1.01, 2.5} {
		s := createTestStore(t)
		opts := DefaultSeedOptions()
		opts.Coverage = coverage

		if err := s.Seed(context.Background(), cat, opts); err == nil {
			t.Errorf("Seed() with coverage %g should fail", coverage)
			continue
		}

		count, err := s.EntryCount(context.Background())
		if err != nil {
			t.Fatalf("EntryCount() failed: %v", err)
		}
		if count != 0 {
			t.Errorf("coverage %g: %d entries written, want none", coverage, count)
		}
	}
}

func TestSeed_RefusesNonEmptyLedger(t *testing.T) {
	s := createTestStore(t)
	cat := catalog.Default()

	mustAppend(t, s, restock(t, "A4 paper", 100, "5.00", "2025-01-01"))

	if err := s.Seed(context.Background(), cat, DefaultSeedOptions()); err == nil {
		t.Error("Seed() on a non-empty ledger should fail")
	}
}
