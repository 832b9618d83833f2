package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// createTestStore creates a new store on a temp database for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// day parses an ISO date or fails the test.
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

// amount parses a decimal or fails the test.
func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

// restock builds a valid restock entry.
func restock(t *testing.T, item string, units int, amt, date string) Entry {
	t.Helper()
	return Entry{
		ItemName:   item,
		Kind:       KindRestock,
		Units:      units,
		Amount:     amount(t, amt),
		OccurredOn: day(t, date),
	}
}

// sale builds a valid sale entry.
func sale(t *testing.T, item string, units int, amt, date string) Entry {
	t.Helper()
	return Entry{
		ItemName:   item,
		Kind:       KindSale,
		Units:      units,
		Amount:     amount(t, amt),
		OccurredOn: day(t, date),
	}
}
