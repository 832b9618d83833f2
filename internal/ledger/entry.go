package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger entry as a stock inflow or outflow.
type Kind string

const (
	// KindRestock is a stock purchase: units flow in, cash flows out.
	KindRestock Kind = "restock"

	// KindSale is a sale: units flow out, cash flows in.
	KindSale Kind = "sale"
)

// Valid reports whether k is one of the two recognized kinds.
func (k Kind) Valid() bool {
	return k == KindRestock || k == KindSale
}

// DateLayout is the ISO-8601 date format used for all ledger dates.
const DateLayout = "2006-01-02"

// Entry is one immutable row of the transaction log.
//
// ItemName is empty for pure cash events (e.g., the opening balance).
// Amount is the TOTAL money moved by the entry, not a unit price.
// Ordering key is (OccurredOn, ID): entries on the same date keep
// insertion order.
type Entry struct {
	ID         int64
	ItemName   string // empty for a pure cash event
	Kind       Kind
	Units      int // 0 for pure cash events
	Amount     decimal.Decimal
	OccurredOn time.Time // date precision; time-of-day is discarded
}

// Date truncates t to date precision in UTC.
// All ledger comparisons happen at day granularity.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date (YYYY-MM-DD). A timestamp suffix
// ("2025-01-01T15:04:05") is tolerated and discarded.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ValidationError reports a malformed entry rejected before any mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid entry: %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// validate checks an entry before append. The ledger only enforces local
// shape here; cross-entry invariants (e.g., a sale not driving derived
// stock negative) are the caller's responsibility.
func (e Entry) validate() error {
	if !e.Kind.Valid() {
		return &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("must be %q or %q, got %q", KindRestock, KindSale, e.Kind),
		}
	}
	if e.Units < 0 {
		return &ValidationError{
			Field:   "units",
			Message: fmt.Sprintf("must not be negative, got %d", e.Units),
		}
	}
	if e.OccurredOn.IsZero() {
		return &ValidationError{
			Field:   "occurred_on",
			Message: "must be set",
		}
	}
	return nil
}
