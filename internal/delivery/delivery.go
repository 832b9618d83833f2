// Package delivery estimates supplier lead times by order quantity.
package delivery

import (
	"log/slog"
	"time"

	"github.com/mdifflin/paperledger/internal/ledger"
)

// Estimate is the result of a lead-time calculation.
type Estimate struct {
	RequestedDate string
	BaseDate      time.Time
	DeliveryDate  time.Time
	LeadDays      int

	// Degraded is true when the requested date could not be parsed and
	// "now" was used as the base date instead. This is a recoverable,
	// logged degradation, never an error.
	Degraded bool
}

// Estimator maps order quantities to delivery dates.
type Estimator struct {
	now func() time.Time
}

// New creates an estimator using the wall clock for degraded fallbacks.
func New() *Estimator {
	return &Estimator{now: time.Now}
}

// NewWithNow creates an estimator with an injected clock. Used by tests to
// pin the fallback base date.
func NewWithNow(now func() time.Time) *Estimator {
	return &Estimator{now: now}
}

// LeadDays returns the supplier lead time for a quantity.
// Bounds are inclusive: 10 units ship same day, 11 take a day.
func LeadDays(quantity int) int {
	switch {
	case quantity <= 10:
		return 0
	case quantity <= 100:
		return 1
	case quantity <= 1000:
		return 4
	default:
		return 7
	}
}

// Estimate computes the delivery date for an order: requested date plus
// the quantity's lead time.
//
// A malformed requested date does not fail the call. The base date falls
// back to now(), a warning is logged, and the estimate is marked Degraded.
// Stricter validation would reject requests the business historically
// accepted, so the quirk is preserved deliberately.
func (e *Estimator) Estimate(requestedDate string, quantity int) Estimate {
	base, err := ledger.ParseDate(requestedDate)
	degraded := false
	if err != nil {
		slog.Warn("unparseable requested date, using today as base",
			"requested_date", requestedDate,
			"error", err)
		base = ledger.Date(e.now())
		degraded = true
	}

	leadDays := LeadDays(quantity)

	return Estimate{
		RequestedDate: requestedDate,
		BaseDate:      base,
		DeliveryDate:  base.AddDate(0, 0, leadDays),
		LeadDays:      leadDays,
		Degraded:      degraded,
	}
}
