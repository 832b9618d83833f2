package fulfill

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the terminal state of a processed request.
// Every request yields exactly one status; nothing is retried.
type Status string

const (
	// StatusFulfilled: the full requested quantity was sold, possibly
	// after an automatic restock.
	StatusFulfilled Status = "fulfilled"

	// StatusPartiallyFulfilled: only on-hand units were sold because the
	// restock for the shortfall could not be recorded.
	StatusPartiallyFulfilled Status = "partially_fulfilled"

	// StatusUnfulfilled: no stock at all; the ledger was not touched.
	StatusUnfulfilled Status = "unfulfilled"

	// StatusFailed: an unexpected error aborted processing. Entries
	// appended before the failure point remain in the ledger.
	StatusFailed Status = "failed"
)

// Outcome is the one record produced per request. Never mutated after
// return.
type Outcome struct {
	RequestToken string
	RequestID    int64 // quote_requests row, 0 if recording it failed
	Status       Status

	ItemName       string
	RequestedUnits int
	FulfilledUnits int
	ChargedAmount  decimal.Decimal

	DeliveryDate time.Time
	LeadDays     int

	// LedgerEntryIDs lists every entry this request appended, in append
	// order (a restock before its sale, when both happened).
	LedgerEntryIDs []int64

	// ResponseText is the customer-facing summary.
	ResponseText string

	// Err carries the verbatim failure for StatusFailed, nil otherwise.
	Err error
}
