package fulfill

import (
	"errors"
	"fmt"
)

// StageErrorCode identifies which stage of request processing failed.
type StageErrorCode string

const (
	// ErrCodeAvailability: the stock check against the ledger failed.
	ErrCodeAvailability StageErrorCode = "AVAILABILITY"

	// ErrCodePricing: quote computation failed.
	ErrCodePricing StageErrorCode = "PRICING"

	// ErrCodeLedgerAppend: appending a sale or restock entry failed.
	ErrCodeLedgerAppend StageErrorCode = "LEDGER_APPEND"

	// ErrCodeHistory: recording request/quote history failed.
	ErrCodeHistory StageErrorCode = "HISTORY"
)

// StageError wraps a failure with the processing stage it occurred in.
// The underlying error is surfaced verbatim via Unwrap; entries already
// appended before the failure point are NOT rolled back.
type StageError struct {
	Code         StageErrorCode
	RequestToken string
	ItemName     string
	Err          error
}

func (e *StageError) Error() string {
	if e.ItemName != "" {
		return fmt.Sprintf("%s: request %s, item %q: %v", e.Code, e.RequestToken, e.ItemName, e.Err)
	}
	return fmt.Sprintf("%s: request %s: %v", e.Code, e.RequestToken, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage code, or "" if err is not a StageError.
func StageOf(err error) StageErrorCode {
	var se *StageError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
