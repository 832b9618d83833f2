package report

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/fulfill"
	"github.com/mdifflin/paperledger/internal/ledger"
)

// Summary aggregates a processing run.
type Summary struct {
	TotalRequests      int
	Fulfilled          int
	PartiallyFulfilled int
	Unfulfilled        int
	Failed             int

	InitialCash      decimal.Decimal
	FinalCash        decimal.Decimal
	InitialInventory decimal.Decimal
	FinalInventory   decimal.Decimal
}

// SuccessRate is the fraction of requests that sold anything (fully or
// partially).
func (s Summary) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.Fulfilled+s.PartiallyFulfilled) / float64(s.TotalRequests)
}

// AssetsChange is the change in total assets (cash + inventory value)
// over the run.
func (s Summary) AssetsChange() decimal.Decimal {
	return s.FinalCash.Add(s.FinalInventory).
		Sub(s.InitialCash.Add(s.InitialInventory))
}

// Render writes the human-readable run summary.
func (s Summary) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, `Requests processed:   %d
Fulfilled:            %d
Partially fulfilled:  %d
Unfulfilled:          %d
Failed:               %d
Success rate:         %.1f%%

Initial cash:         $%s
Final cash:           $%s
Initial inventory:    $%s
Final inventory:      $%s
Assets change:        $%s
`,
		s.TotalRequests,
		s.Fulfilled,
		s.PartiallyFulfilled,
		s.Unfulfilled,
		s.Failed,
		s.SuccessRate()*100,
		s.InitialCash.StringFixed(2),
		s.FinalCash.StringFixed(2),
		s.InitialInventory.StringFixed(2),
		s.FinalInventory.StringFixed(2),
		s.AssetsChange().StringFixed(2),
	)
	return err
}

// RunResult is everything a processing run produced.
type RunResult struct {
	Rows    []ResultRow
	Summary Summary
}

// Run processes requests through the orchestrator in feed order and
// snapshots cash and inventory value after each one, at that request's
// date. Initial state is snapshotted before the first request; final
// state after the last.
//
// Individual request failures do not stop the run - they become failed
// rows. Only snapshot errors abort, since without them the result rows
// would be misleading.
func Run(ctx context.Context, orch *fulfill.Orchestrator, requests []fulfill.Request) (RunResult, error) {
	result := RunResult{
		Summary: Summary{
			TotalRequests:    len(requests),
			InitialCash:      decimal.Zero,
			FinalCash:        decimal.Zero,
			InitialInventory: decimal.Zero,
			FinalInventory:   decimal.Zero,
		},
	}
	if len(requests) == 0 {
		return result, nil
	}

	val := orch.Valuation()

	firstDate, err := ledger.ParseDate(requests[0].RequestDate)
	if err != nil {
		return result, fmt.Errorf("run: first request date: %w", err)
	}
	initial, err := val.FinancialReport(ctx, firstDate)
	if err != nil {
		return result, fmt.Errorf("run: initial snapshot: %w", err)
	}
	result.Summary.InitialCash = initial.CashBalance
	result.Summary.InitialInventory = initial.InventoryValue

	for i, req := range requests {
		outcome := orch.ProcessRequest(ctx, req)

		switch outcome.Status {
		case fulfill.StatusFulfilled:
			result.Summary.Fulfilled++
		case fulfill.StatusPartiallyFulfilled:
			result.Summary.PartiallyFulfilled++
		case fulfill.StatusUnfulfilled:
			result.Summary.Unfulfilled++
		case fulfill.StatusFailed:
			result.Summary.Failed++
		}

		asOf, err := ledger.ParseDate(req.RequestDate)
		if err != nil {
			return result, fmt.Errorf("run: request %d date: %w", i+1, err)
		}
		snapshot, err := val.FinancialReport(ctx, asOf)
		if err != nil {
			return result, fmt.Errorf("run: snapshot after request %d: %w", i+1, err)
		}

		result.Rows = append(result.Rows, ResultRow{
			RequestID:      i + 1,
			Token:          outcome.RequestToken,
			Job:            req.Job,
			Event:          req.Event,
			RequestDate:    req.RequestDate,
			Status:         outcome.Status,
			ResponseText:   outcome.ResponseText,
			CashBalance:    snapshot.CashBalance,
			InventoryValue: snapshot.InventoryValue,
		})
		result.Summary.FinalCash = snapshot.CashBalance
		result.Summary.FinalInventory = snapshot.InventoryValue
	}

	return result, nil
}
