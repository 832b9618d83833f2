package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/catalog"
	"github.com/mdifflin/paperledger/internal/delivery"
	"github.com/mdifflin/paperledger/internal/fulfill"
	"github.com/mdifflin/paperledger/internal/ledger"
)

// Result is the outcome of running one scenario.
type Result struct {
	ScenarioName string

	// Pass is true when every expectation matched.
	Pass bool

	// Errors lists every expectation that failed.
	Errors []string

	// Outcomes holds the per-request outcomes in flow order, for
	// inspection beyond the declared expectations.
	Outcomes []fulfill.Outcome
}

// addError records a failed expectation and marks the result failed.
func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// clockEpoch pins "now" for degraded-date fallbacks so scenario runs are
// reproducible.
var clockEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// RunScenario executes a scenario against a fresh SQLite ledger.
//
// dbPath names the database file to create; empty means a throwaway file
// in a temp directory, removed when the run finishes.
func RunScenario(ctx context.Context, sc *Scenario, dbPath string) (*Result, error) {
	result := &Result{ScenarioName: sc.Name, Pass: true}

	if dbPath == "" {
		dir, err := os.MkdirTemp("", "paperledger-harness-*")
		if err != nil {
			return nil, fmt.Errorf("harness: temp dir: %w", err)
		}
		defer os.RemoveAll(dir)
		dbPath = filepath.Join(dir, "ledger.db")
	}

	store, err := ledger.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("harness: open ledger: %w", err)
	}
	defer store.Close()

	if err := seedLedger(ctx, store, sc.Seed); err != nil {
		return nil, err
	}

	tokens := make([]string, len(sc.Requests))
	for i := range tokens {
		tokens[i] = fmt.Sprintf("req-%03d", i+1)
	}

	now := func() time.Time { return clockEpoch }
	orch := fulfill.New(store, catalog.Default(),
		fulfill.WithTokenGenerator(fulfill.NewFixedGenerator(tokens...)),
		fulfill.WithEstimator(delivery.NewWithNow(now)),
		fulfill.WithNow(now),
	)

	lastDate := ""
	for i, step := range sc.Requests {
		outcome := orch.ProcessRequest(ctx, fulfill.Request{
			Job:         step.Job,
			NeedSize:    fulfill.NeedSize(step.NeedSize),
			Event:       step.Event,
			ItemName:    step.Item,
			RequestDate: step.RequestDate,
		})
		result.Outcomes = append(result.Outcomes, outcome)
		lastDate = step.RequestDate

		checkExpect(result, i+1, step.Expect, outcome)
	}

	if sc.Final != nil {
		if err := checkFinal(ctx, result, orch, store, sc.Final, lastDate); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// seedLedger appends the scenario's opening entries.
func seedLedger(ctx context.Context, store *ledger.Store, seeds []SeedEntry) error {
	for i, seed := range seeds {
		amount, err := decimal.NewFromString(seed.Amount)
		if err != nil {
			return fmt.Errorf("harness: seed %d: bad amount %q: %w", i, seed.Amount, err)
		}
		date, err := ledger.ParseDate(seed.Date)
		if err != nil {
			return fmt.Errorf("harness: seed %d: %w", i, err)
		}
		_, err = store.Append(ctx, ledger.Entry{
			ItemName:   seed.Item,
			Kind:       ledger.Kind(seed.Kind),
			Units:      seed.Units,
			Amount:     amount,
			OccurredOn: date,
		})
		if err != nil {
			return fmt.Errorf("harness: seed %d: %w", i, err)
		}
	}
	return nil
}

// checkExpect validates one outcome against its expect clause.
// Subset match: only set fields are compared.
func checkExpect(result *Result, step int, expect *ExpectClause, outcome fulfill.Outcome) {
	if expect == nil {
		return
	}

	if expect.Status != "" && string(outcome.Status) != expect.Status {
		result.addError("request %d: status = %q, want %q", step, outcome.Status, expect.Status)
	}
	if expect.FulfilledUnits != nil && outcome.FulfilledUnits != *expect.FulfilledUnits {
		result.addError("request %d: fulfilled units = %d, want %d", step, outcome.FulfilledUnits, *expect.FulfilledUnits)
	}
	if expect.Charged != "" {
		want, err := decimal.NewFromString(expect.Charged)
		if err != nil {
			result.addError("request %d: bad expected charge %q: %v", step, expect.Charged, err)
		} else if !outcome.ChargedAmount.Equal(want) {
			result.addError("request %d: charged = %s, want %s", step, outcome.ChargedAmount, want)
		}
	}
	if expect.EntriesAppend != nil && len(outcome.LedgerEntryIDs) != *expect.EntriesAppend {
		result.addError("request %d: appended %d entries, want %d", step, len(outcome.LedgerEntryIDs), *expect.EntriesAppend)
	}
	if expect.LeadDays != nil && outcome.LeadDays != *expect.LeadDays {
		result.addError("request %d: lead days = %d, want %d", step, outcome.LeadDays, *expect.LeadDays)
	}
}

// checkFinal validates derived state after the flow.
func checkFinal(ctx context.Context, result *Result, orch *fulfill.Orchestrator, store *ledger.Store, final *FinalState, lastDate string) error {
	asOfStr := final.AsOf
	if asOfStr == "" {
		asOfStr = lastDate
	}
	asOf, err := ledger.ParseDate(asOfStr)
	if err != nil {
		return fmt.Errorf("harness: final as_of: %w", err)
	}

	val := orch.Valuation()

	for item, want := range final.Stock {
		got, err := val.StockOf(ctx, item, asOf)
		if err != nil {
			return fmt.Errorf("harness: final stock of %s: %w", item, err)
		}
		if got != want {
			result.addError("final: stock of %q = %d, want %d", item, got, want)
		}
	}

	if final.Cash != "" {
		want, err := decimal.NewFromString(final.Cash)
		if err != nil {
			return fmt.Errorf("harness: final cash %q: %w", final.Cash, err)
		}
		got, err := val.CashBalance(ctx, asOf)
		if err != nil {
			return fmt.Errorf("harness: final cash: %w", err)
		}
		if !got.Equal(want) {
			result.addError("final: cash = %s, want %s", got, want)
		}
	}

	if final.EntryCount != nil {
		got, err := store.EntryCount(ctx)
		if err != nil {
			return fmt.Errorf("harness: final entry count: %w", err)
		}
		if got != int64(*final.EntryCount) {
			result.addError("final: entry count = %d, want %d", got, *final.EntryCount)
		}
	}

	return nil
}
