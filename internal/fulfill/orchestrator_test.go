package fulfill

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdifflin/paperledger/internal/catalog"
	"github.com/mdifflin/paperledger/internal/delivery"
	"github.com/mdifflin/paperledger/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *ledger.Store) {
	t.Helper()
	return newTestOrchestratorWriting(t, nil)
}

// newTestOrchestratorWriting builds the standard test orchestrator; when
// wrap is non-nil, ledger writes go through wrap(store) while derived
// state keeps reading the real store.
func newTestOrchestratorWriting(t *testing.T, wrap func(*ledger.Store) LedgerWriter) (*Orchestrator, *ledger.Store) {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time {
		return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	opts := []Option{
		WithTokenGenerator(NewFixedGenerator(
			"req-001", "req-002", "req-003", "req-004")),
		WithEstimator(delivery.NewWithNow(clock)),
		WithNow(clock),
	}
	if wrap != nil {
		opts = append(opts, WithLedgerWriter(wrap(store)))
	}
	return New(store, catalog.Default(), opts...), store
}

// restockFailingStore delegates to the real store but refuses restock
// appends, forcing the shortfall path to degrade.
type restockFailingStore struct {
	*ledger.Store
}

func (s *restockFailingStore) Append(ctx context.Context, e ledger.Entry) (int64, error) {
	if e.Kind == ledger.KindRestock {
		return 0, errors.New("append refused")
	}
	return s.Store.Append(ctx, e)
}

// entryAppendFailingStore refuses every entry append; quote history still
// goes through.
type entryAppendFailingStore struct {
	*ledger.Store
}

func (s *entryAppendFailingStore) Append(ctx context.Context, e ledger.Entry) (int64, error) {
	return 0, errors.New("append refused")
}

func stockUp(t *testing.T, store *ledger.Store, item string, units int, cost, date string) {
	t.Helper()
	d, err := ledger.ParseDate(date)
	require.NoError(t, err)
	_, err = store.Append(context.Background(), ledger.Entry{
		ItemName:   item,
		Kind:       ledger.KindRestock,
		Units:      units,
		Amount:     dec(cost),
		OccurredOn: d,
	})
	require.NoError(t, err)
}

func TestProcessRequest_FullFulfillment(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	stockUp(t, store, "A4 paper", 1000, "50.00", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		Job:         "office manager",
		NeedSize:    NeedMedium,
		Event:       "quarterly restock",
		RequestText: "Need 800 sheets for the quarter",
		RequestDate: "2025-03-10",
	})

	require.NoError(t, out.Err)
	assert.Equal(t, StatusFulfilled, out.Status)
	assert.Equal(t, "req-001", out.RequestToken)
	assert.Equal(t, "A4 paper", out.ItemName)
	assert.Equal(t, 800, out.RequestedUnits)
	assert.Equal(t, 800, out.FulfilledUnits)
	// 800 × 0.05 = 40.00 less 15% bulk discount
	assert.True(t, out.ChargedAmount.Equal(dec("34.00")), "charged %s", out.ChargedAmount)
	assert.Equal(t, 4, out.LeadDays)
	assert.Equal(t, "2025-03-14", out.DeliveryDate.Format(ledger.DateLayout))
	require.Len(t, out.LedgerEntryIDs, 1)
	assert.Contains(t, out.ResponseText, "Order confirmed")
	assert.Contains(t, out.ResponseText, "15% bulk discount")

	// Exactly one sale entry landed, stock is down by the sold units.
	stock, err := orch.Valuation().StockOf(context.Background(), "A4 paper", mustDate(t, "2025-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 200, stock)

	// The quote is searchable afterwards.
	hits, err := store.SearchQuoteHistory(context.Background(), []string{"quarter"}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, hits[0].TotalAmount.Equal(dec("34.00")))
}

func TestProcessRequest_ExactStockStillFull(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	stockUp(t, store, "A4 paper", 200, "10.00", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
	})

	assert.Equal(t, StatusFulfilled, out.Status)
	assert.Equal(t, 200, out.FulfilledUnits)
	require.Len(t, out.LedgerEntryIDs, 1, "exact stock must not trigger a restock")
}

func TestProcessRequest_OutOfStock(t *testing.T) {
	orch, store := newTestOrchestrator(t)

	before, err := store.EntryCount(context.Background())
	require.NoError(t, err)

	out := orch.ProcessRequest(context.Background(), Request{
		Job:         "event planner",
		NeedSize:    NeedSmall,
		Event:       "gala",
		RequestDate: "2025-03-10",
	})

	assert.Equal(t, StatusUnfulfilled, out.Status)
	assert.Equal(t, 0, out.FulfilledUnits)
	assert.True(t, out.ChargedAmount.IsZero())
	assert.Empty(t, out.LedgerEntryIDs)
	assert.Equal(t,
		"Unable to fulfill 200 units of A4 paper on 2025-03-10: out of stock.",
		out.ResponseText)

	after, err := store.EntryCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejection must not touch the ledger")
}

func TestProcessRequest_PartialStockRestocksThenFulfills(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	stockUp(t, store, "A4 paper", 50, "2.50", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
	})

	require.NoError(t, out.Err)
	assert.Equal(t, StatusFulfilled, out.Status)
	assert.Equal(t, 200, out.FulfilledUnits)
	require.Len(t, out.LedgerEntryIDs, 2, "restock entry then sale entry")
	assert.Contains(t, out.ResponseText, "after restock")
	assert.Contains(t, out.ResponseText, "restocked 150 units")

	// Restock entry sized exactly to the shortfall at catalog unit price.
	restockEntry, err := store.Entry(context.Background(), out.LedgerEntryIDs[0])
	require.NoError(t, err)
	assert.Equal(t, ledger.KindRestock, restockEntry.Kind)
	assert.Equal(t, 150, restockEntry.Units)
	assert.True(t, restockEntry.Amount.Equal(dec("7.50")), "restock cost %s", restockEntry.Amount)

	// 200 × 0.05 = 10.00 less 10% bulk discount
	assert.True(t, out.ChargedAmount.Equal(dec("9.00")), "charged %s", out.ChargedAmount)

	// Everything on hand was sold.
	stock, err := orch.Valuation().StockOf(context.Background(), "A4 paper", mustDate(t, "2025-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestProcessRequest_RestockFailureDegradesToPartial(t *testing.T) {
	orch, store := newTestOrchestratorWriting(t, func(s *ledger.Store) LedgerWriter {
		return &restockFailingStore{Store: s}
	})
	stockUp(t, store, "A4 paper", 50, "2.50", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
	})

	require.NoError(t, out.Err)
	assert.Equal(t, StatusPartiallyFulfilled, out.Status)
	assert.Equal(t, 200, out.RequestedUnits)
	assert.Equal(t, 50, out.FulfilledUnits, "only on-hand units are sold")
	// 50 × 0.05 = 2.50, below every discount tier.
	assert.True(t, out.ChargedAmount.Equal(dec("2.50")), "charged %s", out.ChargedAmount)
	assert.Equal(t, 1, out.LeadDays)
	assert.Contains(t, out.ResponseText, "Partial fulfillment: 50/200")
	assert.Contains(t, out.ResponseText, "Remaining 150 units")

	// Exactly one sale entry landed, for the on-hand quantity.
	require.Len(t, out.LedgerEntryIDs, 1)
	saleEntry, err := store.Entry(context.Background(), out.LedgerEntryIDs[0])
	require.NoError(t, err)
	assert.Equal(t, ledger.KindSale, saleEntry.Kind)
	assert.Equal(t, 50, saleEntry.Units)

	count, err := store.EntryCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "seed restock plus one sale, no restock entry")

	stock, err := orch.Valuation().StockOf(context.Background(), "A4 paper", mustDate(t, "2025-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestProcessRequest_SaleAppendFailureFails(t *testing.T) {
	orch, store := newTestOrchestratorWriting(t, func(s *ledger.Store) LedgerWriter {
		return &entryAppendFailingStore{Store: s}
	})
	stockUp(t, store, "A4 paper", 1000, "50.00", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
	})

	assert.Equal(t, StatusFailed, out.Status)
	require.Error(t, out.Err)
	assert.Equal(t, ErrCodeLedgerAppend, StageOf(out.Err))
	assert.Equal(t, out.Err.Error(), out.ResponseText, "the error is surfaced verbatim")
	assert.Equal(t, 0, out.FulfilledUnits)
	assert.True(t, out.ChargedAmount.IsZero())
	assert.Empty(t, out.LedgerEntryIDs)

	count, err := store.EntryCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "only the seed restock remains")
}

func TestProcessRequest_DegradedSaleFailureFails(t *testing.T) {
	orch, store := newTestOrchestratorWriting(t, func(s *ledger.Store) LedgerWriter {
		return &entryAppendFailingStore{Store: s}
	})
	stockUp(t, store, "A4 paper", 50, "2.50", "2025-01-01")

	// Restock append fails, then the degraded on-hand sale fails too.
	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
	})

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, ErrCodeLedgerAppend, StageOf(out.Err))
	assert.Empty(t, out.LedgerEntryIDs)

	count, err := store.EntryCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProcessRequest_UnknownItemFallbackRestockPrice(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	stockUp(t, store, "Vellum", 50, "10.00", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
		ItemName:    "Vellum",
	})

	require.NoError(t, out.Err)
	assert.Equal(t, StatusFulfilled, out.Status)

	restockEntry, err := store.Entry(context.Background(), out.LedgerEntryIDs[0])
	require.NoError(t, err)
	// 150 shortfall units at the 0.10 fallback price.
	assert.True(t, restockEntry.Amount.Equal(dec("15.00")), "restock cost %s", restockEntry.Amount)
}

func TestProcessRequest_BadDateDegradesToToday(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	stockUp(t, store, "A4 paper", 1000, "50.00", "2025-01-01")

	out := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "soonish",
	})

	require.NoError(t, out.Err)
	assert.Equal(t, StatusFulfilled, out.Status)

	// Pinned clock: 2025-06-01 base plus 4 lead days for 200 units.
	assert.Equal(t, "2025-06-05", out.DeliveryDate.Format(ledger.DateLayout))

	saleEntry, err := store.Entry(context.Background(), out.LedgerEntryIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", saleEntry.OccurredOn.Format(ledger.DateLayout))
}

func TestProcessRequest_SequentialRequestsDrainStock(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	stockUp(t, store, "A4 paper", 450, "22.50", "2025-01-01")

	first := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-10",
	})
	assert.Equal(t, StatusFulfilled, first.Status)
	assert.Equal(t, "req-001", first.RequestToken)

	// 250 left: the second small request clears it, the third finds 50 and
	// goes down the restock path.
	second := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-11",
	})
	assert.Equal(t, StatusFulfilled, second.Status)
	require.Len(t, second.LedgerEntryIDs, 1)

	third := orch.ProcessRequest(context.Background(), Request{
		NeedSize:    NeedSmall,
		RequestDate: "2025-03-12",
	})
	assert.Equal(t, StatusFulfilled, third.Status)
	assert.Equal(t, "req-003", third.RequestToken)
	require.Len(t, third.LedgerEntryIDs, 2)

	stock, err := orch.Valuation().StockOf(context.Background(), "A4 paper", mustDate(t, "2025-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestProcessRequest_RecordsRequestEvenWhenUnfulfilled(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	out := orch.ProcessRequest(context.Background(), Request{
		Job:         "teacher",
		NeedSize:    NeedSmall,
		Event:       "school fair",
		RequestText: "paper for the fair",
		RequestDate: "2025-03-10",
	})

	assert.Equal(t, StatusUnfulfilled, out.Status)
	assert.NotZero(t, out.RequestID, "the request itself is always recorded")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ledger.ParseDate(s)
	require.NoError(t, err)
	return d
}
