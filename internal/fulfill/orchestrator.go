package fulfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdifflin/paperledger/internal/catalog"
	"github.com/mdifflin/paperledger/internal/delivery"
	"github.com/mdifflin/paperledger/internal/ledger"
	"github.com/mdifflin/paperledger/internal/pricing"
	"github.com/mdifflin/paperledger/internal/valuation"
)

// LedgerWriter is the slice of the ledger store the orchestrator writes
// through. *ledger.Store satisfies it; tests substitute implementations
// that fail selected appends.
type LedgerWriter interface {
	Append(ctx context.Context, e ledger.Entry) (int64, error)
	RecordQuoteRequest(ctx context.Context, r ledger.QuoteRequest) (int64, error)
	RecordQuote(ctx context.Context, q ledger.QuoteRecord) (int64, error)
}

// Orchestrator runs the order-fulfillment decision procedure.
//
// Each request moves through Start -> CheckAvailability -> one of
// {Fulfill | PartialPath | Reject}. Transitions are one-shot: no retries,
// no queued re-evaluation. Requests are processed end-to-end on a single
// timeline; appends are serialized by the store.
type Orchestrator struct {
	store     LedgerWriter
	val       *valuation.Engine
	pricer    *pricing.Engine
	estimator *delivery.Estimator
	cat       *catalog.Catalog
	tokens    TokenGenerator
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTokenGenerator overrides the request token generator (for testing).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(o *Orchestrator) { o.tokens = g }
}

// WithEstimator overrides the delivery estimator (for testing with a
// pinned clock).
func WithEstimator(e *delivery.Estimator) Option {
	return func(o *Orchestrator) { o.estimator = e }
}

// WithNow overrides the clock used for degraded request dates.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLedgerWriter overrides where the orchestrator writes entries and
// quote history. Derived-state reads keep going to the store given to
// New, so a wrapper that delegates to that same store stays consistent.
func WithLedgerWriter(w LedgerWriter) Option {
	return func(o *Orchestrator) { o.store = w }
}

// New creates an orchestrator over a ledger store and catalog.
// Defaults: UUIDv7 request tokens, wall clock, catalog-backed pricing.
func New(store *ledger.Store, cat *catalog.Catalog, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		val:       valuation.New(store, cat),
		pricer:    pricing.New(cat),
		estimator: delivery.New(),
		cat:       cat,
		tokens:    UUIDv7Generator{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Valuation exposes the orchestrator's valuation engine so callers can
// snapshot cash and inventory around request processing.
func (o *Orchestrator) Valuation() *valuation.Engine {
	return o.val
}

// ProcessRequest runs one request through the decision procedure and
// returns exactly one Outcome.
//
// Decision table, based on derived stock as of the request date:
//   - stock >= requested: quote, estimate delivery, append one sale entry.
//   - 0 < stock < requested: append a restock entry sized exactly to the
//     shortfall at catalog unit price, then sell the full quantity. The
//     restock is assumed synchronously available the same day. If the
//     restock append fails, degrade to selling only the on-hand units.
//   - stock == 0: reject without touching the ledger.
//
// Any unexpected failure yields StatusFailed with the error surfaced
// verbatim. Entries appended before the failure point remain in the
// ledger: processing is at-least-once, not transactional.
func (o *Orchestrator) ProcessRequest(ctx context.Context, req Request) Outcome {
	out := Outcome{
		RequestToken:   o.tokens.Generate(),
		Status:         StatusFailed,
		ItemName:       req.Item(),
		RequestedUnits: req.NeedSize.Quantity(),
		ChargedAmount:  decimal.Zero,
	}

	date, err := ledger.ParseDate(req.RequestDate)
	if err != nil {
		slog.Warn("unparseable request date, using today",
			"request", out.RequestToken,
			"request_date", req.RequestDate)
		date = ledger.Date(o.now())
	}

	reqID, err := o.store.RecordQuoteRequest(ctx, ledger.QuoteRequest{
		Job:         req.Job,
		NeedSize:    string(req.NeedSize),
		Event:       req.Event,
		RequestText: req.RequestText,
		RequestDate: date,
	})
	if err != nil {
		return o.fail(out, &StageError{Code: ErrCodeHistory, RequestToken: out.RequestToken, Err: err})
	}
	out.RequestID = reqID

	stock, err := o.val.StockOf(ctx, out.ItemName, date)
	if err != nil {
		return o.fail(out, &StageError{Code: ErrCodeAvailability, RequestToken: out.RequestToken, ItemName: out.ItemName, Err: err})
	}

	switch {
	case stock >= out.RequestedUnits:
		return o.fulfillFull(ctx, out, req, date)
	case stock > 0:
		return o.partialPath(ctx, out, req, date, stock)
	default:
		out.Status = StatusUnfulfilled
		out.ResponseText = fmt.Sprintf(
			"Unable to fulfill %d units of %s on %s: out of stock.",
			out.RequestedUnits, out.ItemName, date.Format(ledger.DateLayout))
		slog.Info("request unfulfilled",
			"request", out.RequestToken,
			"item", out.ItemName,
			"requested", out.RequestedUnits)
		return out
	}
}

// fulfillFull sells the full requested quantity from on-hand stock.
func (o *Orchestrator) fulfillFull(ctx context.Context, out Outcome, req Request, date time.Time) Outcome {
	sale, err := o.recordSale(ctx, req, out.RequestID, out.RequestToken, date, out.RequestedUnits)
	if err != nil {
		return o.fail(out, err)
	}

	out.Status = StatusFulfilled
	out.FulfilledUnits = out.RequestedUnits
	out.ChargedAmount = sale.quote.FinalPrice
	out.DeliveryDate = sale.estimate.DeliveryDate
	out.LeadDays = sale.estimate.LeadDays
	out.LedgerEntryIDs = append(out.LedgerEntryIDs, sale.entryID)
	out.ResponseText = fmt.Sprintf(
		"Order confirmed: %d units of %s for $%s. %s. Estimated delivery %s (%d days).",
		out.FulfilledUnits, out.ItemName, out.ChargedAmount.StringFixed(2),
		sale.quote.Explanation,
		out.DeliveryDate.Format(ledger.DateLayout), out.LeadDays)

	slog.Info("request fulfilled",
		"request", out.RequestToken,
		"item", out.ItemName,
		"units", out.FulfilledUnits,
		"charged", out.ChargedAmount.StringFixed(2))
	return out
}

// partialPath handles 0 < stock < requested: restock the shortfall, then
// sell the full quantity; or degrade to a partial sale when the restock
// cannot be recorded.
func (o *Orchestrator) partialPath(ctx context.Context, out Outcome, req Request, date time.Time, onHand int) Outcome {
	shortfall := out.RequestedUnits - onHand

	unitPrice, ok := o.cat.UnitPrice(out.ItemName)
	if !ok {
		unitPrice = pricing.FallbackUnitPrice
	}
	cost := unitPrice.Mul(decimal.New(int64(shortfall), 0))

	restockID, err := o.store.Append(ctx, ledger.Entry{
		ItemName:   out.ItemName,
		Kind:       ledger.KindRestock,
		Units:      shortfall,
		Amount:     cost,
		OccurredOn: date,
	})
	if err != nil {
		// Degrade: sell only what is on hand instead of failing the
		// whole request.
		slog.Warn("restock append failed, selling on-hand units only",
			"request", out.RequestToken,
			"item", out.ItemName,
			"shortfall", shortfall,
			"error", err)

		sale, serr := o.recordSale(ctx, req, out.RequestID, out.RequestToken, date, onHand)
		if serr != nil {
			return o.fail(out, serr)
		}

		out.Status = StatusPartiallyFulfilled
		out.FulfilledUnits = onHand
		out.ChargedAmount = sale.quote.FinalPrice
		out.DeliveryDate = sale.estimate.DeliveryDate
		out.LeadDays = sale.estimate.LeadDays
		out.LedgerEntryIDs = append(out.LedgerEntryIDs, sale.entryID)
		out.ResponseText = fmt.Sprintf(
			"Partial fulfillment: %d/%d units of %s for $%s. Remaining %d units could not be fulfilled.",
			onHand, out.RequestedUnits, out.ItemName,
			out.ChargedAmount.StringFixed(2), shortfall)

		slog.Info("request partially fulfilled",
			"request", out.RequestToken,
			"item", out.ItemName,
			"fulfilled", onHand,
			"requested", out.RequestedUnits)
		return out
	}
	out.LedgerEntryIDs = append(out.LedgerEntryIDs, restockID)

	// The restock is assumed synchronously available the same day.
	// Re-check before selling so the no-negative-stock invariant holds
	// even if the derivation disagrees.
	stock, err := o.val.StockOf(ctx, out.ItemName, date)
	if err != nil {
		return o.fail(out, &StageError{Code: ErrCodeAvailability, RequestToken: out.RequestToken, ItemName: out.ItemName, Err: err})
	}
	if stock < out.RequestedUnits {
		return o.fail(out, &StageError{
			Code:         ErrCodeAvailability,
			RequestToken: out.RequestToken,
			ItemName:     out.ItemName,
			Err:          fmt.Errorf("stock still insufficient after restock: have %d, need %d", stock, out.RequestedUnits),
		})
	}

	sale, err := o.recordSale(ctx, req, out.RequestID, out.RequestToken, date, out.RequestedUnits)
	if err != nil {
		// The restock entry stays: inventory is permanently increased
		// with no matching sale. Documented at-least-once behavior.
		return o.fail(out, err)
	}

	out.Status = StatusFulfilled
	out.FulfilledUnits = out.RequestedUnits
	out.ChargedAmount = sale.quote.FinalPrice
	out.DeliveryDate = sale.estimate.DeliveryDate
	out.LeadDays = sale.estimate.LeadDays
	out.LedgerEntryIDs = append(out.LedgerEntryIDs, sale.entryID)
	out.ResponseText = fmt.Sprintf(
		"Order confirmed after restock: %d units of %s for $%s (restocked %d units). %s. Estimated delivery %s (%d days).",
		out.FulfilledUnits, out.ItemName, out.ChargedAmount.StringFixed(2),
		shortfall, sale.quote.Explanation,
		out.DeliveryDate.Format(ledger.DateLayout), out.LeadDays)

	slog.Info("request fulfilled after restock",
		"request", out.RequestToken,
		"item", out.ItemName,
		"units", out.FulfilledUnits,
		"restocked", shortfall)
	return out
}

// saleRecord bundles what recordSale produced.
type saleRecord struct {
	quote    pricing.Quote
	estimate delivery.Estimate
	entryID  int64
}

// recordSale quotes, estimates delivery, appends the sale entry, and
// writes quote history. Callers must have verified availability for the
// given units.
func (o *Orchestrator) recordSale(ctx context.Context, req Request, requestID int64, token string, date time.Time, units int) (saleRecord, error) {
	quote, err := o.pricer.Quote(req.Item(), units)
	if err != nil {
		return saleRecord{}, &StageError{Code: ErrCodePricing, RequestToken: token, ItemName: req.Item(), Err: err}
	}

	estimate := o.estimator.Estimate(req.RequestDate, units)

	entryID, err := o.store.Append(ctx, ledger.Entry{
		ItemName:   req.Item(),
		Kind:       ledger.KindSale,
		Units:      units,
		Amount:     quote.FinalPrice,
		OccurredOn: date,
	})
	if err != nil {
		return saleRecord{}, &StageError{Code: ErrCodeLedgerAppend, RequestToken: token, ItemName: req.Item(), Err: err}
	}

	if _, err := o.store.RecordQuote(ctx, ledger.QuoteRecord{
		RequestID:   requestID,
		TotalAmount: quote.FinalPrice,
		Explanation: quote.Explanation,
		Job:         req.Job,
		NeedSize:    string(req.NeedSize),
		Event:       req.Event,
		OrderDate:   date,
	}); err != nil {
		// The sale entry above stays in the ledger.
		return saleRecord{}, &StageError{Code: ErrCodeHistory, RequestToken: token, ItemName: req.Item(), Err: err}
	}

	return saleRecord{quote: quote, estimate: estimate, entryID: entryID}, nil
}

// fail finalizes an outcome as StatusFailed with the error surfaced
// verbatim. Entry IDs already collected stay on the outcome so callers
// can see what was appended before the failure.
func (o *Orchestrator) fail(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	out.Err = err
	out.ResponseText = err.Error()
	slog.Error("request failed",
		"request", out.RequestToken,
		"item", out.ItemName,
		"stage", string(StageOf(err)),
		"error", err)
	return out
}
