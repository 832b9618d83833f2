// Package valuation derives point-in-time stock and cash state by folding
// the transaction log.
//
// Derived state is never stored. Stock for an item is the sum of restocked
// units minus sold units over all entries dated on or before the as-of
// date; cash is sales revenue minus restock cost over the same window.
// Recomputing from the full history per query keeps the ledger the single
// source of truth and makes any historical date queryable.
package valuation
