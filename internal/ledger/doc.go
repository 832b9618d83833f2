// Package ledger implements the append-only transaction log backing the
// paperledger system.
//
// ARCHITECTURE:
//
// The log is the single source of truth for both stock and cash. Nothing
// stores a "current stock" or "current balance" counter; every point-in-time
// value is derived by folding entries up to a cutoff date (see the valuation
// package). This gives natural point-in-time queries and a full audit trail
// at the cost of O(history) recomputation per query.
//
// Mutation discipline:
//   - Append-only: no UPDATE, no DELETE, ever.
//   - Corrections are new offsetting entries, written by callers.
//   - One writer transaction per request; snapshot reads otherwise.
//
// Ordering:
// Entries are ordered by (occurred_on, id). Dates are stored as ISO-8601
// TEXT so lexicographic comparison in SQL matches chronological order, and
// the AUTOINCREMENT id preserves insertion order within a date.
//
// The store also keeps quote history (quote_requests and quotes tables) so
// past pricing decisions remain searchable. Those tables are written
// normally but never updated either.
package ledger
