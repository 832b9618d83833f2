// Package fulfill implements the order-fulfillment decision procedure.
//
// ARCHITECTURE:
//
// Single-timeline request loop:
// Each request is processed end-to-end before the next begins. The
// pricing and delivery math is pure; the only shared resource is the
// ledger, which the store serializes. If this were ever wrapped in a
// concurrent server, appends would need per-item (or global)
// serialization: a concurrent read-then-append can race two requests into
// overselling the same shortfall.
//
// Request processing flow:
//  1. Record the incoming request in quote history
//  2. Derive on-hand stock from the ledger as of the request date
//  3. Branch: Fulfill (enough stock), PartialPath (some stock),
//     Reject (none)
//  4. PartialPath appends a shortfall-sized restock, re-checks, then
//     sells the full quantity; a failed restock degrades to selling only
//     on-hand units
//  5. Selling appends exactly one sale entry and records the quote
//
// FAILURE MODEL:
//
// At-least-once, not transactional. A failure after an append leaves the
// appended entries in the ledger; nothing is rolled back or retried. In
// particular a recorded restock whose follow-up sale fails permanently
// increases inventory with no matching sale. The ledger stays consistent
// as a record of what happened, not of what was intended.
package fulfill
