// Package ledger defines the persisted shape of one tracked asset and its
// append-only transaction history, plus the store that reads and writes it.
//
// # Data model
//
// A Ledger is one row per asset: the asset symbol (primary key), the current
// available quantity, the current average unit price, and the full history as
// a serialized JSON blob. The blob's field names are a compatibility
// contract: they must round-trip unchanged across versions, including fields
// that are currently always empty (profitOrLoss on sells).
//
// # Invariants
//
//   - History is append-only; entries are never mutated or removed.
//   - Ledger.Available always equals the Available field of the last entry.
//   - Each entry's Total equals the previous Total plus its signed Amount.
//   - Ledgers are never deleted.
//
// # Store
//
// Store offers point Get/Put/Update keyed by asset plus List for batch
// reconciliation. A history blob that fails to decode is reported as a
// *CorruptHistoryError and is never retried.
package ledger
