// Package tracker implements the reconciliation engine: it turns one cycle's
// live exchange holdings into zero or more ledger writes.
//
// # Cycle
//
// RunCycle fetches the spot-account holdings and processes each one:
//
//  1. Skip the stable (settlement) asset and zero-quantity holdings.
//  2. Look up the stored ledger for the asset.
//  3. No ledger: resolve the current price and create a ledger seeded with a
//     single BUY entry at the observed quantity.
//  4. Ledger exists: classify the quantity delta. Zero means no write at
//     all. A negative delta appends a SELL entry that carries price, amount
//     and total forward unchanged. A positive delta resolves the current
//     price, computes amount and the new running total, and appends a BUY
//     entry.
//
// Holdings are processed sequentially; per asset there is at most one store
// read, one store write and one price lookup per cycle.
//
// # Modes
//
// Point mode (default) does one store lookup per holding, mirroring the
// original behavior. Batch mode loads all ledgers once and diffs them
// against the holdings with core/listsync, then applies the same create and
// update rules per partition; stored ledgers without a live holding are left
// untouched because ledgers are never deleted.
//
// By default the first failure aborts the whole cycle. With KeepGoing each
// asset's failure is recorded in the cycle report and processing continues.
//
// # Report
//
// Every cycle produces a CycleReport (cycle id, counts, per-asset errors,
// duration). The optional Archiver writes the report as a JSON object to
// object storage.
package tracker
