// Package listsync provides a generic, reusable primitive for diffing and
// synchronizing two collections of different element types.
//
// The synchronizer computes a three-way partition between a source and a
// destination collection: items only in source, items only in destination,
// and matched (source, destination) pairs. Matching is driven either by a
// caller-supplied predicate (first match wins) or by index position.
//
// # Components
//
// 1. Compare: predicate-based diff producing a CompareResult.
//
// 2. CompareByIndex: positional diff, pairing elements at equal indices.
//
// 3. Synchronize: applies a diff through injected callbacks. Removals of
// destination-only items always complete before any add or update runs.
//
// # Invariants
//
// Every comparison guarantees that the partition fully accounts for both
// inputs:
//
//	len(Pairs) + len(NotInDestination) == len(source)
//	len(Pairs) + len(NotInSource)      == len(destination)
//
// A violation means the match predicate is broken (non-deterministic or
// many-to-many) and is reported as a *CountError rather than silently
// producing a partial diff.
//
// # Usage Example
//
//	sync := listsync.New(func(h Holding, l Ledger) bool {
//	    return h.Asset == l.Asset
//	})
//	result, err := sync.Compare(holdings, ledgers)
package listsync
