package listsync

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotConfigured is returned by Synchronize when the synchronizer is
// missing its match predicate or one of the three callbacks.
var ErrNotConfigured = errors.New("synchronizer not fully configured")

// CountError reports a violated partition invariant. It carries the observed
// counts so a broken match predicate can be diagnosed from the error alone.
type CountError struct {
	// Side names the collection whose count did not add up ("source" or
	// "destination").
	Side string

	// Pairs is the number of matched pairs in the result.
	Pairs int

	// Unmatched is the number of unmatched items recorded for this side.
	Unmatched int

	// Expected is the number of comparable items in the input collection.
	Expected int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("listsync: %s count invariant violated: pairs=%d unmatched=%d expected=%d",
		e.Side, e.Pairs, e.Unmatched, e.Expected)
}

// Pair holds one matched (source, destination) element pair.
type Pair[S, D any] struct {
	Source      S
	Destination D
}

// CompareResult is the immutable output of a comparison: the three-way
// partition of two collections.
type CompareResult[S, D any] struct {
	// NotInDestination holds source items with no destination match.
	NotInDestination []S

	// NotInSource holds destination items with no source match.
	NotInSource []D

	// Pairs holds the matched (source, destination) pairs.
	Pairs []Pair[S, D]
}

// Synchronizer diffs a source collection against a destination collection and
// optionally applies the diff through callbacks.
//
// Match decides whether a source and a destination element represent the same
// logical entity. First match wins; a predicate that matches one source
// element against several destination elements breaks the count invariant.
type Synchronizer[S, D any] struct {
	// Match is the equivalence predicate. Required by Compare and Synchronize.
	Match func(S, D) bool

	// Remove is invoked for destination items absent from source.
	Remove func(D) error

	// Add is invoked for source items absent from destination.
	Add func(S) error

	// Update is invoked for matched pairs.
	Update func(S, D) error
}

// New creates a synchronizer with the given match predicate. Callbacks can be
// assigned afterwards when Synchronize is needed.
func New[S, D any](match func(S, D) bool) *Synchronizer[S, D] {
	return &Synchronizer[S, D]{Match: match}
}

// Compare partitions source and destination using the match predicate.
// Nil elements (nilable types only) are skipped entirely.
func (s *Synchronizer[S, D]) Compare(source []S, destination []D) (*CompareResult[S, D], error) {
	if s.Match == nil {
		return nil, fmt.Errorf("%w: missing Match predicate", ErrNotConfigured)
	}

	result := &CompareResult[S, D]{}
	sourceCount := 0
	destCount := 0

	for _, src := range source {
		if isNil(src) {
			continue
		}
		sourceCount++

		matched := false
		for _, dst := range destination {
			if isNil(dst) {
				continue
			}
			if s.Match(src, dst) {
				result.Pairs = append(result.Pairs, Pair[S, D]{Source: src, Destination: dst})
				matched = true
				break
			}
		}
		if !matched {
			result.NotInDestination = append(result.NotInDestination, src)
		}
	}

	for _, dst := range destination {
		if isNil(dst) {
			continue
		}
		destCount++

		matched := false
		for _, src := range source {
			if isNil(src) {
				continue
			}
			if s.Match(src, dst) {
				matched = true
				break
			}
		}
		if !matched {
			result.NotInSource = append(result.NotInSource, dst)
		}
	}

	if err := result.verify(sourceCount, destCount); err != nil {
		return nil, err
	}
	return result, nil
}

// CompareByIndex pairs elements positionally up to the shorter length.
// Leftover source elements are NotInDestination, leftover destination
// elements are NotInSource. No predicate is required.
func CompareByIndex[S, D any](source []S, destination []D) (*CompareResult[S, D], error) {
	result := &CompareResult[S, D]{}

	limit := len(source)
	if len(destination) < limit {
		limit = len(destination)
	}

	for i := 0; i < limit; i++ {
		result.Pairs = append(result.Pairs, Pair[S, D]{Source: source[i], Destination: destination[i]})
	}
	for i := limit; i < len(source); i++ {
		result.NotInDestination = append(result.NotInDestination, source[i])
	}
	for i := limit; i < len(destination); i++ {
		result.NotInSource = append(result.NotInSource, destination[i])
	}

	if err := result.verify(len(source), len(destination)); err != nil {
		return nil, err
	}
	return result, nil
}

// Synchronize applies the diff between source and destination through the
// configured callbacks. Removals run first, over a snapshot of destination,
// so callbacks may mutate the live destination collection safely. Add and
// update calls carry no ordering guarantee among themselves.
func (s *Synchronizer[S, D]) Synchronize(source []S, destination []D) error {
	if s.Match == nil {
		return fmt.Errorf("%w: missing Match predicate", ErrNotConfigured)
	}
	if s.Remove == nil {
		return fmt.Errorf("%w: missing Remove callback", ErrNotConfigured)
	}
	if s.Add == nil {
		return fmt.Errorf("%w: missing Add callback", ErrNotConfigured)
	}
	if s.Update == nil {
		return fmt.Errorf("%w: missing Update callback", ErrNotConfigured)
	}

	// Phase 1: remove destination items with no source counterpart.
	snapshot := make([]D, len(destination))
	copy(snapshot, destination)

	for _, dst := range snapshot {
		if isNil(dst) {
			continue
		}
		matched := false
		for _, src := range source {
			if isNil(src) {
				continue
			}
			if s.Match(src, dst) {
				matched = true
				break
			}
		}
		if !matched {
			if err := s.Remove(dst); err != nil {
				return err
			}
		}
	}

	// Phase 2: add or update every source item.
	for _, src := range source {
		if isNil(src) {
			continue
		}
		var match D
		matched := false
		for _, dst := range destination {
			if isNil(dst) {
				continue
			}
			if s.Match(src, dst) {
				match = dst
				matched = true
				break
			}
		}
		if matched {
			if err := s.Update(src, match); err != nil {
				return err
			}
		} else {
			if err := s.Add(src); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *CompareResult[S, D]) verify(sourceCount, destCount int) error {
	if len(r.Pairs)+len(r.NotInDestination) != sourceCount {
		return &CountError{
			Side:      "source",
			Pairs:     len(r.Pairs),
			Unmatched: len(r.NotInDestination),
			Expected:  sourceCount,
		}
	}
	if len(r.Pairs)+len(r.NotInSource) != destCount {
		return &CountError{
			Side:      "destination",
			Pairs:     len(r.Pairs),
			Unmatched: len(r.NotInSource),
			Expected:  destCount,
		}
	}
	return nil
}

// isNil reports whether v is a nil pointer, interface, map, slice, func or
// channel. Value types are never nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
