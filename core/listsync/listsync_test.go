package listsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holding struct {
	Asset string
	Qty   int
}

type ledger struct {
	Asset string
}

func matchAsset(h holding, l *ledger) bool {
	return h.Asset == l.Asset
}

func TestCompare(t *testing.T) {
	sync := New(matchAsset)

	source := []holding{{Asset: "BTC", Qty: 1}, {Asset: "ETH", Qty: 2}, {Asset: "ADA", Qty: 3}}
	destination := []*ledger{{Asset: "ETH"}, {Asset: "DOT"}}

	result, err := sync.Compare(source, destination)
	require.NoError(t, err)

	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "ETH", result.Pairs[0].Source.Asset)
	assert.Equal(t, "ETH", result.Pairs[0].Destination.Asset)

	require.Len(t, result.NotInDestination, 2)
	assert.Equal(t, "BTC", result.NotInDestination[0].Asset)
	assert.Equal(t, "ADA", result.NotInDestination[1].Asset)

	require.Len(t, result.NotInSource, 1)
	assert.Equal(t, "DOT", result.NotInSource[0].Asset)
}

func TestCompare_FirstMatchWins(t *testing.T) {
	sync := New(matchAsset)

	// Two destination entries share the asset; only the first may be paired.
	source := []holding{{Asset: "BTC", Qty: 1}}
	destination := []*ledger{{Asset: "BTC"}, {Asset: "ETH"}}

	result, err := sync.Compare(source, destination)
	require.NoError(t, err)

	require.Len(t, result.Pairs, 1)
	assert.Same(t, destination[0], result.Pairs[0].Destination)
	assert.Len(t, result.NotInDestination, 0)
	require.Len(t, result.NotInSource, 1)
	assert.Equal(t, "ETH", result.NotInSource[0].Asset)
}

func TestCompare_SkipsNilElements(t *testing.T) {
	sync := New(matchAsset)

	source := []holding{{Asset: "BTC"}}
	destination := []*ledger{nil, {Asset: "BTC"}, nil}

	result, err := sync.Compare(source, destination)
	require.NoError(t, err)

	assert.Len(t, result.Pairs, 1)
	assert.Empty(t, result.NotInSource)
	assert.Empty(t, result.NotInDestination)
}

func TestCompare_CountInvariantViolation(t *testing.T) {
	// Two source items both match the single destination item. First-match
	// pairs each of them, so the destination partition over-counts.
	sync := New(func(h holding, l *ledger) bool { return true })

	source := []holding{{Asset: "BTC"}, {Asset: "ETH"}}
	destination := []*ledger{{Asset: "BTC"}}

	result, err := sync.Compare(source, destination)
	assert.Nil(t, result)
	require.Error(t, err)

	var countErr *CountError
	require.True(t, errors.As(err, &countErr))
	assert.Equal(t, "destination", countErr.Side)
	assert.Equal(t, 2, countErr.Pairs)
	assert.Equal(t, 0, countErr.Unmatched)
	assert.Equal(t, 1, countErr.Expected)
}

func TestCompare_MissingPredicate(t *testing.T) {
	sync := &Synchronizer[holding, *ledger]{}

	_, err := sync.Compare(nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCompareByIndex(t *testing.T) {
	tests := []struct {
		name        string
		source      []string
		destination []int
		wantPairs   int
		wantNotDst  []string
		wantNotSrc  []int
	}{
		{
			name:        "Source longer",
			source:      []string{"a", "b", "c"},
			destination: []int{1, 2},
			wantPairs:   2,
			wantNotDst:  []string{"c"},
		},
		{
			name:        "Destination longer",
			source:      []string{"a"},
			destination: []int{1, 2, 3},
			wantPairs:   1,
			wantNotSrc:  []int{2, 3},
		},
		{
			name:        "Equal length",
			source:      []string{"a", "b"},
			destination: []int{1, 2},
			wantPairs:   2,
		},
		{
			name: "Both empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CompareByIndex(tt.source, tt.destination)
			require.NoError(t, err)

			assert.Len(t, result.Pairs, tt.wantPairs)
			assert.Equal(t, tt.wantNotDst, result.NotInDestination)
			assert.Equal(t, tt.wantNotSrc, result.NotInSource)

			for i, pair := range result.Pairs {
				assert.Equal(t, tt.source[i], pair.Source)
				assert.Equal(t, tt.destination[i], pair.Destination)
			}
		})
	}
}

func TestSynchronize_RemovalsBeforeAddsAndUpdates(t *testing.T) {
	var calls []string

	sync := New(matchAsset)
	sync.Remove = func(l *ledger) error {
		calls = append(calls, "remove:"+l.Asset)
		return nil
	}
	sync.Add = func(h holding) error {
		calls = append(calls, "add:"+h.Asset)
		return nil
	}
	sync.Update = func(h holding, l *ledger) error {
		calls = append(calls, "update:"+h.Asset)
		return nil
	}

	source := []holding{{Asset: "BTC"}, {Asset: "ETH"}}
	destination := []*ledger{{Asset: "ETH"}, {Asset: "DOT"}, {Asset: "XRP"}}

	err := sync.Synchronize(source, destination)
	require.NoError(t, err)

	require.Len(t, calls, 4)
	// Every remove precedes every add/update.
	assert.Equal(t, "remove:DOT", calls[0])
	assert.Equal(t, "remove:XRP", calls[1])
	assert.Contains(t, calls[2:], "add:BTC")
	assert.Contains(t, calls[2:], "update:ETH")
}

func TestSynchronize_DestinationMutationDuringRemove(t *testing.T) {
	destination := []*ledger{{Asset: "DOT"}, {Asset: "XRP"}}
	removed := 0

	sync := New(matchAsset)
	sync.Remove = func(l *ledger) error {
		// Mutate the live collection; iteration runs over a snapshot.
		destination = destination[:0]
		removed++
		return nil
	}
	sync.Add = func(h holding) error { return nil }
	sync.Update = func(h holding, l *ledger) error { return nil }

	err := sync.Synchronize(nil, destination)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestSynchronize_MissingCallbacks(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Synchronizer[holding, *ledger])
	}{
		{"No predicate", func(s *Synchronizer[holding, *ledger]) { s.Match = nil }},
		{"No remove", func(s *Synchronizer[holding, *ledger]) { s.Remove = nil }},
		{"No add", func(s *Synchronizer[holding, *ledger]) { s.Add = nil }},
		{"No update", func(s *Synchronizer[holding, *ledger]) { s.Update = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync := New(matchAsset)
			sync.Remove = func(*ledger) error { return nil }
			sync.Add = func(holding) error { return nil }
			sync.Update = func(holding, *ledger) error { return nil }
			tt.setup(sync)

			err := sync.Synchronize(nil, nil)
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}

func TestSynchronize_CallbackErrorPropagates(t *testing.T) {
	boom := errors.New("boom")

	sync := New(matchAsset)
	sync.Remove = func(*ledger) error { return boom }
	sync.Add = func(holding) error { return nil }
	sync.Update = func(holding, *ledger) error { return nil }

	err := sync.Synchronize(nil, []*ledger{{Asset: "DOT"}})
	assert.ErrorIs(t, err, boom)
}
