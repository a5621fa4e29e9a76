package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"invest-tracker/feature/exchange"
	"invest-tracker/feature/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStore struct {
	ledgers map[string]*ledger.Ledger

	gets    int
	lists   int
	puts    []*ledger.Ledger
	updates []*ledger.Ledger

	getErr    error
	putErr    error
	updateErr error
	listErr   error
}

func newStubStore(ledgers ...*ledger.Ledger) *stubStore {
	s := &stubStore{ledgers: map[string]*ledger.Ledger{}}
	for _, l := range ledgers {
		s.ledgers[l.Asset] = l
	}
	return s
}

func (s *stubStore) Get(ctx context.Context, asset string) (*ledger.Ledger, error) {
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.ledgers[asset], nil
}

func (s *stubStore) Put(ctx context.Context, l *ledger.Ledger) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, l)
	s.ledgers[l.Asset] = l
	return nil
}

func (s *stubStore) Update(ctx context.Context, l *ledger.Ledger) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, l)
	s.ledgers[l.Asset] = l
	return nil
}

func (s *stubStore) List(ctx context.Context) ([]*ledger.Ledger, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*ledger.Ledger, 0, len(s.ledgers))
	for _, l := range s.ledgers {
		out = append(out, l)
	}
	return out, nil
}

type stubAPI struct {
	holdings    []exchange.Holding
	holdingsErr error

	prices     map[string]string
	priceErr   map[string]error
	priceCalls int
}

func (a *stubAPI) FetchHoldings(ctx context.Context) ([]exchange.Holding, error) {
	if a.holdingsErr != nil {
		return nil, a.holdingsErr
	}
	return a.holdings, nil
}

func (a *stubAPI) FetchPrice(ctx context.Context, asset string) (decimal.Decimal, error) {
	a.priceCalls++
	if err := a.priceErr[asset]; err != nil {
		return decimal.Zero, err
	}
	price, ok := a.prices[asset]
	if !ok {
		return decimal.Zero, errors.New("no stubbed price for " + asset)
	}
	return decimal.RequireFromString(price), nil
}

func newTestEngine(cfg Config, store ledger.Store, api exchange.API) *Engine {
	if cfg.StableAsset == "" {
		cfg.StableAsset = "USDT"
	}
	e := NewEngine(cfg, store, api, zap.NewNop())
	e.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	return e
}

func existingLedger(asset, available, average string, entries ...ledger.HistoryEntry) *ledger.Ledger {
	l := &ledger.Ledger{
		Asset:     asset,
		Available: decimal.RequireFromString(available),
		Average:   decimal.RequireFromString(average),
	}
	l.History.Entries = entries
	return l
}

func TestAcquirePath_NewAsset(t *testing.T) {
	store := newStubStore()
	api := &stubAPI{
		holdings: []exchange.Holding{{Asset: "FOO", Available: "10"}},
		prices:   map[string]string{"FOO": "2"},
	}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	require.Len(t, store.puts, 1)
	created := store.puts[0]
	assert.Equal(t, "FOO", created.Asset)
	assert.Equal(t, "10", created.Available.String())
	assert.Equal(t, "2", created.Average.String())

	require.Len(t, created.History.Entries, 1)
	entry := created.History.Entries[0]
	assert.Equal(t, ledger.SideBuy, entry.Side)
	assert.Equal(t, "10", entry.Delta)
	assert.Equal(t, "2", entry.Price)
	assert.Equal(t, "20", entry.Amount)
	assert.Equal(t, "20", entry.Total)
	assert.Equal(t, "", entry.ProfitOrLoss)
	assert.Equal(t, "2024-06-01T10:00:00Z", entry.Timestamp)
}

func TestNoOpOnEqualQuantity(t *testing.T) {
	stored := existingLedger("FOO", "10", "2", ledger.HistoryEntry{
		Asset: "FOO", Side: ledger.SideBuy, Available: "10", Total: "20",
	})
	store := newStubStore(stored)
	api := &stubAPI{holdings: []exchange.Holding{{Asset: "FOO", Available: "10"}}}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Unchanged)
	assert.Empty(t, store.puts)
	assert.Empty(t, store.updates)
	assert.Equal(t, 0, api.priceCalls)
	assert.Len(t, stored.History.Entries, 1)
}

func TestDeltaAccumulation(t *testing.T) {
	stored := existingLedger("FOO", "10", "2", ledger.HistoryEntry{
		Asset: "FOO", Side: ledger.SideBuy, Available: "10",
		Price: "2", Average: "2", Amount: "20", Total: "20",
	})
	store := newStubStore(stored)
	api := &stubAPI{
		holdings: []exchange.Holding{{Asset: "FOO", Available: "15"}},
		prices:   map[string]string{"FOO": "3"},
	}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	require.Len(t, store.updates, 1)
	updated := store.updates[0]
	assert.Equal(t, "15", updated.Available.String())

	require.Len(t, updated.History.Entries, 2)
	entry := updated.History.Entries[1]
	assert.Equal(t, ledger.SideBuy, entry.Side)
	assert.Equal(t, "5", entry.Delta)
	assert.Equal(t, "3", entry.Price)
	assert.Equal(t, "15", entry.Amount)
	assert.Equal(t, "35", entry.Total)
}

func TestDisposalPath(t *testing.T) {
	stored := existingLedger("FOO", "15", "2", ledger.HistoryEntry{
		Asset: "FOO", Side: ledger.SideBuy, Available: "15",
		Price: "3", Average: "2", Amount: "15", Total: "35",
	})
	store := newStubStore(stored)
	api := &stubAPI{holdings: []exchange.Holding{{Asset: "FOO", Available: "5"}}}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	// No price lookup happens on disposals.
	assert.Equal(t, 0, api.priceCalls)

	require.Len(t, store.updates, 1)
	updated := store.updates[0]
	assert.Equal(t, "5", updated.Available.String())

	require.Len(t, updated.History.Entries, 2)
	entry := updated.History.Entries[1]
	assert.Equal(t, ledger.SideSell, entry.Side)
	assert.Equal(t, "5", entry.Available)
	assert.Equal(t, "-10", entry.Delta)
	// Price, amount and total carry forward unchanged.
	assert.Equal(t, "3", entry.Price)
	assert.Equal(t, "15", entry.Amount)
	assert.Equal(t, "35", entry.Total)
	assert.Equal(t, "", entry.ProfitOrLoss)
}

func TestExcludedAssets(t *testing.T) {
	store := newStubStore()
	api := &stubAPI{holdings: []exchange.Holding{
		{Asset: "USDT", Available: "250"},
		{Asset: "FOO", Available: "0"},
	}}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Skipped)
	// Excluded holdings never touch the store.
	assert.Equal(t, 0, store.gets)
	assert.Empty(t, store.puts)
	assert.Empty(t, store.updates)
}

func TestHoldingsFetchFailureAbortsCycle(t *testing.T) {
	boom := errors.New("exchange down")
	store := newStubStore()
	api := &stubAPI{holdingsErr: boom}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, report)
	assert.Equal(t, 0, store.gets)
}

func TestFirstErrorAbortsRemainingAssets(t *testing.T) {
	store := newStubStore()
	api := &stubAPI{
		holdings: []exchange.Holding{
			{Asset: "BAD", Available: "1"},
			{Asset: "FOO", Available: "10"},
		},
		prices:   map[string]string{"FOO": "2"},
		priceErr: map[string]error{"BAD": errors.New("no ticker")},
	}

	report, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())
	require.Error(t, err)

	// FOO was never processed.
	assert.Empty(t, store.puts)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "BAD", report.Errors[0].Asset)
}

func TestKeepGoingIsolatesAssetFailures(t *testing.T) {
	store := newStubStore()
	api := &stubAPI{
		holdings: []exchange.Holding{
			{Asset: "BAD", Available: "1"},
			{Asset: "FOO", Available: "10"},
		},
		prices:   map[string]string{"FOO": "2"},
		priceErr: map[string]error{"BAD": errors.New("no ticker")},
	}

	report, err := newTestEngine(Config{KeepGoing: true}, store, api).RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "BAD", report.Errors[0].Asset)
	require.Len(t, store.puts, 1)
	assert.Equal(t, "FOO", store.puts[0].Asset)
}

func TestCorruptStoredTotal(t *testing.T) {
	stored := existingLedger("FOO", "10", "2", ledger.HistoryEntry{
		Asset: "FOO", Side: ledger.SideBuy, Available: "10", Total: "not-a-number",
	})
	store := newStubStore(stored)
	api := &stubAPI{
		holdings: []exchange.Holding{{Asset: "FOO", Available: "15"}},
		prices:   map[string]string{"FOO": "3"},
	}

	_, err := newTestEngine(Config{}, store, api).RunCycle(context.Background())

	var corrupt *ledger.CorruptHistoryError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, "FOO", corrupt.Asset)
	assert.Empty(t, store.updates)
}
