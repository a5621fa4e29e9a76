package tracker

import (
	"context"
	"time"

	"invest-tracker/core/logger"
	"invest-tracker/feature/exchange"
	"invest-tracker/feature/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Outcome classifies what a cycle did with one holding.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
)

// Engine reconciles live holdings against stored ledgers.
type Engine struct {
	cfg   Config
	store ledger.Store
	api   exchange.API
	log   *zap.Logger

	// now is injectable so tests get deterministic timestamps.
	now func() time.Time
}

// NewEngine creates a reconciliation engine.
func NewEngine(cfg Config, store ledger.Store, api exchange.API, log *zap.Logger) *Engine {
	return &Engine{
		cfg:   cfg,
		store: store,
		api:   api,
		log:   log,
		now:   time.Now,
	}
}

// RunCycle executes one reconciliation cycle. The returned report is always
// non-nil and describes whatever was processed, even when the cycle aborted
// with an error.
func (e *Engine) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := newCycleReport(uuid.NewString(), e.now())
	log := logger.WithCycle(e.log, report.CycleID)

	log.Info("Cycle started",
		zap.Bool("batch_mode", e.cfg.BatchMode),
		zap.Bool("keep_going", e.cfg.KeepGoing))

	holdings, err := e.api.FetchHoldings(ctx)
	if err != nil {
		log.Error("Fetching holdings failed", zap.Error(err))
		report.finish(e.now())
		return report, err
	}
	report.Holdings = len(holdings)

	if e.cfg.BatchMode {
		err = e.runBatch(ctx, log, holdings, report)
	} else {
		err = e.runPoint(ctx, log, holdings, report)
	}

	report.finish(e.now())
	log.Info("Cycle finished",
		zap.Int("holdings", report.Holdings),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))

	return report, err
}

// runPoint processes holdings one at a time with per-asset store lookups.
func (e *Engine) runPoint(ctx context.Context, log *zap.Logger, holdings []exchange.Holding, report *CycleReport) error {
	for i := range holdings {
		h := &holdings[i]

		outcome, err := e.reconcileHolding(ctx, log, h)
		if err != nil {
			log.Error("Reconciling holding failed",
				zap.String("asset", h.Asset), zap.Error(err))
			report.addError(h.Asset, err)
			if !e.cfg.KeepGoing {
				return err
			}
			continue
		}
		report.count(outcome)
	}
	return nil
}

// reconcileHolding routes one holding to the create or update path.
func (e *Engine) reconcileHolding(ctx context.Context, log *zap.Logger, h *exchange.Holding) (Outcome, error) {
	available, skip, err := e.classify(h)
	if err != nil {
		return "", err
	}
	if skip {
		return OutcomeSkipped, nil
	}

	stored, err := e.store.Get(ctx, h.Asset)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return e.createLedger(ctx, log, h, available)
	}
	return e.updateLedger(ctx, log, h, stored, available)
}

// classify parses the available quantity and decides whether the holding is
// tracked at all this cycle.
func (e *Engine) classify(h *exchange.Holding) (decimal.Decimal, bool, error) {
	if h.Asset == e.cfg.StableAsset {
		return decimal.Zero, true, nil
	}
	available, err := ledger.ParseQuantity(h.Asset, h.Available)
	if err != nil {
		return decimal.Zero, false, err
	}
	if available.IsZero() {
		return decimal.Zero, true, nil
	}
	return available, false, nil
}

// createLedger seeds a brand-new ledger with a single BUY entry at the
// observed quantity and the current market price.
func (e *Engine) createLedger(ctx context.Context, log *zap.Logger, h *exchange.Holding, available decimal.Decimal) (Outcome, error) {
	price, err := e.api.FetchPrice(ctx, h.Asset)
	if err != nil {
		return "", err
	}

	amount := available.Mul(price)
	entry := ledger.HistoryEntry{
		Asset:        h.Asset,
		Side:         ledger.SideBuy,
		Available:    h.Available,
		Delta:        available.String(),
		Price:        price.String(),
		Average:      price.String(),
		Amount:       amount.String(),
		Total:        amount.String(),
		ProfitOrLoss: "",
		Timestamp:    e.timestamp(),
	}

	l := &ledger.Ledger{
		Asset:     h.Asset,
		Available: available,
		Average:   price,
	}
	l.History.Append(entry)

	if err := e.store.Put(ctx, l); err != nil {
		return "", err
	}

	log.Info("Ledger created",
		zap.String("asset", h.Asset),
		zap.String("available", available.String()),
		zap.String("price", price.String()))
	return OutcomeCreated, nil
}

// updateLedger classifies the quantity delta against the stored ledger and
// appends at most one history entry.
func (e *Engine) updateLedger(ctx context.Context, log *zap.Logger, h *exchange.Holding, stored *ledger.Ledger, available decimal.Decimal) (Outcome, error) {
	delta := available.Sub(stored.Available)
	if delta.IsZero() {
		return OutcomeUnchanged, nil
	}

	last := stored.History.Last()

	entry := ledger.HistoryEntry{
		Asset:        h.Asset,
		Available:    h.Available,
		Delta:        delta.String(),
		ProfitOrLoss: "",
		Timestamp:    e.timestamp(),
	}

	if delta.IsNegative() {
		// Sold: price, amount and running total carry forward unchanged.
		// No price lookup happens on disposals.
		entry.Side = ledger.SideSell
		if last != nil {
			entry.Price = last.Price
			entry.Amount = last.Amount
			entry.Total = last.Total
			entry.Average = last.Average
		}
	} else {
		price, err := e.api.FetchPrice(ctx, h.Asset)
		if err != nil {
			return "", err
		}

		previousTotal := decimal.Zero
		if last != nil {
			previousTotal, err = ledger.ParseQuantity(h.Asset, last.Total)
			if err != nil {
				return "", &ledger.CorruptHistoryError{Asset: h.Asset, Err: err}
			}
		}

		amount := delta.Mul(price)
		entry.Side = ledger.SideBuy
		entry.Price = price.String()
		entry.Amount = amount.String()
		entry.Total = previousTotal.Add(amount).String()
		if last != nil {
			entry.Average = last.Average
		} else {
			entry.Average = stored.Average.String()
		}
	}

	stored.History.Append(entry)
	stored.Available = available

	if err := e.store.Update(ctx, stored); err != nil {
		return "", err
	}

	log.Info("Ledger updated",
		zap.String("asset", h.Asset),
		zap.String("side", entry.Side),
		zap.String("delta", delta.String()),
		zap.String("available", available.String()))
	return OutcomeUpdated, nil
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}
