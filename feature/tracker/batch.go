package tracker

import (
	"context"

	"invest-tracker/core/listsync"
	"invest-tracker/feature/exchange"
	"invest-tracker/feature/ledger"

	"go.uber.org/zap"
)

// runBatch loads every stored ledger once and diffs it against the live
// holdings in a single pass, then applies the engine's create and update
// rules per partition. Stored ledgers without a live holding are left
// untouched; ledgers are never deleted.
func (e *Engine) runBatch(ctx context.Context, log *zap.Logger, holdings []exchange.Holding, report *CycleReport) error {
	ledgers, err := e.store.List(ctx)
	if err != nil {
		log.Error("Listing ledgers failed", zap.Error(err))
		return err
	}

	sync := listsync.New(func(h exchange.Holding, l *ledger.Ledger) bool {
		return h.Asset == l.Asset
	})

	// A count invariant violation here means the asset keys are not unique;
	// that is corrupted state, not a per-asset failure.
	result, err := sync.Compare(holdings, ledgers)
	if err != nil {
		log.Error("Holdings diff failed", zap.Error(err))
		return err
	}

	// New assets: create path.
	for i := range result.NotInDestination {
		h := &result.NotInDestination[i]

		outcome, err := e.batchCreate(ctx, log, h)
		if err != nil {
			log.Error("Creating ledger failed", zap.String("asset", h.Asset), zap.Error(err))
			report.addError(h.Asset, err)
			if !e.cfg.KeepGoing {
				return err
			}
			continue
		}
		report.count(outcome)
	}

	// Known assets: update path.
	for i := range result.Pairs {
		pair := &result.Pairs[i]

		outcome, err := e.batchUpdate(ctx, log, &pair.Source, pair.Destination)
		if err != nil {
			log.Error("Updating ledger failed", zap.String("asset", pair.Source.Asset), zap.Error(err))
			report.addError(pair.Source.Asset, err)
			if !e.cfg.KeepGoing {
				return err
			}
			continue
		}
		report.count(outcome)
	}

	return nil
}

func (e *Engine) batchCreate(ctx context.Context, log *zap.Logger, h *exchange.Holding) (Outcome, error) {
	available, skip, err := e.classify(h)
	if err != nil {
		return "", err
	}
	if skip {
		return OutcomeSkipped, nil
	}
	return e.createLedger(ctx, log, h, available)
}

func (e *Engine) batchUpdate(ctx context.Context, log *zap.Logger, h *exchange.Holding, stored *ledger.Ledger) (Outcome, error) {
	available, skip, err := e.classify(h)
	if err != nil {
		return "", err
	}
	if skip {
		return OutcomeSkipped, nil
	}
	return e.updateLedger(ctx, log, h, stored, available)
}
