package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileBatch     bool
	reconcileKeepGoing bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation cycle",
	Long: `Fetches the live exchange holdings, diffs them against the stored
ledgers and appends a history entry for every detected buy or sell.
Runs exactly one cycle and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.log
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// Flags override whatever the environment configured.
		if cmd.Flags().Changed("batch") {
			rt.cfg.Tracker.BatchMode = reconcileBatch
		}
		if cmd.Flags().Changed("keep-going") {
			rt.cfg.Tracker.KeepGoing = reconcileKeepGoing
		}
		rt.rebuildEngine()

		ctx := context.Background()
		report, runErr := rt.engine.RunCycle(ctx)

		if rt.archiver != nil && report != nil {
			if err := rt.archiver.Archive(ctx, report); err != nil {
				logg.Error("Report archive failed", zap.Error(err))
			}
		}

		if runErr != nil {
			return runErr
		}

		logg.Info("Reconciliation complete",
			zap.String("cycle_id", report.CycleID),
			zap.Int("holdings", report.Holdings),
			zap.Int("created", report.Created),
			zap.Int("updated", report.Updated),
			zap.Int("unchanged", report.Unchanged),
			zap.Int("skipped", report.Skipped))
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileBatch, "batch", false, "diff all ledgers in one pass instead of per-asset lookups")
	reconcileCmd.Flags().BoolVar(&reconcileKeepGoing, "keep-going", false, "continue past per-asset failures and collect them in the report")
	RootCmd.AddCommand(reconcileCmd)
}
