package cmd

import (
	"context"
	"fmt"
	"log"

	"invest-tracker/feature/ledger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ledgerCmd represents the ledger command
var ledgerCmd = &cobra.Command{
	Use:   "ledger <ASSET>",
	Short: "Print one asset's ledger history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer rt.log.Sync()

		asset := args[0]
		l, err := rt.store.Get(context.Background(), asset)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("no ledger for asset %s", asset)
		}

		rt.log.Info("Ledger",
			zap.String("asset", l.Asset),
			zap.String("available", l.Available.String()),
			zap.String("average", l.Average.String()),
			zap.Int("entries", len(l.History.Entries)))

		blob, err := ledger.EncodeHistory(&l.History)
		if err != nil {
			return err
		}
		fmt.Println(blob)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(ledgerCmd)
}
