package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fitpo",
	Short: "Purchase-request classification and PO issuance for steel fittings",
	Long:  "Classifies fitting purchase-request items via deterministic rules plus Claude inference, reconciles supplier review responses, and issues purchase orders for confirmed items.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
