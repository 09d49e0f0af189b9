package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/pipeline"
	"github.com/steelfab-ops/fitpo/internal/refdata"
	anthropicpkg "github.com/steelfab-ops/fitpo/pkg/anthropic"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a full classification run and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := refdata.Load(ctx, cfg.Data)
		if err != nil {
			return err
		}
		zap.L().Info("reference data loaded",
			zap.Int("items", len(data.Items)),
			zap.Int("reviews", len(data.Reviews)),
			zap.Int("prices", len(data.Prices)),
			zap.Int("drawings", len(data.Drawings)),
		)

		ai := anthropicpkg.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RPM)
		engine := pipeline.NewEngine(cfg, ai, data)

		if err := engine.Run(ctx); err != nil {
			return err
		}

		fmt.Print(pipeline.FormatReport(engine.State()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
