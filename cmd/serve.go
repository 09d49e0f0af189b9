package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steelfab-ops/fitpo/internal/pipeline"
	"github.com/steelfab-ops/fitpo/internal/refdata"
	"github.com/steelfab-ops/fitpo/internal/server"
	anthropicpkg "github.com/steelfab-ops/fitpo/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control-surface HTTP server for the review UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		data, err := refdata.Load(ctx, cfg.Data)
		if err != nil {
			return err
		}

		ai := anthropicpkg.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RPM)
		engine := pipeline.NewEngine(cfg, ai, data)

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		return server.New(engine, serverCfg).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
