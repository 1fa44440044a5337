package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"numbersapi/internal/app"
	"numbersapi/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Configuration comes from the YAML file, .env and
.env.local, and environment variables (PORT, DATABASE_URL, JWT_SECRET, ...).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return app.Run(ctx, cfg)
	},
}
