package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mycity/internal/app"
	"mycity/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skill over HTTP",
	Long:  `Start an HTTP server with POST /alexa and GET /health for local testing.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, cfg, err := app.LoadConfig(ctx)
	if err != nil {
		return err
	}
	router, err := app.NewRouter(cfg, app.DepsFromAWS(awsCfg, cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	return server.Run(ctx, serveAddr, server.NewEngine(router, logger), logger)
}
