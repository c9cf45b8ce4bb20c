package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/server"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard views as SVG over HTTP",
		Long: `Starts an HTTP server exposing each view as an SVG endpoint plus a
small JSON API for the shared state. Useful for embedding the views in a
browser or scraping them from scripts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			srv := server.New(repository.New(cfg), viewstate.NewStore(), slog.Default())
			return srv.Run(cmd.Context(), cfg.ServeAddr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :9090)")
	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
