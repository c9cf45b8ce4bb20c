package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/tui"
	"github.com/Veraticus/geoscope/internal/tui/themes"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			return tui.Run(cmd.Context(), tui.Config{
				Repo:  repository.New(cfg),
				Store: viewstate.NewStore(),
				Theme: themes.Default,
			})
		},
	}
}
