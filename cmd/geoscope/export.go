package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/export"
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

func exportCmd() *cobra.Command {
	var (
		views []string
		xVar  string
		yVar  string
		k     int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export dashboard views as PNG images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store := viewstate.NewStore()
			if xVar != "" {
				field, err := model.ParseField(xVar)
				if err != nil {
					return fmt.Errorf("invalid --x: %w", err)
				}
				store.SetXVar(field)
			}
			if yVar != "" {
				field, err := model.ParseField(yVar)
				if err != nil {
					return fmt.Errorf("invalid --y: %w", err)
				}
				store.SetYVar(field)
			}
			if k != 0 {
				if k < 1 || k > repository.MaxClusterCount {
					return fmt.Errorf("--k must be in [1, %d]", repository.MaxClusterCount)
				}
				store.SetK(k)
			}

			exporter := export.New(repository.New(cfg), store)
			if err := exporter.Export(cmd.Context(), cfg.ExportDir, views); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", cfg.ExportDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&views, "views", nil, "views to export (scatter, pcp, clusters); all when unset")
	cmd.Flags().StringVar(&xVar, "x", "", "x-axis indicator (co2_emissions, gdp, population, life_expectancy)")
	cmd.Flags().StringVar(&yVar, "y", "", "y-axis indicator")
	cmd.Flags().IntVar(&k, "k", 0, "cluster count (1-10)")
	cmd.Flags().String("out", "", "output directory (default from export.dir)")
	_ = viper.BindPFlag("export.dir", cmd.Flags().Lookup("out"))

	return cmd
}
