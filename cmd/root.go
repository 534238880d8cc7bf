package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "oppintel",
	Short: "Government contracting opportunity acquisition pipeline",
	Long:  "Scrapes DoD SBIR/STTR topics and defense.gov contract announcements into a canonical opportunity store with field-level provenance.",
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
