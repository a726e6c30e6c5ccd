package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kyi",
	Short: "Know Your Investors recommendation core",
	Long: `Suggests new investors from the networks of a company's existing investors,
measures network overlap, and builds access maps.

Settings are read from config.yaml in the working directory and can be
overridden with KYI_ environment variables, for example KYI_STORE_DRIVER,
KYI_STORE_DATABASE_URL or KYI_LOG_LEVEL.`,
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
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
