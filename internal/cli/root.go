// Package cli holds the taskproof command tree.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/internal/config"
	"github.com/fastygo/taskproof/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "taskproof",
	Short:         "Photo-accountability task tracker",
	Long:          `taskproof tracks timed tasks that start and end with a photo, and shows friends' progress as a story feed.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(tuiCmd, migrateCmd, seedCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	}
}

func consoleLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := loggerConfig(cfg)
	lc.Encoding = "console"
	return logger.New(lc)
}
