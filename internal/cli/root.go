// Package cli implements housingctl, the command line front end of the
// housing assistant.
package cli

import (
	"fmt"
	"log/slog"

	"housing-assistant/internal/app"
	"housing-assistant/internal/config"
	"housing-assistant/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile   string
	vocabFile string
	logLevel  string

	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "housingctl",
	Short: "Query and maintain the housing listing assistant",
	Long: `housingctl runs the housing assistant pipeline from the terminal:
extract facets from a question, search the listing store with the
fallback ladder, ask the chat model, and import listings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
		}
		slog.SetDefault(logger.New(cmd.ErrOrStderr(), config.LoggingConfig{
			Level:  logLevel,
			Format: "text",
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file")
	rootCmd.PersistentFlags().StringVar(&vocabFile, "vocabulary", "", "YAML vocabulary override (defaults to VOCABULARY_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

// SetVersion records build information for the version command
func SetVersion(v, built, commit string) {
	version, buildTime, gitCommit = v, built, commit
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment configuration and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if vocabFile != "" {
		cfg.Vocabulary.File = vocabFile
	}
	return cfg, nil
}

// openApp builds the full pipeline. The caller must Close it.
func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}
