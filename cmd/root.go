package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/database/postgres"
	"github.com/kozaktomas/faceval/internal/event"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "faceval",
	Short: "Face identity matching and detection metric evaluation",
	Long: `faceval matches detected faces against a gallery of known faces using
front and mirrored embeddings, and evaluates object detectors with IoU and
mean average precision over YOLO label files.

Embeddings are computed by an inference server (EMBEDDING_URL) and cached
in PostgreSQL when DATABASE_URL is set.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides FACEVAL_LOG_LEVEL")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	level := logLevel
	if level == "" {
		level = config.Load().LogLevel
	}
	if !event.SetLevel(level) {
		event.Log.Warnf("unknown log level %q", level)
	}
}

// initDatabase connects to PostgreSQL when DATABASE_URL is set.
// It reports whether the database backend is active.
func initDatabase(ctx context.Context, cfg *config.Config) (bool, error) {
	if cfg.Database.URL == "" {
		return false, nil
	}
	if _, err := postgres.Initialize(ctx, &cfg.Database); err != nil {
		return false, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return true, nil
}
