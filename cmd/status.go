package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/database"
	"github.com/kozaktomas/faceval/internal/database/postgres"
	"github.com/kozaktomas/faceval/internal/embedding"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the inference server and the gallery database",
	Long: `Query the inference server for its model and input size, and report the
gallery size and applied schema migrations when DATABASE_URL is set.

Examples:
  faceval status
  faceval status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

// StatusResult is the combined health report.
type StatusResult struct {
	EmbeddingURL string               `json:"embedding_url"`
	Model        string               `json:"model"`
	Dim          int                  `json:"dim,omitempty"`
	InputSize    [2]int               `json:"input_size"`
	EmbeddingErr string               `json:"embedding_error,omitempty"`
	Database     bool                 `json:"database"`
	Faces        int                  `json:"faces"`
	Migrations   []postgres.Migration `json:"migrations,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	client := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.Model)
	result := StatusResult{EmbeddingURL: client.BaseURL(), Model: client.Model()}

	infoCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	info, err := client.LoadInfo(infoCtx)
	cancel()
	if err != nil {
		result.EmbeddingErr = err.Error()
	} else {
		result.Model = info.Model
		result.Dim = info.Dim
	}
	size := client.InputSize()
	result.InputSize = [2]int{size.X, size.Y}

	ok, err := initDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	result.Database = ok
	if ok {
		if result.Migrations, err = postgres.Active().Migrations(ctx); err != nil {
			return err
		}
	}

	store, err := database.GetGalleryStore(ctx)
	if err != nil {
		return err
	}
	if result.Faces, err = store.Count(ctx); err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(result)
	}
	printStatus(result)
	return nil
}

func printStatus(r StatusResult) {
	fmt.Printf("Inference server: %s\n", r.EmbeddingURL)
	if r.EmbeddingErr != "" {
		fmt.Printf("  unreachable: %s\n", r.EmbeddingErr)
	} else {
		fmt.Printf("  model %s, %d-dim, input %dx%d\n", r.Model, r.Dim, r.InputSize[0], r.InputSize[1])
	}

	if !r.Database {
		fmt.Println("Database: not configured, gallery is in memory")
		return
	}
	fmt.Printf("Database: %s in gallery\n", english.Plural(r.Faces, "face", "faces"))
	for _, m := range r.Migrations {
		fmt.Printf("  %s applied %s\n", m.Version, humanize.Time(m.AppliedAt))
	}
}
