package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/constants"
	"github.com/kozaktomas/faceval/internal/database"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored evaluation runs",
	Long: `List evaluation runs stored by the evaluate command, newest first.
With a run id, print the full report of that run.

Requires DATABASE_URL to be set.

Examples:
  faceval runs
  faceval runs --limit 5
  faceval runs 3f1c2a9e-5b7d-4e0a-9c61-2f8d0b4a7e13 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().Int("limit", constants.RunListLimit, "Maximum number of runs to list")
	runsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()

	ok, err := initDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("DATABASE_URL environment variable is required")
	}

	store, err := database.GetRunStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		run, err := store.GetRun(ctx, id)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s not found", id)
		}
		if jsonOutput {
			return outputJSON(run)
		}
		result := EvaluateResult{RunID: run.ID, Report: run.Report}
		for _, c := range run.Report.Classes {
			result.Predictions += c.Detections
			result.GroundTruths += c.GroundTruths
		}
		printEvaluateResult(result)
		return nil
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No evaluation runs stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tIOU\tCLASSES\tMAP\tPRED\tTRUTH")
	fmt.Fprintln(w, "--\t-------\t---\t-------\t---\t----\t-----")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%.4f\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Report.IoUThreshold,
			r.Report.NumClasses, r.Report.MAP, r.PredDir, r.TruthDir)
	}
	w.Flush()
	return nil
}
