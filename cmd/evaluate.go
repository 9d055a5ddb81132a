package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/database"
	"github.com/kozaktomas/faceval/internal/detection"
	"github.com/kozaktomas/faceval/internal/labels"
	"github.com/kozaktomas/faceval/internal/visualize"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compute mean average precision of predictions against ground truth",
	Long: `Read YOLO label files from a prediction and a ground truth directory and
compute per-class average precision and their mean. The image id of a box is
the label file name without extension.

Prediction lines may carry a sixth score column; lines without it score 1.

When DATABASE_URL is set the report is stored as an evaluation run.

Examples:
  # Single class, IoU 0.5
  faceval evaluate --pred runs/pred --truth data/labels

  # Three classes, stricter overlap, with precision-recall plot
  faceval evaluate --pred runs/pred --truth data/labels --classes 3 --iou 0.75 --plot pr.png

  # Suppress overlapping predictions before scoring
  faceval evaluate --pred runs/pred --truth data/labels --nms 0.45 --json`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	defaults := config.DefaultThresholds().Detection
	evaluateCmd.Flags().String("pred", "", "Directory of prediction label files (required)")
	evaluateCmd.Flags().String("truth", "", "Directory of ground truth label files (required)")
	evaluateCmd.Flags().Float64("iou", defaults.IoUThreshold, "IoU a prediction must exceed to count as true positive")
	evaluateCmd.Flags().String("format", defaults.Format, "Box format: midpoint or corners")
	evaluateCmd.Flags().Int("classes", defaults.NumClasses, "Number of classes")
	evaluateCmd.Flags().Float64("nms", 0, "Apply non-max suppression with this IoU threshold first (0 = off)")
	evaluateCmd.Flags().String("plot", "", "Save precision-recall curves to this file (png, svg, pdf)")
	evaluateCmd.Flags().Bool("json", false, "Output as JSON")
	_ = evaluateCmd.MarkFlagRequired("pred")
	_ = evaluateCmd.MarkFlagRequired("truth")
}

// EvaluateResult represents the result of an evaluate run
type EvaluateResult struct {
	RunID        uuid.UUID        `json:"run_id"`
	Predictions  int              `json:"predictions"`
	GroundTruths int              `json:"ground_truths"`
	Suppressed   int              `json:"suppressed,omitempty"`
	Report       detection.Report `json:"report"`
	Saved        bool             `json:"saved"`
	Plot         string           `json:"plot,omitempty"`
	DurationMs   int64            `json:"duration_ms"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	predDir := mustGetString(cmd, "pred")
	truthDir := mustGetString(cmd, "truth")
	iou := mustGetFloat64(cmd, "iou")
	numClasses := mustGetInt(cmd, "classes")
	nms := mustGetFloat64(cmd, "nms")
	plotPath := mustGetString(cmd, "plot")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()
	startTime := time.Now()

	format, err := detection.ParseFormat(mustGetString(cmd, "format"))
	if err != nil {
		return err
	}
	if numClasses < 1 {
		return fmt.Errorf("--classes must be at least 1, got %d", numClasses)
	}
	if iou < 0 || iou > 1 {
		return fmt.Errorf("--iou must be within [0, 1], got %g", iou)
	}

	preds, err := labels.LoadPredictions(predDir)
	if err != nil {
		return fmt.Errorf("failed to load predictions: %w", err)
	}
	truths, err := labels.LoadGroundTruths(truthDir)
	if err != nil {
		return fmt.Errorf("failed to load ground truth: %w", err)
	}

	result := EvaluateResult{
		RunID:        uuid.New(),
		Predictions:  len(preds),
		GroundTruths: len(truths),
	}

	if nms > 0 {
		kept := detection.NonMaxSuppression(preds, nms, format)
		result.Suppressed = len(preds) - len(kept)
		preds = kept
	}

	result.Report = detection.Evaluate(preds, truths, iou, format, numClasses)

	if plotPath != "" {
		if err := visualize.SavePRCurves(result.Report, plotPath); err != nil {
			return err
		}
		result.Plot = plotPath
	}

	saved, err := saveEvaluationRun(ctx, cfg, result.RunID, predDir, truthDir, result.Report)
	if err != nil {
		return err
	}
	result.Saved = saved
	result.DurationMs = time.Since(startTime).Milliseconds()

	if jsonOutput {
		return outputJSON(result)
	}

	printEvaluateResult(result)
	return nil
}

// saveEvaluationRun stores the report when a database is configured.
func saveEvaluationRun(
	ctx context.Context, cfg *config.Config, runID uuid.UUID, predDir, truthDir string, report detection.Report,
) (bool, error) {
	ok, err := initDatabase(ctx, cfg)
	if err != nil || !ok {
		return false, err
	}

	store, err := database.GetRunStore(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to open run store: %w", err)
	}

	run := database.EvaluationRun{
		ID:       runID,
		PredDir:  predDir,
		TruthDir: truthDir,
		Report:   report,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return false, fmt.Errorf("failed to save evaluation run: %w", err)
	}
	return true, nil
}

func printEvaluateResult(result EvaluateResult) {
	r := result.Report
	fmt.Printf("Run %s\n", result.RunID)
	fmt.Printf("Loaded %s and %s\n",
		english.Plural(result.Predictions, "prediction", "predictions"),
		english.Plural(result.GroundTruths, "ground truth box", "ground truth boxes"))
	if result.Suppressed > 0 {
		fmt.Printf("Non-max suppression removed %s\n", english.Plural(result.Suppressed, "prediction", "predictions"))
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tTRUTH\tPRED\tTP\tFP\tAP")
	fmt.Fprintln(w, "-----\t-----\t----\t--\t--\t--")
	for _, c := range r.Classes {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%.4f\n", c.ClassID, c.GroundTruths, c.Detections, c.TruePositives, c.FalsePositives, c.AP)
	}
	w.Flush()

	skipped := r.NumClasses - len(r.Classes)
	if skipped > 0 {
		fmt.Printf("\n%s without ground truth skipped\n", english.Plural(skipped, "class", "classes"))
	}
	fmt.Printf("\nmAP@%.2f (%s): %.4f\n", r.IoUThreshold, r.Format, r.MAP)

	if result.Plot != "" {
		fmt.Printf("Precision-recall curves: %s\n", result.Plot)
	}
	if result.Saved {
		fmt.Println("Saved evaluation run to database")
	}
}
