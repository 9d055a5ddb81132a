package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/constants"
	"github.com/kozaktomas/faceval/internal/database"
	"github.com/kozaktomas/faceval/internal/embedding"
	"github.com/kozaktomas/faceval/internal/event"
	"github.com/kozaktomas/faceval/internal/facematch"
	"github.com/kozaktomas/faceval/internal/faces"
	"github.com/kozaktomas/faceval/internal/visualize"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Match detected faces against a gallery of known faces",
	Long: `Crop every face found by the detector, embed it together with its mirror
image and assign the label of the nearest known face when the combined
distance is within the threshold.

Known faces are read from a directory of face images; the label is derived
from the file name (jan_novak.jpg -> "jan novak"). Their embeddings are cached
by image hash, in PostgreSQL when DATABASE_URL is set.

The annotated image is written to <out>/<stem>_faces.jpg.

Examples:
  # Default metric (sqeuclidean, threshold 450)
  faceval recognize party.jpg --faces party.json --known gallery/

  # Cosine distance with a custom threshold and comparison strips
  faceval recognize party.jpg --faces party.json --known gallery/ --metric cosine --threshold 0.8 --show

  # JSON output
  faceval recognize party.jpg --faces party.json --known gallery/ --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("faces", "", "Detector output JSON for the image (required)")
	recognizeCmd.Flags().String("known", "", "Directory of known face images (required)")
	recognizeCmd.Flags().String("metric", string(facematch.SqEuclidean), "Distance metric: sqeuclidean, euclidean, cosine")
	recognizeCmd.Flags().Float64("threshold", 0, "Match threshold (default depends on the metric)")
	recognizeCmd.Flags().String("mode", "", "Combine the four distances by mean or sum (default mean)")
	recognizeCmd.Flags().String("unmatched-label", "", "Label assigned to faces without a match")
	recognizeCmd.Flags().Float64("min-score", 0, "Skip faces with a lower detection score")
	recognizeCmd.Flags().Bool("show", false, "Save a comparison strip for every face")
	recognizeCmd.Flags().String("out", "", "Output directory (default FACEVAL_OUTPUT_DIR)")
	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
	_ = recognizeCmd.MarkFlagRequired("faces")
	_ = recognizeCmd.MarkFlagRequired("known")
}

// RecognizedFace is the outcome for one detected face
type RecognizedFace struct {
	Index      int        `json:"index"`
	Key        string     `json:"key"`
	Score      float64    `json:"score"`
	Area       [4]float64 `json:"facial_area"`
	Label      string     `json:"label"`
	Matched    bool       `json:"matched"`
	Nearest    string     `json:"nearest"`
	Distance   float64    `json:"distance"`
	Comparison string     `json:"comparison,omitempty"`
}

// RecognizeResult represents the result of a recognize run
type RecognizeResult struct {
	Image       string           `json:"image"`
	Metric      string           `json:"metric"`
	Mode        string           `json:"mode"`
	Threshold   float64          `json:"threshold"`
	Model       string           `json:"model"`
	KnownFaces  int              `json:"known_faces"`
	CachedFaces int              `json:"cached_faces"`
	Faces       []RecognizedFace `json:"faces"`
	Matched     int              `json:"matched"`
	Output      string           `json:"output"`
	DurationMs  int64            `json:"duration_ms"`
}

func runRecognize(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	facesPath := mustGetString(cmd, "faces")
	knownDir := mustGetString(cmd, "known")
	minScore := mustGetFloat64(cmd, "min-score")
	show := mustGetBool(cmd, "show")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()
	startTime := time.Now()

	opts, err := recognizeOptions(cmd, cfg)
	if err != nil {
		return err
	}

	outDir := mustGetString(cmd, "out")
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	if _, err := initDatabase(ctx, cfg); err != nil {
		return err
	}
	store, err := database.GetGalleryStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open gallery: %w", err)
	}

	client := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.Model)
	if _, err := client.LoadInfo(ctx); err != nil {
		event.Log.Warnf("recognize: embedding server info unavailable, using input size %v: %v", client.InputSize(), err)
	}

	knowns, cached, err := loadKnownFaces(ctx, store, client, knownDir, jsonOutput)
	if err != nil {
		return err
	}
	if len(knowns) == 0 {
		return fmt.Errorf("no known face images found in %s", knownDir)
	}

	img, _, err := embedding.LoadImage(imagePath)
	if err != nil {
		return err
	}
	detected, err := faces.ReadDetections(facesPath)
	if err != nil {
		return err
	}

	renderer := visualize.NewMatchRenderer(outDir, imagePath)
	result := RecognizeResult{
		Image:       imagePath,
		Metric:      string(opts.Metric),
		Mode:        string(opts.Mode),
		Threshold:   opts.Threshold,
		Model:       client.Model(),
		KnownFaces:  len(knowns),
		CachedFaces: cached,
	}

	var kept []faces.Face
	var drawOpts visualize.DrawOptions
	drawOpts.Threshold = opts.Threshold

	for _, face := range detected {
		if face.Score < minScore {
			continue
		}
		faceIdx := len(kept)

		crop, err := faces.Crop(img, face.Area)
		if err != nil {
			return fmt.Errorf("face %s: %w", face.Key, err)
		}
		unknown, err := embedding.NewUnknownFace(ctx, client, crop)
		if err != nil {
			return fmt.Errorf("face %s: %w", face.Key, err)
		}

		rf := RecognizedFace{Index: faceIdx, Key: face.Key, Score: face.Score, Area: face.Area}
		faceOpts := opts
		if show {
			faceOpts.Visualize = renderer.Hook(faceIdx, &rf.Comparison)
		}

		match, err := facematch.Match(unknown, knowns, faceOpts)
		if err != nil {
			return fmt.Errorf("face %s: %w", face.Key, err)
		}

		rf.Label = unknown.Label
		rf.Matched = match.Matched
		rf.Nearest = knowns[match.Index].Label
		rf.Distance = match.Distance
		if match.Matched {
			result.Matched++
		}
		result.Faces = append(result.Faces, rf)

		kept = append(kept, face)
		drawOpts.Colors = append(drawOpts.Colors, unknown.Color)
		drawOpts.Labels = append(drawOpts.Labels, unknown.Label)
		drawOpts.Distances = append(drawOpts.Distances, match.Distance)
	}

	if err := os.MkdirAll(outDir, constants.OutputDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	result.Output = filepath.Join(outDir, stem+"_faces.jpg")
	if err := visualize.SaveJPEG(result.Output, visualize.DrawFaces(img, kept, drawOpts)); err != nil {
		return err
	}
	result.DurationMs = time.Since(startTime).Milliseconds()

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Printf("Matched %d of %s against %s (%s, threshold %g)\n",
		result.Matched, english.Plural(len(result.Faces), "face", "faces"),
		english.Plural(len(knowns), "known face", "known faces"), opts.Metric, opts.Threshold)
	for _, f := range result.Faces {
		status := "no match"
		if f.Matched {
			status = "match"
		}
		fmt.Printf("  %-8s %-20q nearest=%q distance=%.4f (%s)\n", f.Key, f.Label, f.Nearest, f.Distance, status)
		if f.Comparison != "" {
			fmt.Printf("           comparison: %s\n", f.Comparison)
		}
	}
	fmt.Printf("Annotated image: %s\n", result.Output)
	return nil
}

// recognizeOptions builds match options from flags, falling back to the configured defaults.
func recognizeOptions(cmd *cobra.Command, cfg *config.Config) (facematch.MatchOptions, error) {
	opts := facematch.DefaultMatchOptions()

	metric, err := facematch.ParseMetric(mustGetString(cmd, "metric"))
	if err != nil {
		return opts, err
	}
	opts.Metric = metric

	threshold, ok := cfg.Threshold(string(metric))
	if !ok && !cmd.Flags().Changed("threshold") {
		return opts, fmt.Errorf("no default threshold for metric %s, use --threshold", metric)
	}
	opts.Threshold = mustGetFloat64Or(cmd, "threshold", threshold)

	modeName := mustGetString(cmd, "mode")
	if modeName == "" {
		modeName = cfg.Thresholds.Mode
	}
	mode, err := facematch.ParseMode(modeName)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode

	if cmd.Flags().Changed("unmatched-label") {
		label := mustGetString(cmd, "unmatched-label")
		opts.UnmatchedLabel = &label
	}
	return opts, nil
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// listImages returns the image files in dir sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// loadKnownFaces embeds every gallery image, reusing cached embeddings.
// It returns the faces and how many came from the cache.
func loadKnownFaces(
	ctx context.Context, store database.GalleryStore, client *embedding.Client, dir string, quiet bool,
) ([]facematch.KnownFace, int, error) {
	paths, err := listImages(dir)
	if err != nil {
		return nil, 0, err
	}

	colors := visualize.Palette(len(paths))
	bar := newProgressBar(len(paths), "Embedding known faces", "faces", quiet)

	knowns := make([]facematch.KnownFace, 0, len(paths))
	cached := 0
	for i, path := range paths {
		img, data, err := embedding.LoadImage(path)
		if err != nil {
			return nil, 0, err
		}

		face, hit, err := database.KnownFace(ctx, store, client, client.Model(), data, img,
			facematch.LabelFromFileName(path), colors[i])
		if err != nil {
			return nil, 0, err
		}
		if hit {
			cached++
		}
		knowns = append(knowns, face)
		advance(bar)
	}

	event.Log.Debugf("recognize: loaded %s (%d cached)", english.Plural(len(knowns), "known face", "known faces"), cached)
	return knowns, cached, nil
}
