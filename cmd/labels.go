package cmd

import (
	"fmt"
	"image"
	"os"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/detection"
	"github.com/kozaktomas/faceval/internal/embedding"
	"github.com/kozaktomas/faceval/internal/faces"
	"github.com/kozaktomas/faceval/internal/labels"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Convert detector output to a YOLO label file",
	Long: `Convert the faces found by the detector into YOLO labels (class 0) using
the image size for normalization. Values are rounded to 6 decimals.

Without --out the labels are printed to stdout. With --nms overlapping faces
are suppressed first and the labels are written in descending score order.

Examples:
  faceval labels --faces party.json --image party.jpg --out labels/party.txt
  faceval labels --faces party.json --image party.jpg --scores
  faceval labels --faces party.json --image party.jpg --nms 0.4`,
	RunE: runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.Flags().String("faces", "", "Detector output JSON (required)")
	labelsCmd.Flags().String("image", "", "Image the detections belong to (required)")
	labelsCmd.Flags().String("out", "", "Label file to write (default stdout)")
	labelsCmd.Flags().Int("class", 0, "Class id written for every face")
	labelsCmd.Flags().Float64("min-score", 0, "Skip faces with a lower detection score")
	labelsCmd.Flags().Bool("scores", false, "Append the detection score as sixth column")
	labelsCmd.Flags().Float64("nms", 0, "Suppress faces overlapping a better one above this IoU (0 = off)")
	_ = labelsCmd.MarkFlagRequired("faces")
	_ = labelsCmd.MarkFlagRequired("image")
}

func runLabels(cmd *cobra.Command, args []string) error {
	facesPath := mustGetString(cmd, "faces")
	imagePath := mustGetString(cmd, "image")
	outPath := mustGetString(cmd, "out")
	class := mustGetInt(cmd, "class")
	minScore := mustGetFloat64(cmd, "min-score")
	withScores := mustGetBool(cmd, "scores")
	nms := mustGetFloat64(cmd, "nms")

	size, err := imageSize(imagePath)
	if err != nil {
		return err
	}

	detected, err := faces.ReadDetections(facesPath)
	if err != nil {
		return err
	}

	preds := facePredictions(labels.ImageID(imagePath), detected, size, class, minScore, nms)

	if outPath == "" {
		return writePredictions(os.Stdout, preds, withScores)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create label file: %w", err)
	}
	if err := writePredictions(f, preds, withScores); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write label file: %w", err)
	}

	fmt.Printf("Wrote %s to %s\n", english.Plural(len(preds), "label", "labels"), outPath)
	return nil
}

// facePredictions turns detector output into YOLO predictions, dropping faces
// below minScore and, when nms is positive, faces suppressed by a better one.
func facePredictions(imageID string, detected []faces.Face, size image.Point, class int, minScore, nms float64) []labels.Prediction {
	var dets []detection.Detection
	for _, d := range faces.ToDetections(imageID, detected) {
		if d.Score >= minScore {
			dets = append(dets, d)
		}
	}
	if nms > 0 {
		dets = detection.NonMaxSuppression(dets, nms, detection.Corners)
	}

	preds := make([]labels.Prediction, len(dets))
	for i, d := range dets {
		preds[i] = labels.Prediction{
			Label: labels.CornersToYOLO(d.Box, size.X, size.Y, class),
			Score: d.Score,
		}
	}
	return preds
}

func writePredictions(w *os.File, preds []labels.Prediction, withScores bool) error {
	if withScores {
		return labels.WritePredictions(w, preds)
	}
	ls := make([]labels.Label, len(preds))
	for i, p := range preds {
		ls[i] = p.Label
	}
	return labels.WriteLabels(w, ls)
}

// imageSize returns the pixel size of an image file.
func imageSize(path string) (image.Point, error) {
	img, _, err := embedding.LoadImage(path)
	if err != nil {
		return image.Point{}, err
	}
	return img.Bounds().Size(), nil
}
