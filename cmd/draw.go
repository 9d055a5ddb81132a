package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/constants"
	"github.com/kozaktomas/faceval/internal/embedding"
	"github.com/kozaktomas/faceval/internal/faces"
	"github.com/kozaktomas/faceval/internal/labels"
	"github.com/kozaktomas/faceval/internal/visualize"
)

var drawCmd = &cobra.Command{
	Use:   "draw <image>",
	Short: "Draw detected faces or YOLO labels onto an image",
	Long: `Draw boxes, scores and landmarks of detected faces onto a copy of the image.
Boxes can come from detector output (--faces) or a YOLO label file (--labels),
which is scaled back to pixels with the image size.

The result is written to <out>/<stem>_drawn.jpg.

Examples:
  faceval draw party.jpg --faces party.json
  faceval draw party.jpg --labels labels/party.txt --color blue
  faceval draw party.jpg --faces party.json --threshold 0.9`,
	Args: cobra.ExactArgs(1),
	RunE: runDraw,
}

func init() {
	rootCmd.AddCommand(drawCmd)

	drawCmd.Flags().String("faces", "", "Detector output JSON")
	drawCmd.Flags().String("labels", "", "YOLO label file, an optional sixth column is the score")
	drawCmd.Flags().String("color", "green", "Box color: green, red, blue")
	drawCmd.Flags().Float64("threshold", 0, "Threshold printed in the header (0 = omit)")
	drawCmd.Flags().String("out", "", "Output directory (default FACEVAL_OUTPUT_DIR)")
}

func runDraw(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	facesPath := mustGetString(cmd, "faces")
	labelsPath := mustGetString(cmd, "labels")
	threshold := mustGetFloat64(cmd, "threshold")
	outDir := mustGetString(cmd, "out")

	if (facesPath == "") == (labelsPath == "") {
		return errors.New("exactly one of --faces or --labels is required")
	}

	c, err := visualize.ParseColor(mustGetString(cmd, "color"))
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = config.Load().Output.Dir
	}

	img, _, err := embedding.LoadImage(imagePath)
	if err != nil {
		return err
	}

	var detected []faces.Face
	if facesPath != "" {
		detected, err = faces.ReadDetections(facesPath)
	} else {
		detected, err = labelFaces(labelsPath, img.Bounds().Dx(), img.Bounds().Dy())
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, constants.OutputDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	out := filepath.Join(outDir, stem+"_drawn.jpg")

	drawn := visualize.DrawFaces(img, detected, visualize.DrawOptions{Color: c, Threshold: threshold})
	if err := visualize.SaveJPEG(out, drawn); err != nil {
		return err
	}

	fmt.Printf("Drew %d faces to %s\n", len(detected), out)
	return nil
}

// labelFaces reads a YOLO label file as faces in pixel coordinates.
func labelFaces(path string, width, height int) ([]faces.Face, error) {
	preds, err := labels.ReadPredictions(path)
	if err != nil {
		return nil, err
	}

	out := make([]faces.Face, len(preds))
	for i, p := range preds {
		px := labels.YOLOToPixels(p.Label, width, height)
		out[i] = faces.Face{
			Key:   "face_" + strconv.Itoa(i+1),
			Score: p.Score,
			Area:  [4]float64{float64(px[0]), float64(px[1]), float64(px[2]), float64(px[3])},
		}
	}
	return out, nil
}
