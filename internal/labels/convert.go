package labels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kozaktomas/faceval/internal/detection"
)

// CornersToYOLO converts a pixel corners box [x1, y1, x2, y2] of an image
// with the given size into a normalized YOLO label rounded to 6 decimals.
func CornersToYOLO(box [4]float64, width, height, class int) Label {
	dw := 1.0 / float64(width)
	dh := 1.0 / float64(height)

	x := (box[0] + box[2]) / 2
	y := (box[1] + box[3]) / 2
	w := box[2] - box[0]
	h := box[3] - box[1]

	return Label{
		ClassID: class,
		X:       Round(x * dw),
		Y:       Round(y * dh),
		W:       Round(w * dw),
		H:       Round(h * dh),
	}
}

// YOLOToPixels converts a YOLO label back to integer pixel corners.
// Coordinates are truncated toward zero.
func YOLOToPixels(l Label, width, height int) [4]int {
	px := detection.ScaleToPixels(detection.ToCorners(l.Box(), detection.Midpoint), width, height)
	return [4]int{int(px[0]), int(px[1]), int(px[2]), int(px[3])}
}

// Box returns the label as a midpoint box.
func (l Label) Box() detection.Box {
	return detection.Box{l.X, l.Y, l.W, l.H}
}

// MarkupToLabels converts every shape of a markup into a label of the given
// class using the bounding box of its points.
func MarkupToLabels(m *Markup, class int) ([]Label, error) {
	if m.ImageWidth <= 0 || m.ImageHeight <= 0 {
		return nil, fmt.Errorf("markup %q has no image size", m.ImagePath)
	}

	out := make([]Label, 0, len(m.Shapes))
	for i, s := range m.Shapes {
		b, ok := s.Bounds()
		if !ok {
			return nil, fmt.Errorf("markup %q: shape %d has no points", m.ImagePath, i)
		}
		out = append(out, CornersToYOLO(b, m.ImageWidth, m.ImageHeight, class))
	}
	return out, nil
}

// ListDir returns the label files in dir sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read label directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ImageID returns the image identifier of a label file: its name without extension.
func ImageID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GroundTruths attaches an image id to ground truth labels.
func GroundTruths(imageID string, labels []Label) []detection.GroundTruth {
	out := make([]detection.GroundTruth, len(labels))
	for i, l := range labels {
		out[i] = detection.GroundTruth{ImageID: imageID, ClassID: l.ClassID, Box: l.Box()}
	}
	return out
}

// Detections attaches an image id to predictions.
func Detections(imageID string, preds []Prediction) []detection.Detection {
	out := make([]detection.Detection, len(preds))
	for i, p := range preds {
		out[i] = detection.Detection{ImageID: imageID, ClassID: p.ClassID, Score: p.Score, Box: p.Box()}
	}
	return out
}

// LoadGroundTruths reads every label file in dir.
func LoadGroundTruths(dir string) ([]detection.GroundTruth, error) {
	paths, err := ListDir(dir)
	if err != nil {
		return nil, err
	}

	var out []detection.GroundTruth
	for _, p := range paths {
		ls, err := ReadLabels(p)
		if err != nil {
			return nil, err
		}
		out = append(out, GroundTruths(ImageID(p), ls)...)
	}
	return out, nil
}

// LoadPredictions reads every prediction file in dir.
func LoadPredictions(dir string) ([]detection.Detection, error) {
	paths, err := ListDir(dir)
	if err != nil {
		return nil, err
	}

	var out []detection.Detection
	for _, p := range paths {
		preds, err := ReadPredictions(p)
		if err != nil {
			return nil, err
		}
		out = append(out, Detections(ImageID(p), preds)...)
	}
	return out, nil
}
