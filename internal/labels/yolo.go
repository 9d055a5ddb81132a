// Package labels reads and writes face annotations: YOLO text labels and
// LabelMe JSON markups.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Precision is the number of decimals written to label files.
const Precision = 6

// Label is one box in YOLO format: class and normalized midpoint box.
type Label struct {
	ClassID int     `json:"class_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
}

// Prediction is a detector label with its confidence score.
type Prediction struct {
	Label
	Score float64 `json:"score"`
}

// Round rounds v to the label file precision.
func Round(v float64) float64 {
	p := math.Pow10(Precision)
	return math.Round(v*p) / p
}

// ReadLabels reads a ground truth label file.
func ReadLabels(path string) ([]Label, error) {
	preds, err := readFile(path, false)
	if err != nil {
		return nil, err
	}
	out := make([]Label, len(preds))
	for i, p := range preds {
		out[i] = p.Label
	}
	return out, nil
}

// ReadPredictions reads a label file whose lines may carry a sixth score
// column. Lines without it get a score of 1.
func ReadPredictions(path string) ([]Prediction, error) {
	return readFile(path, true)
}

func readFile(path string, withScore bool) ([]Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	return parse(f, path, withScore)
}

// ParseLabels parses label lines from r. name is used in error messages.
func ParseLabels(r io.Reader, name string) ([]Label, error) {
	preds, err := parse(r, name, false)
	if err != nil {
		return nil, err
	}
	out := make([]Label, len(preds))
	for i, p := range preds {
		out[i] = p.Label
	}
	return out, nil
}

// ParsePredictions parses prediction lines from r.
func ParsePredictions(r io.Reader, name string) ([]Prediction, error) {
	return parse(r, name, true)
}

func parse(r io.Reader, name string, withScore bool) ([]Prediction, error) {
	var out []Prediction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		want := "5"
		ok := len(fields) == 5
		if withScore {
			want = "5 or 6"
			ok = ok || len(fields) == 6
		}
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected %s fields, got %d", name, line, want, len(fields))
		}

		class, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid class %q: %w", name, line, fields[0], err)
		}

		var v [5]float64
		v[4] = 1
		for i, s := range fields[1:] {
			v[i], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid value %q: %w", name, line, s, err)
			}
			if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
				return nil, fmt.Errorf("%s:%d: value %q is not finite", name, line, s)
			}
		}

		out = append(out, Prediction{
			Label: Label{ClassID: class, X: v[0], Y: v[1], W: v[2], H: v[3]},
			Score: v[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to read labels: %w", name, err)
	}
	return out, nil
}

// FormatLabel renders a label as one "class x y w h" line without newline.
func FormatLabel(l Label) string {
	return fmt.Sprintf("%d %s %s %s %s", l.ClassID,
		formatValue(l.X), formatValue(l.Y), formatValue(l.W), formatValue(l.H))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', -1, 64)
}

// WriteLabels writes labels to w, one per line.
func WriteLabels(w io.Writer, labels []Label) error {
	bw := bufio.NewWriter(w)
	for _, l := range labels {
		if _, err := bw.WriteString(FormatLabel(l) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePredictions writes predictions to w with the score as sixth column.
func WritePredictions(w io.Writer, preds []Prediction) error {
	bw := bufio.NewWriter(w)
	for _, p := range preds {
		if _, err := bw.WriteString(FormatLabel(p.Label) + " " + formatValue(p.Score) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteLabelFile creates or truncates path and writes labels to it.
func WriteLabelFile(path string, labels []Label) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create label file: %w", err)
	}
	if err := WriteLabels(f, labels); err != nil {
		f.Close()
		return fmt.Errorf("failed to write label file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write label file: %w", err)
	}
	return nil
}
