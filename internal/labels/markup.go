package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Markup is a LabelMe annotation file.
type Markup struct {
	ImagePath   string  `json:"imagePath"`
	ImageWidth  int     `json:"imageWidth"`
	ImageHeight int     `json:"imageHeight"`
	Shapes      []Shape `json:"shapes"`
}

// Shape is one annotated polygon or rectangle.
type Shape struct {
	Label     string       `json:"label"`
	ShapeType string       `json:"shape_type"`
	Points    [][2]float64 `json:"points"`
}

// Flat returns the shape points as [x1, y1, x2, y2, ...].
func (s Shape) Flat() []float64 {
	out := make([]float64, 0, 2*len(s.Points))
	for _, p := range s.Points {
		out = append(out, p[0], p[1])
	}
	return out
}

// Bounds returns the corners box enclosing all points.
func (s Shape) Bounds() ([4]float64, bool) {
	if len(s.Points) == 0 {
		return [4]float64{}, false
	}
	b := [4]float64{s.Points[0][0], s.Points[0][1], s.Points[0][0], s.Points[0][1]}
	for _, p := range s.Points[1:] {
		b[0] = min(b[0], p[0])
		b[1] = min(b[1], p[1])
		b[2] = max(b[2], p[0])
		b[3] = max(b[3], p[1])
	}
	return b, true
}

// Boxes returns the flattened points of every shape.
func (m *Markup) Boxes() [][]float64 {
	out := make([][]float64, len(m.Shapes))
	for i, s := range m.Shapes {
		out[i] = s.Flat()
	}
	return out
}

// MarkupPath returns the annotation file of imageName: everything before the
// first dot of the name, with a .json extension, inside dir.
func MarkupPath(dir, imageName string) string {
	stem, _, _ := strings.Cut(filepath.Base(imageName), ".")
	return filepath.Join(dir, stem+".json")
}

// ReadMarkup loads the LabelMe annotation of imageName from dir.
func ReadMarkup(dir, imageName string) (*Markup, error) {
	return ReadMarkupFile(MarkupPath(dir, imageName))
}

// ReadMarkupFile loads a LabelMe annotation file.
func ReadMarkupFile(path string) (*Markup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markup: %w", err)
	}

	var m Markup
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: failed to parse markup: %w", path, err)
	}
	return &m, nil
}
