package detection

import (
	"fmt"
	"math"
	"strings"
)

// Format names the coordinate encoding of a Box.
type Format string

const (
	// Midpoint boxes are [cx, cy, w, h].
	Midpoint Format = "midpoint"
	// Corners boxes are [x1, y1, x2, y2].
	Corners Format = "corners"
)

// iouEpsilon keeps IoU finite for degenerate boxes.
const iouEpsilon = 1e-6

// Box holds four coordinates whose meaning depends on the Format passed alongside it.
type Box [4]float64

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case Midpoint:
		return Midpoint, nil
	case Corners, "corner":
		return Corners, nil
	}
	return "", fmt.Errorf("unknown box format %q (want midpoint or corners)", s)
}

// ToCorners converts a box in the given format to [x1, y1, x2, y2].
func ToCorners(b Box, format Format) Box {
	if format == Midpoint {
		return Box{
			b[0] - b[2]/2,
			b[1] - b[3]/2,
			b[0] + b[2]/2,
			b[1] + b[3]/2,
		}
	}
	return b
}

// ToMidpoint converts a box in the given format to [cx, cy, w, h].
func ToMidpoint(b Box, format Format) Box {
	if format == Corners {
		return Box{
			(b[0] + b[2]) / 2,
			(b[1] + b[3]) / 2,
			b[2] - b[0],
			b[3] - b[1],
		}
	}
	return b
}

// Area returns the absolute area of a box.
func Area(b Box, format Format) float64 {
	c := ToCorners(b, format)
	return math.Abs((c[2] - c[0]) * (c[3] - c[1]))
}

// IoU calculates Intersection over Union between two boxes of the same format.
// Non-overlapping boxes give 0; identical boxes give 1 within iouEpsilon.
func IoU(a, b Box, format Format) float64 {
	a = ToCorners(a, format)
	b = ToCorners(b, format)

	// Calculate intersection, clamped at zero when boxes do not touch.
	x1 := max(a[0], b[0])
	y1 := max(a[1], b[1])
	x2 := min(a[2], b[2])
	y2 := min(a[3], b[3])
	intersection := max(x2-x1, 0) * max(y2-y1, 0)

	// Calculate union.
	areaA := math.Abs((a[2] - a[0]) * (a[3] - a[1]))
	areaB := math.Abs((b[2] - b[0]) * (b[3] - b[1]))
	union := areaA + areaB - intersection

	return intersection / (union + iouEpsilon)
}

// ScaleToPixels converts a box in relative (0-1) coordinates to pixels.
func ScaleToPixels(b Box, width, height int) Box {
	if width <= 0 || height <= 0 {
		return b
	}
	w, h := float64(width), float64(height)
	return Box{b[0] * w, b[1] * h, b[2] * w, b[3] * h}
}
