// Package visualize renders detection and matching results as images and plots.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kozaktomas/faceval/internal/faces"
)

var (
	Green   = color.RGBA{G: 255, A: 255}
	Red     = color.RGBA{R: 255, A: 255}
	Blue    = color.RGBA{B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, A: 255}
	Magenta = color.RGBA{R: 255, B: 255, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black   = color.RGBA{A: 255}
)

// accentLandmarks are drawn in yellow, all other landmarks in magenta.
var accentLandmarks = map[string]bool{
	"right_eye":   true,
	"mouth_right": true,
}

// DrawOptions controls DrawFaces. All slices are indexed by face and may be shorter than the face list.
type DrawOptions struct {
	// Colors per face. Faces without a color use Color.
	Colors []color.RGBA
	Color  color.RGBA

	Labels    []string
	Distances []float64

	// Threshold is printed in the header when non-zero.
	Threshold float64
}

// ParseColor resolves the named box colors.
func ParseColor(name string) (color.RGBA, error) {
	switch name {
	case "green", "":
		return Green, nil
	case "red":
		return Red, nil
	case "blue":
		return Blue, nil
	default:
		return color.RGBA{}, fmt.Errorf("unknown color %q", name)
	}
}

// DrawFaces returns a copy of img annotated with a header line, a box and a
// caption per face, and the face landmarks.
func DrawFaces(img image.Image, detected []faces.Face, opts DrawOptions) *image.RGBA {
	dst := toRGBA(img)

	if opts.Color == (color.RGBA{}) {
		opts.Color = Green
	}

	header := fmt.Sprintf("found %d faces", len(detected))
	if opts.Threshold != 0 {
		header = fmt.Sprintf("%s (threshold=%s)", header, strconv.FormatFloat(opts.Threshold, 'f', -1, 64))
	}
	drawText(dst, header, 25, 25, Green)

	for i, f := range detected {
		c := opts.Color
		if i < len(opts.Colors) {
			c = opts.Colors[i]
		}

		r := f.Rect()
		drawRect(dst, r, c, 1)
		drawText(dst, Caption(f.Score, i, opts), r.Min.X, r.Min.Y-7, c)

		for name, p := range f.Landmarks {
			lc := Magenta
			if accentLandmarks[name] {
				lc = Yellow
			}
			drawCircle(dst, int(p[0]), int(p[1]), 1, lc)
		}
	}

	return dst
}

// Caption is the text above face i: score, optional integer distance and optional quoted label.
func Caption(score float64, i int, opts DrawOptions) string {
	text := strconv.FormatFloat(math.Round(score*1e4)/1e4, 'f', -1, 64)
	if i < len(opts.Distances) {
		text = fmt.Sprintf("%s dist=%d", text, int(opts.Distances[i]))
	}
	if i < len(opts.Labels) {
		text = fmt.Sprintf("%s %q", text, opts.Labels[i])
	}
	return text
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// drawHLine draws a horizontal line on the image.
func drawHLine(dst *image.RGBA, x1, x2, y int, c color.RGBA) {
	bounds := dst.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= bounds.Min.X && x < bounds.Max.X {
			dst.SetRGBA(x, y, c)
		}
	}
}

// drawVLine draws a vertical line on the image.
func drawVLine(dst *image.RGBA, y1, y2, x int, c color.RGBA) {
	bounds := dst.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= bounds.Min.Y && y < bounds.Max.Y {
			dst.SetRGBA(x, y, c)
		}
	}
}

// drawRect draws a rectangle outline of the given line width.
func drawRect(dst *image.RGBA, r image.Rectangle, c color.RGBA, lineWidth int) {
	for w := 0; w < lineWidth; w++ {
		drawHLine(dst, r.Min.X, r.Max.X, r.Min.Y+w, c)
		drawHLine(dst, r.Min.X, r.Max.X, r.Max.Y-w, c)
		drawVLine(dst, r.Min.Y, r.Max.Y, r.Min.X+w, c)
		drawVLine(dst, r.Min.Y, r.Max.Y, r.Max.X-w, c)
	}
}

// drawCircle draws a circle outline with the midpoint algorithm.
func drawCircle(dst *image.RGBA, cx, cy, radius int, c color.RGBA) {
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(dst.Bounds()) {
			dst.SetRGBA(x, y, c)
		}
	}

	x, y := radius, 0
	e := 1 - radius
	for x >= y {
		set(cx+x, cy+y)
		set(cx+y, cy+x)
		set(cx-y, cy+x)
		set(cx-x, cy+y)
		set(cx-x, cy-y)
		set(cx-y, cy-x)
		set(cx+y, cy-x)
		set(cx+x, cy-y)
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

// drawText draws s with its baseline starting at (x, y).
func drawText(dst *image.RGBA, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textWidth returns the rendered width of s in pixels.
func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}
