package visualize

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette returns n evenly spaced, saturated colors.
func Palette(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}

	colors := make([]color.RGBA, n)
	for i := 0; i < n; i++ {
		hue := 360 * float64(i) / float64(n)
		r, g, b := colorful.Hsl(hue, 0.7, 0.5).Clamped().RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}
