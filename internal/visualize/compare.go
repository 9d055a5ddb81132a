package visualize

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/faceval/internal/constants"
	"github.com/kozaktomas/faceval/internal/event"
	"github.com/kozaktomas/faceval/internal/facematch"
)

var log = event.Log

const (
	tileHeight    = 160
	tileGap       = 10
	headerHeight  = 44
	captionHeight = 56
	lineHeight    = 15
)

var background = color.RGBA{R: 32, G: 32, B: 32, A: 255}

// CompareStrip renders the known faces followed by the unknown face, each
// captioned with its label and combined distance.
func CompareStrip(in facematch.VisualizeInput) *image.RGBA {
	tiles := make([]image.Image, 0, len(in.Knowns)+1)
	for _, k := range in.Knowns {
		tiles = append(tiles, scaleToHeight(k.Image, tileHeight))
	}
	var unknownImg image.Image
	if in.Unknown != nil {
		unknownImg = in.Unknown.Image
	}
	tiles = append(tiles, scaleToHeight(unknownImg, tileHeight))

	width := tileGap
	for _, t := range tiles {
		width += t.Bounds().Dx() + tileGap
	}
	title := fmt.Sprintf("metric=%s", in.Metric)
	thr := fmt.Sprintf("threshold=%s", formatDistance(in.Threshold))
	width = max(width, textWidth(title)+2*tileGap, textWidth(thr)+2*tileGap)

	height := headerHeight + tileHeight + captionHeight
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	drawText(dst, title, tileGap, 16, White)
	drawText(dst, thr, tileGap, 16+lineHeight, White)

	x := tileGap
	for i, t := range tiles {
		r := image.Rect(x, headerHeight, x+t.Bounds().Dx(), headerHeight+t.Bounds().Dy())
		draw.Draw(dst, r, t, t.Bounds().Min, draw.Src)

		var lines []string
		var c color.RGBA
		if i < len(in.Knowns) {
			k := in.Knowns[i]
			c = k.Color
			lines = []string{k.Label}
			if i < len(in.Result.Distances) {
				lines = append(lines, formatDistance(in.Result.Distances[i]))
			}
		} else {
			label := facematch.UnknownLabel
			c = facematch.UnknownColor
			if in.Unknown != nil {
				label = in.Unknown.Label
				c = in.Unknown.Color
			}
			lines = []string{
				strconv.Quote(label),
				fmt.Sprintf("%d person", in.Result.Index+1),
				formatDistance(in.Result.Distance),
			}
		}

		drawRect(dst, r.Inset(-1), c, 1)
		for j, line := range lines {
			drawText(dst, line, x, headerHeight+tileHeight+lineHeight*(j+1), c)
		}

		x += t.Bounds().Dx() + tileGap
	}

	return dst
}

// formatDistance rounds to 7 decimals.
func formatDistance(d float64) string {
	return strconv.FormatFloat(math.Round(d*1e7)/1e7, 'f', -1, 64)
}

// scaleToHeight resizes img to the given height keeping the aspect ratio.
// A nil image becomes a blank square tile.
func scaleToHeight(img image.Image, height int) image.Image {
	if img == nil || img.Bounds().Empty() {
		blank := image.NewRGBA(image.Rect(0, 0, height, height))
		draw.Draw(blank, blank.Bounds(), image.NewUniform(Black), image.Point{}, draw.Src)
		return blank
	}

	bounds := img.Bounds()
	width := max(1, bounds.Dx()*height/bounds.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// MatchRenderer saves comparison strips for the faces of one source image.
type MatchRenderer struct {
	OutputDir string
	Stem      string
}

// NewMatchRenderer creates a renderer writing to outputDir, naming files after sourcePath.
func NewMatchRenderer(outputDir, sourcePath string) *MatchRenderer {
	base := filepath.Base(sourcePath)
	return &MatchRenderer{
		OutputDir: outputDir,
		Stem:      strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// FileName returns "<stem>_<faceIdx>_<label>.jpg". faceIdx is the position of
// the face among the faces kept for matching, so every face of an image gets
// its own file even when several share a label.
func (r *MatchRenderer) FileName(faceIdx int, label string) string {
	label = strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(label)
	return fmt.Sprintf("%s_%d_%s.jpg", r.Stem, faceIdx, label)
}

// Hook returns a facematch visualize callback for face faceIdx.
// When saved is not nil it receives the written path.
func (r *MatchRenderer) Hook(faceIdx int, saved *string) func(facematch.VisualizeInput) error {
	return func(in facematch.VisualizeInput) error {
		path, err := r.Save(faceIdx, in)
		if err != nil {
			return err
		}
		if saved != nil {
			*saved = path
		}
		return nil
	}
}

// Save renders the comparison strip and writes it as JPEG. It returns the written path.
func (r *MatchRenderer) Save(faceIdx int, in facematch.VisualizeInput) (string, error) {
	if err := os.MkdirAll(r.OutputDir, constants.OutputDirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(r.OutputDir, r.FileName(faceIdx, in.Result.Label))
	if err := SaveJPEG(path, CompareStrip(in)); err != nil {
		return "", err
	}

	log.Debugf("visualize: saved comparison %s", path)
	return path, nil
}

// SaveJPEG writes img to path as JPEG.
func SaveJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
