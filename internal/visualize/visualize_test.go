package visualize

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/faceval/internal/detection"
	"github.com/kozaktomas/faceval/internal/facematch"
	"github.com/kozaktomas/faceval/internal/faces"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testFace() faces.Face {
	return faces.Face{
		Score: 0.99912,
		Area:  [4]float64{10, 20, 70, 100},
		Landmarks: map[string][2]float64{
			"right_eye": {30, 50},
			"nose":      {42, 65},
		},
	}
}

func TestDrawFaces(t *testing.T) {
	src := createTestImage(200, 150, color.RGBA{A: 255})
	blue := color.RGBA{B: 255, A: 255}

	dst := DrawFaces(src, []faces.Face{testFace()}, DrawOptions{Colors: []color.RGBA{blue}})

	if got := dst.RGBAAt(10, 20); got != blue {
		t.Errorf("expected box corner in face color, got %v", got)
	}
	if got := dst.RGBAAt(70, 100); got != blue {
		t.Errorf("expected opposite box corner in face color, got %v", got)
	}
	if got := dst.RGBAAt(31, 50); got != Yellow {
		t.Errorf("expected right_eye landmark in yellow, got %v", got)
	}
	if got := dst.RGBAAt(43, 65); got != Magenta {
		t.Errorf("expected nose landmark in magenta, got %v", got)
	}
	if got := src.RGBAAt(10, 20); got != (color.RGBA{A: 255}) {
		t.Error("DrawFaces() must not modify the source image")
	}
}

func TestDrawFaces_DefaultColor(t *testing.T) {
	dst := DrawFaces(createTestImage(200, 150, color.RGBA{A: 255}), []faces.Face{testFace()}, DrawOptions{})
	if got := dst.RGBAAt(10, 60); got != Green {
		t.Errorf("expected green box without colors, got %v", got)
	}

	dst = DrawFaces(createTestImage(200, 150, color.RGBA{A: 255}), []faces.Face{testFace()}, DrawOptions{Color: Red})
	if got := dst.RGBAAt(10, 60); got != Red {
		t.Errorf("expected red box, got %v", got)
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name     string
		opts     DrawOptions
		expected string
	}{
		{"score only", DrawOptions{}, "0.9991"},
		{"with distance", DrawOptions{Distances: []float64{412.87}}, "0.9991 dist=412"},
		{"with label", DrawOptions{Labels: []string{"alice"}}, `0.9991 "alice"`},
		{"full", DrawOptions{Distances: []float64{17.9}, Labels: []string{"bob"}}, `0.9991 dist=17 "bob"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(0.99912, 0, tt.opts); got != tt.expected {
				t.Errorf("Caption() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name     string
		expected color.RGBA
		wantErr  bool
	}{
		{"green", Green, false},
		{"red", Red, false},
		{"blue", Blue, false},
		{"", Green, false},
		{"purple", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestPalette(t *testing.T) {
	if Palette(0) != nil {
		t.Error("expected nil palette for n=0")
	}

	colors := Palette(5)
	if len(colors) != 5 {
		t.Fatalf("expected 5 colors, got %d", len(colors))
	}
	seen := make(map[color.RGBA]bool)
	for _, c := range colors {
		if c.A != 255 {
			t.Errorf("expected opaque color, got %v", c)
		}
		if seen[c] {
			t.Errorf("duplicate color %v", c)
		}
		seen[c] = true
	}
}

func TestCompareStrip(t *testing.T) {
	in := facematch.VisualizeInput{
		Unknown: &facematch.UnknownFace{Label: "alice", Color: Green, Image: createTestImage(80, 80, color.White)},
		Knowns: []facematch.KnownFace{
			{Label: "alice", Color: Green, Image: createTestImage(40, 80, color.White)},
			{Label: "bob", Color: Blue},
		},
		Result: facematch.MatchResult{Label: "alice", Distance: 12.5, Index: 0, Matched: true, Distances: []float64{12.5, 900}},
		Metric: facematch.SqEuclidean,
	}

	strip := CompareStrip(in)

	// Tiles: 80 (alice, scaled to height 160), 160 (blank bob), 160 (unknown).
	wantWidth := tileGap + 80 + tileGap + 160 + tileGap + 160 + tileGap
	if strip.Bounds().Dx() != wantWidth {
		t.Errorf("strip width = %d, want %d", strip.Bounds().Dx(), wantWidth)
	}
	if strip.Bounds().Dy() != headerHeight+tileHeight+captionHeight {
		t.Errorf("unexpected strip height %d", strip.Bounds().Dy())
	}
}

func TestMatchRenderer_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	r := NewMatchRenderer(dir, "/photos/party.jpg")

	if got := r.FileName(2, "jan/novak"); got != "party_2_jan_novak.jpg" {
		t.Errorf("FileName() = %q", got)
	}

	in := facematch.VisualizeInput{
		Unknown: facematch.NewUnknownFace(nil, nil, createTestImage(20, 20, color.White)),
		Knowns:  []facematch.KnownFace{{Label: "alice", Color: Green, Image: createTestImage(20, 20, color.White)}},
		Result:  facematch.MatchResult{Label: facematch.UnknownLabel, Distance: 999, Distances: []float64{999}},
		Metric:  facematch.Cosine,
	}

	var saved string
	if err := r.Hook(1, &saved)(in); err != nil {
		t.Fatalf("Hook() error = %v", err)
	}

	path := filepath.Join(dir, "party_1_unknown.jpg")
	if saved != path {
		t.Errorf("Hook() saved path = %q, want %q", saved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}

	if err := r.Hook(2, nil)(in); err != nil {
		t.Fatalf("Hook() without path error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "party_2_unknown.jpg")); err != nil {
		t.Errorf("expected second comparison to exist: %v", err)
	}
}

func TestSavePRCurves(t *testing.T) {
	preds := []detection.Detection{
		{ImageID: "a", ClassID: 0, Score: 0.9, Box: detection.Box{0, 0, 10, 10}},
		{ImageID: "a", ClassID: 0, Score: 0.5, Box: detection.Box{50, 50, 60, 60}},
	}
	truths := []detection.GroundTruth{
		{ImageID: "a", ClassID: 0, Box: detection.Box{0, 0, 10, 10}},
		{ImageID: "a", ClassID: 1, Box: detection.Box{0, 0, 10, 10}},
	}
	report := detection.Evaluate(preds, truths, 0.5, detection.Corners, 2)

	path := filepath.Join(t.TempDir(), "pr.png")
	if err := SavePRCurves(report, path); err != nil {
		t.Fatalf("SavePRCurves() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected plot file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty plot file")
	}
}
