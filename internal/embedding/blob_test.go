package embedding

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/kozaktomas/faceval/internal/facematch"
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

func TestNewBlob_Normalization(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 128, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 255, B: 127, A: 255})

	blob, err := NewBlob(img, image.Pt(2, 1))
	if err != nil {
		t.Fatalf("NewBlob failed: %v", err)
	}

	if blob.Shape != [4]int{1, 3, 1, 2} {
		t.Fatalf("expected shape [1 3 1 2], got %v", blob.Shape)
	}

	// NCHW, RGB planes.
	expected := []float32{
		(255 - 127.5) / 128, (0 - 127.5) / 128, // R
		(0 - 127.5) / 128, (255 - 127.5) / 128, // G
		(128 - 127.5) / 128, (127 - 127.5) / 128, // B
	}
	for i := range expected {
		if math.Abs(float64(blob.Data[i]-expected[i])) > 1e-6 {
			t.Errorf("Data[%d] = %v, want %v", i, blob.Data[i], expected[i])
		}
	}
}

func TestNewBlob_Resizes(t *testing.T) {
	img := createTestImage(300, 200, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	blob, err := NewBlob(img, DefaultInputSize)
	if err != nil {
		t.Fatalf("NewBlob failed: %v", err)
	}
	if len(blob.Data) != 3*112*112 {
		t.Fatalf("expected %d values, got %d", 3*112*112, len(blob.Data))
	}

	// A uniform image stays uniform after resizing.
	plane := 112 * 112
	wantR := float32((200 - 127.5) / 128)
	wantB := float32((50 - 127.5) / 128)
	if math.Abs(float64(blob.Data[plane/2]-wantR)) > 1e-6 {
		t.Errorf("red plane value = %v, want %v", blob.Data[plane/2], wantR)
	}
	if math.Abs(float64(blob.Data[2*plane+plane/2]-wantB)) > 1e-6 {
		t.Errorf("blue plane value = %v, want %v", blob.Data[2*plane+plane/2], wantB)
	}
}

func TestNewBlob_Invalid(t *testing.T) {
	if _, err := NewBlob(nil, DefaultInputSize); err == nil {
		t.Error("expected error for nil image")
	}
	if _, err := NewBlob(createTestImage(4, 4, color.White), image.Pt(0, 112)); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := NewBlob(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultInputSize); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestMirror(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 13, 11))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	img.Set(12, 10, color.RGBA{B: 255, A: 255})

	m := Mirror(img)
	if m.Bounds() != image.Rect(0, 0, 3, 1) {
		t.Fatalf("unexpected bounds %v", m.Bounds())
	}
	if got := m.RGBAAt(2, 0); got.R != 255 {
		t.Errorf("expected red pixel at the right edge, got %v", got)
	}
	if got := m.RGBAAt(0, 0); got.B != 255 {
		t.Errorf("expected blue pixel at the left edge, got %v", got)
	}
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(5, 7, color.White)); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	img, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 7 {
		t.Errorf("unexpected size %v", img.Bounds())
	}

	if _, err := DecodeImage([]byte("not an image")); err == nil {
		t.Error("expected error for invalid data")
	}
}

// fakeNetwork returns the first blob value and the blob size as the embedding.
type fakeNetwork struct {
	size  image.Point
	calls int
	err   error
}

func (f *fakeNetwork) InputSize() image.Point { return f.size }

func (f *fakeNetwork) Embed(_ context.Context, blob *Blob) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{blob.Data[0], float32(len(blob.Data))}, nil
}

func TestNewKnownFace(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})

	net := &fakeNetwork{size: image.Pt(2, 1)}
	green := color.RGBA{G: 255, A: 255}

	face, err := NewKnownFace(context.Background(), net, img, "alice", green)
	if err != nil {
		t.Fatalf("NewKnownFace failed: %v", err)
	}
	if net.calls != 2 {
		t.Errorf("expected 2 network calls, got %d", net.calls)
	}
	if face.Label != "alice" || face.Color != green {
		t.Errorf("unexpected face %+v", face)
	}
	// The mirrored image starts with the black pixel.
	if face.Front[0] <= 0 || face.Mirror[0] >= 0 {
		t.Errorf("expected front and mirror to differ, got %v and %v", face.Front, face.Mirror)
	}
}

func TestNewUnknownFace(t *testing.T) {
	net := &fakeNetwork{size: image.Pt(4, 4)}

	face, err := NewUnknownFace(context.Background(), net, createTestImage(8, 8, color.White))
	if err != nil {
		t.Fatalf("NewUnknownFace failed: %v", err)
	}
	if face.Label != facematch.UnknownLabel || face.Color != facematch.UnknownColor {
		t.Errorf("expected default label and color, got %q %v", face.Label, face.Color)
	}
	if len(face.Front) != 2 || face.Front[1] != 48 {
		t.Errorf("expected blob of 48 values, got %v", face.Front)
	}

	netErr := errors.New("server down")
	if _, err := NewUnknownFace(context.Background(), &fakeNetwork{size: image.Pt(4, 4), err: netErr}, createTestImage(8, 8, color.White)); !errors.Is(err, netErr) {
		t.Errorf("expected network error, got %v", err)
	}
}
