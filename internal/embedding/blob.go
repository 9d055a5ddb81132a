// Package embedding turns face images into embeddings through a pretrained
// recognition network.
package embedding

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// BlobScale and BlobMean match the preprocessing the recognition network was trained with.
	BlobScale = 1.0 / 128.0
	BlobMean  = 127.5
)

// DefaultInputSize is the input size of the R100 Glint360K network.
var DefaultInputSize = image.Pt(112, 112)

// Blob is a single network input in NCHW layout with RGB channel order.
type Blob struct {
	Shape [4]int    `json:"shape"`
	Data  []float32 `json:"data"`
}

// NewBlob resizes img to size with bilinear interpolation and converts it to
// a normalized blob: value = (pixel - 127.5) / 128.
func NewBlob(img image.Image, size image.Point) (*Blob, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("invalid blob size %v", size)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}

	resized := resizeImage(img, size.X, size.Y)

	w, h := size.X, size.Y
	plane := w * h
	data := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := resized.PixOffset(x, y)
			px := resized.Pix[off : off+3 : off+3]
			i := y*w + x
			data[i] = float32((float64(px[0]) - BlobMean) * BlobScale)
			data[plane+i] = float32((float64(px[1]) - BlobMean) * BlobScale)
			data[2*plane+i] = float32((float64(px[2]) - BlobMean) * BlobScale)
		}
	}

	return &Blob{Shape: [4]int{1, 3, h, w}, Data: data}, nil
}

// Mirror returns a horizontally flipped copy of img.
func Mirror(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.X-1-x, y-b.Min.Y, img.At(x, y))
		}
	}
	return dst
}

// resizeImage scales an image to the specified dimensions.
func resizeImage(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// DecodeImage decodes JPEG, PNG, GIF, BMP or WebP data.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// LoadImage reads and decodes an image file. The raw bytes are returned as well
// so callers can fingerprint the file.
func LoadImage(path string) (image.Image, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, data, nil
}
