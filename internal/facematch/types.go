// Package facematch assigns identity labels to unknown faces by comparing
// their embeddings with a gallery of known faces.
package facematch

import (
	"errors"
	"image"
	"image/color"
)

// ErrInvalidInput is returned when a match cannot be computed from the given faces or options.
var ErrInvalidInput = errors.New("invalid input")

// UnknownLabel is the label every unknown face starts with.
const UnknownLabel = "unknown"

// UnknownColor is the display color of a face without identity.
var UnknownColor = color.RGBA{R: 255, A: 255}

// Embedding is the fixed-length vector the network produces for one face image.
type Embedding []float32

// Float64 returns a float64 copy of the embedding.
func (e Embedding) Float64() []float64 {
	out := make([]float64, len(e))
	for i, v := range e {
		out[i] = float64(v)
	}
	return out
}

// Metric is the distance function used to compare embeddings.
type Metric string

const (
	SqEuclidean Metric = "sqeuclidean"
	Euclidean   Metric = "euclidean"
	Cosine      Metric = "cosine"
)

// Mode selects how the four pairwise distances of a known face are combined.
type Mode string

const (
	ModeMean Mode = "mean"
	ModeSum  Mode = "sum"
)

// KnownFace is a labelled gallery entry. It is not modified after construction.
type KnownFace struct {
	Label  string
	Color  color.RGBA
	Front  Embedding
	Mirror Embedding
	Image  image.Image
}

// UnknownFace is a face waiting for an identity. Match overwrites Label and
// Color when a known face is close enough.
type UnknownFace struct {
	Label  string
	Color  color.RGBA
	Front  Embedding
	Mirror Embedding
	Image  image.Image
}

// NewUnknownFace creates an unknown face with the default label and color.
func NewUnknownFace(front, mirror Embedding, img image.Image) *UnknownFace {
	return &UnknownFace{
		Label:  UnknownLabel,
		Color:  UnknownColor,
		Front:  front,
		Mirror: mirror,
		Image:  img,
	}
}

// MatchOptions controls a single Match call.
type MatchOptions struct {
	Metric    Metric
	Threshold float64
	Mode      Mode

	// UnmatchedLabel, when set, is written to the unknown face if no known
	// face is within the threshold. When nil the current label is kept.
	UnmatchedLabel *string

	// Visualize is called after matching when set.
	Visualize func(VisualizeInput) error
}

// DefaultMatchOptions returns squared euclidean distance averaged over the
// four pairs with the tuned threshold of 450.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Metric:    SqEuclidean,
		Threshold: 450,
		Mode:      ModeMean,
	}
}

// MatchResult describes the nearest known face.
type MatchResult struct {
	Label     string    `json:"label"`
	Distance  float64   `json:"distance"`
	Index     int       `json:"index"`
	Matched   bool      `json:"matched"`
	Distances []float64 `json:"distances"`
}

// VisualizeInput is everything a renderer needs to draw a match comparison.
type VisualizeInput struct {
	Unknown   *UnknownFace
	Knowns    []KnownFace
	Result    MatchResult
	Metric    Metric
	Threshold float64
}
