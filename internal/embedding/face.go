package embedding

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/kozaktomas/faceval/internal/facematch"
)

// EmbedPair computes the embeddings of img and of its mirror image.
func EmbedPair(ctx context.Context, net Network, img image.Image) (front, mirror facematch.Embedding, err error) {
	size := net.InputSize()

	blob, err := NewBlob(img, size)
	if err != nil {
		return nil, nil, fmt.Errorf("front blob: %w", err)
	}
	front, err = net.Embed(ctx, blob)
	if err != nil {
		return nil, nil, fmt.Errorf("front embedding: %w", err)
	}

	blob, err = NewBlob(Mirror(img), size)
	if err != nil {
		return nil, nil, fmt.Errorf("mirror blob: %w", err)
	}
	mirror, err = net.Embed(ctx, blob)
	if err != nil {
		return nil, nil, fmt.Errorf("mirror embedding: %w", err)
	}

	if len(front) != len(mirror) {
		return nil, nil, fmt.Errorf("network returned embeddings of different lengths (%d vs %d)", len(front), len(mirror))
	}

	return front, mirror, nil
}

// NewKnownFace embeds a labelled gallery face.
func NewKnownFace(ctx context.Context, net Network, img image.Image, label string, c color.RGBA) (facematch.KnownFace, error) {
	front, mirror, err := EmbedPair(ctx, net, img)
	if err != nil {
		return facematch.KnownFace{}, fmt.Errorf("known face %q: %w", label, err)
	}
	return facematch.KnownFace{
		Label:  label,
		Color:  c,
		Front:  front,
		Mirror: mirror,
		Image:  img,
	}, nil
}

// NewUnknownFace embeds a face that has no identity yet.
func NewUnknownFace(ctx context.Context, net Network, img image.Image) (*facematch.UnknownFace, error) {
	front, mirror, err := EmbedPair(ctx, net, img)
	if err != nil {
		return nil, fmt.Errorf("unknown face: %w", err)
	}
	return facematch.NewUnknownFace(front, mirror, img), nil
}
