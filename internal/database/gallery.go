package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"

	"github.com/kozaktomas/faceval/internal/embedding"
	"github.com/kozaktomas/faceval/internal/event"
	"github.com/kozaktomas/faceval/internal/facematch"
)

var log = event.Log

// HashImage returns the hex encoded SHA-256 of the raw image bytes.
func HashImage(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// KnownFace returns the gallery face for the given image, embedding it with net
// only when the store has no entry for the image hash and model.
// The stored label is replaced by label when they differ.
func KnownFace(
	ctx context.Context, store GalleryStore, net embedding.Network, model string,
	data []byte, img image.Image, label string, c color.RGBA,
) (facematch.KnownFace, bool, error) {
	hash := HashImage(data)

	stored, err := store.Get(ctx, hash, model)
	if err != nil {
		return facematch.KnownFace{}, false, fmt.Errorf("gallery lookup %s: %w", label, err)
	}
	if stored != nil && len(stored.Front) > 0 && len(stored.Front) == len(stored.Mirror) {
		if stored.Label != label {
			stored.Label = label
			if err := store.Save(ctx, *stored); err != nil {
				return facematch.KnownFace{}, false, fmt.Errorf("gallery relabel %s: %w", label, err)
			}
		}
		log.Debugf("gallery: cache hit for %s (%s)", label, hash[:12])
		return facematch.KnownFace{
			Label:  label,
			Color:  c,
			Front:  stored.Front,
			Mirror: stored.Mirror,
			Image:  img,
		}, true, nil
	}

	face, err := embedding.NewKnownFace(ctx, net, img, label, c)
	if err != nil {
		return facematch.KnownFace{}, false, err
	}

	err = store.Save(ctx, StoredFace{
		Hash:   hash,
		Model:  model,
		Label:  label,
		Front:  face.Front,
		Mirror: face.Mirror,
		Dim:    len(face.Front),
	})
	if err != nil {
		return facematch.KnownFace{}, false, fmt.Errorf("gallery save %s: %w", label, err)
	}

	log.Debugf("gallery: embedded %s (%s)", label, hash[:12])
	return face, false, nil
}
