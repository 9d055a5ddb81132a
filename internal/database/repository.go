package database

import (
	"context"

	"github.com/google/uuid"
)

// GalleryReader provides read-only access to cached gallery embeddings
type GalleryReader interface {
	// Get retrieves a face by image hash and model, returns nil if not found
	Get(ctx context.Context, hash, model string) (*StoredFace, error)
	// List returns every face computed with the given model, ordered by label
	List(ctx context.Context, model string) ([]StoredFace, error)
	// Count returns the total number of stored faces
	Count(ctx context.Context) (int, error)
}

// GalleryStore provides read and write access to cached gallery embeddings
type GalleryStore interface {
	GalleryReader

	// Save stores a face, replacing an existing entry with the same hash and model
	Save(ctx context.Context, face StoredFace) error
}

// RunStore persists detection evaluation runs
type RunStore interface {
	// SaveRun stores a run, the ID must be set by the caller
	SaveRun(ctx context.Context, run EvaluationRun) error
	// GetRun retrieves a run by ID, returns nil if not found
	GetRun(ctx context.Context, id uuid.UUID) (*EvaluationRun, error)
	// ListRuns returns the most recent runs first
	ListRuns(ctx context.Context, limit int) ([]EvaluationRun, error)
}
