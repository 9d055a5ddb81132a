package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/faceval/internal/database"
)

// GalleryRepository provides PostgreSQL-backed storage of gallery embeddings.
type GalleryRepository struct {
	pool *Pool
}

// NewGalleryRepository creates a new PostgreSQL gallery repository.
func NewGalleryRepository(pool *Pool) *GalleryRepository {
	return &GalleryRepository{pool: pool}
}

// Get retrieves a face by image hash and model, returns nil if not found.
func (r *GalleryRepository) Get(ctx context.Context, hash, model string) (*database.StoredFace, error) {
	query := `
		SELECT image_hash, model, label, front, mirror, dim, created_at
		FROM known_faces
		WHERE image_hash = $1 AND model = $2
	`

	face, err := scanFace(r.pool.QueryRow(ctx, query, hash, model))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get known face: %w", err)
	}
	return face, nil
}

// List returns every face computed with the given model, ordered by label.
func (r *GalleryRepository) List(ctx context.Context, model string) ([]database.StoredFace, error) {
	query := `
		SELECT image_hash, model, label, front, mirror, dim, created_at
		FROM known_faces
		WHERE model = $1
		ORDER BY label, image_hash
	`

	rows, err := r.pool.Query(ctx, query, model)
	if err != nil {
		return nil, fmt.Errorf("query known faces: %w", err)
	}
	defer rows.Close()

	var faces []database.StoredFace
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan known face: %w", err)
		}
		faces = append(faces, *face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known faces: %w", err)
	}
	return faces, nil
}

// Count returns the total number of faces stored.
func (r *GalleryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM known_faces").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count known faces: %w", err)
	}
	return count, nil
}

// Save stores a face, replacing an existing entry with the same hash and model.
func (r *GalleryRepository) Save(ctx context.Context, face database.StoredFace) error {
	if len(face.Front) == 0 || len(face.Front) != len(face.Mirror) {
		return fmt.Errorf("invalid embedding pair for %s (%d vs %d)", face.Label, len(face.Front), len(face.Mirror))
	}
	dim := face.Dim
	if dim == 0 {
		dim = len(face.Front)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO known_faces (image_hash, model, label, front, mirror, dim, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (image_hash, model)
		DO UPDATE SET label = EXCLUDED.label, front = EXCLUDED.front, mirror = EXCLUDED.mirror,
		              dim = EXCLUDED.dim, created_at = NOW()
	`, face.Hash, face.Model, face.Label,
		pgvector.NewVector(face.Front), pgvector.NewVector(face.Mirror), dim)
	if err != nil {
		return fmt.Errorf("save known face: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFace(row rowScanner) (*database.StoredFace, error) {
	var face database.StoredFace
	var front, mirror pgvector.Vector
	if err := row.Scan(&face.Hash, &face.Model, &face.Label, &front, &mirror, &face.Dim, &face.CreatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap, sql.ErrNoRows must stay comparable
	}
	face.Front = front.Slice()
	face.Mirror = mirror.Slice()
	return &face, nil
}
