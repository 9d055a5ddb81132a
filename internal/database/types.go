package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/faceval/internal/detection"
)

// StoredFace is a cached gallery embedding pair, keyed by image hash and model.
type StoredFace struct {
	Hash      string // SHA-256 of the image bytes, hex encoded
	Model     string
	Label     string
	Front     []float32
	Mirror    []float32
	Dim       int
	CreatedAt time.Time
}

// EvaluationRun is a persisted detection evaluation report.
type EvaluationRun struct {
	ID        uuid.UUID
	CreatedAt time.Time
	PredDir   string
	TruthDir  string
	Report    detection.Report
}
