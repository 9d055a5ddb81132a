// Package constants provides shared constants used across the codebase.
package constants

// Embedding server defaults
const (
	// DefaultEmbeddingURL is used when EMBEDDING_URL is not set
	DefaultEmbeddingURL = "http://localhost:8000"

	// DefaultEmbeddingModel is used when EMBEDDING_MODEL is not set
	DefaultEmbeddingModel = "R100_Glint360K"
)

// Output constants
const (
	// DefaultOutputDir receives annotated images and comparison strips
	DefaultOutputDir = "temp"

	// OutputDirPerm is the permission of created output directories
	OutputDirPerm = 0750

	// JPEGQuality is used for every written JPEG
	JPEGQuality = 85
)

// Storage constants
const (
	// RunListLimit is the default number of evaluation runs listed
	RunListLimit = 20
)
