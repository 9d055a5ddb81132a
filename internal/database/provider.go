package database

import (
	"context"
	"fmt"
	"sync"
)

var (
	postgresGalleryStore func() GalleryStore
	postgresRunStore     func() RunStore
	postgresInitialized  bool

	memoryOnce    sync.Once
	memoryGallery *MemoryGallery
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(gallery func() GalleryStore, runs func() RunStore) {
	postgresGalleryStore = gallery
	postgresRunStore = runs
	postgresInitialized = true
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	return postgresInitialized
}

// GetGalleryStore returns the PostgreSQL gallery when a database is configured,
// otherwise a process-wide in-memory gallery.
func GetGalleryStore(ctx context.Context) (GalleryStore, error) {
	if !postgresInitialized {
		memoryOnce.Do(func() {
			memoryGallery = NewMemoryGallery()
		})
		return memoryGallery, nil
	}
	if postgresGalleryStore == nil {
		return nil, fmt.Errorf("PostgreSQL gallery store not registered")
	}
	return postgresGalleryStore(), nil
}

// GetRunStore returns a RunStore from the PostgreSQL backend
func GetRunStore(ctx context.Context) (RunStore, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresRunStore == nil {
		return nil, fmt.Errorf("PostgreSQL run store not registered")
	}
	return postgresRunStore(), nil
}
