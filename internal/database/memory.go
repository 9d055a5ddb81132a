package database

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryGallery is an in-memory GalleryStore used when no database is configured.
type MemoryGallery struct {
	mu    sync.RWMutex
	faces map[string]StoredFace

	// Error injection
	GetError  error
	SaveError error
}

// NewMemoryGallery creates an empty in-memory gallery
func NewMemoryGallery() *MemoryGallery {
	return &MemoryGallery{
		faces: make(map[string]StoredFace),
	}
}

func memoryKey(hash, model string) string {
	return model + "/" + hash
}

// Get retrieves a face by image hash and model
func (m *MemoryGallery) Get(ctx context.Context, hash, model string) (*StoredFace, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	face, ok := m.faces[memoryKey(hash, model)]
	if !ok {
		return nil, nil
	}
	return &face, nil
}

// List returns every face of a model ordered by label, then hash
func (m *MemoryGallery) List(ctx context.Context, model string) ([]StoredFace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []StoredFace
	for _, face := range m.faces {
		if face.Model == model {
			result = append(result, face)
		}
	}
	slices.SortFunc(result, func(a, b StoredFace) int {
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return strings.Compare(a.Hash, b.Hash)
	})
	return result, nil
}

// Count returns the total number of faces
func (m *MemoryGallery) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.faces), nil
}

// Save stores a face, replacing any entry with the same hash and model
func (m *MemoryGallery) Save(ctx context.Context, face StoredFace) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if face.CreatedAt.IsZero() {
		face.CreatedAt = time.Now()
	}
	if face.Dim == 0 {
		face.Dim = len(face.Front)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces[memoryKey(face.Hash, face.Model)] = face
	return nil
}
