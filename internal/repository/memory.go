package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/RMahshie/rfsweep/pkg/models"
	"github.com/google/uuid"
)

// MemorySweepRepository keeps results in process memory. It backs the
// server when no database is configured.
type MemorySweepRepository struct {
	mu      sync.RWMutex
	results map[string]*models.FileResult
}

// NewMemorySweepRepository creates an empty in-memory repository
func NewMemorySweepRepository() *MemorySweepRepository {
	return &MemorySweepRepository{results: make(map[string]*models.FileResult)}
}

// StoreResult saves a result under its ID
func (r *MemorySweepRepository) StoreResult(ctx context.Context, result *models.FileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.ID] = result
	return nil
}

// GetResult retrieves a result by ID
func (r *MemorySweepRepository) GetResult(ctx context.Context, id uuid.UUID) (*models.FileResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[id.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return result, nil
}

// ListBySource returns every result parsed from source, newest first
func (r *MemorySweepRepository) ListBySource(ctx context.Context, source string) ([]*models.FileResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.FileResult
	for _, result := range r.results {
		if result.Source == source {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
