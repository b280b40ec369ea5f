package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/rfsweep/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no sweep matches the lookup
var ErrNotFound = errors.New("sweep not found")

// SweepRepository defines the interface for archived sweep results
type SweepRepository interface {
	StoreResult(ctx context.Context, result *models.FileResult) error
	GetResult(ctx context.Context, id uuid.UUID) (*models.FileResult, error)
	ListBySource(ctx context.Context, source string) ([]*models.FileResult, error)
}
