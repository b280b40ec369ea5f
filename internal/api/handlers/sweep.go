package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/rfsweep/internal/parser"
	"github.com/RMahshie/rfsweep/internal/processing"
	"github.com/RMahshie/rfsweep/internal/repository"
	"github.com/RMahshie/rfsweep/internal/segment"
	"github.com/RMahshie/rfsweep/pkg/models"
)

// SweepHandler handles sweep-related HTTP requests
type SweepHandler struct {
	svc  processing.SweepService
	repo repository.SweepRepository
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(svc processing.SweepService, repo repository.SweepRepository) *SweepHandler {
	return &SweepHandler{
		svc:  svc,
		repo: repo,
	}
}

// CreateSweep parses an uploaded export and archives the result
func (h *SweepHandler) CreateSweep(ctx context.Context, req *models.CreateSweepRequest) (*models.SweepResponse, error) {
	log.Info().Str("filename", req.Body.Filename).Int("bytes", len(req.Body.Content)).Msg("Parsing uploaded sweep")

	result, err := h.svc.ParseContent(ctx, req.Body.Filename, []byte(req.Body.Content))
	if err != nil {
		kind := processing.ErrorKind(err)
		log.Warn().Str("filename", req.Body.Filename).Str("kind", kind).Err(err).Msg("Rejected sweep")
		if isParseError(err) {
			return nil, huma.Error422UnprocessableEntity(kind+": "+err.Error(), err)
		}
		return nil, huma.Error500InternalServerError("Failed to parse sweep", err)
	}

	if err := h.repo.StoreResult(ctx, result); err != nil {
		return nil, huma.Error500InternalServerError("Failed to store sweep", err)
	}

	log.Info().
		Str("sweepID", result.ID).
		Str("format", result.Format).
		Int("samples", result.Len()).
		Msg("Sweep stored")

	return &models.SweepResponse{Body: models.NewSweepResponseBody(result)}, nil
}

// GetSweep returns an archived sweep
func (h *SweepHandler) GetSweep(ctx context.Context, req *models.GetSweepRequest) (*models.SweepResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid sweep ID", err)
	}

	result, err := h.repo.GetResult(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, huma.Error404NotFound("Sweep not found", err)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load sweep", err)
	}

	return &models.SweepResponse{Body: models.NewSweepResponseBody(result)}, nil
}

// ListSweeps returns every archived sweep parsed from a source file
func (h *SweepHandler) ListSweeps(ctx context.Context, req *models.ListSweepsRequest) (*models.ListSweepsResponse, error) {
	results, err := h.repo.ListBySource(ctx, req.Source)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list sweeps", err)
	}

	resp := &models.ListSweepsResponse{}
	resp.Body.Sweeps = make([]models.SweepResponseBody, 0, len(results))
	for _, r := range results {
		resp.Body.Sweeps = append(resp.Body.Sweeps, models.NewSweepResponseBody(r))
	}
	return resp, nil
}

func isParseError(err error) bool {
	return errors.Is(err, parser.ErrUnrecognizedFormat) ||
		errors.Is(err, parser.ErrMalformedRow) ||
		errors.Is(err, segment.ErrInsufficientData)
}
