package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/rfsweep/internal/api/handlers"
	"github.com/RMahshie/rfsweep/internal/processing"
	"github.com/RMahshie/rfsweep/internal/repository"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, svc processing.SweepService, repo repository.SweepRepository) {
	sweepHandler := handlers.NewSweepHandler(svc, repo)

	huma.Register(api, huma.Operation{
		OperationID:   "createSweep",
		Method:        http.MethodPost,
		Path:          "/api/sweeps",
		Summary:       "Parse a sweep",
		Description:   "Parses an uploaded network analyzer export, derives its metrics and archives the result",
		Tags:          []string{"Sweeps"},
		DefaultStatus: http.StatusCreated,
	}, sweepHandler.CreateSweep)

	huma.Register(api, huma.Operation{
		OperationID: "getSweep",
		Method:      http.MethodGet,
		Path:        "/api/sweeps/{id}",
		Summary:     "Get a sweep",
		Description: "Returns an archived sweep with its derived metrics",
		Tags:        []string{"Sweeps"},
	}, sweepHandler.GetSweep)

	huma.Register(api, huma.Operation{
		OperationID: "listSweeps",
		Method:      http.MethodGet,
		Path:        "/api/sweeps",
		Summary:     "List sweeps by source",
		Description: "Returns archived sweeps parsed from the given file, newest first",
		Tags:        []string{"Sweeps"},
	}, sweepHandler.ListSweeps)
}
