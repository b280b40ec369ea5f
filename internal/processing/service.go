package processing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/rfsweep/internal/parser"
	"github.com/RMahshie/rfsweep/internal/repository"
	"github.com/RMahshie/rfsweep/internal/rfmath"
	"github.com/RMahshie/rfsweep/internal/segment"
	"github.com/RMahshie/rfsweep/internal/storage"
	"github.com/RMahshie/rfsweep/pkg/models"
)

// SweepService turns analyzer exports into FileResults
type SweepService interface {
	ParseContent(ctx context.Context, source string, content []byte) (*models.FileResult, error)
	ParseFile(ctx context.Context, path string) (*models.FileResult, error)
	ParseBatch(ctx context.Context, paths []string) *BatchResult
}

// Options tunes how files are interpreted
type Options struct {
	Units     parser.UnitScale
	Transform rfmath.Options
}

type sweepService struct {
	decoder    *parser.Decoder
	transform  rfmath.Options
	s3         storage.S3Service          // nil disables s3:// inputs
	repository repository.SweepRepository // nil disables archiving
}

// NewSweepService creates the parsing pipeline. s3Service and repo are optional.
func NewSweepService(opts Options, s3Service storage.S3Service, repo repository.SweepRepository) SweepService {
	return &sweepService{
		decoder:    parser.NewDecoder(opts.Units),
		transform:  opts.Transform,
		s3:         s3Service,
		repository: repo,
	}
}

// ParseContent sniffs, decodes and derives one file. Nothing is returned
// unless the whole file succeeds.
func (s *sweepService) ParseContent(ctx context.Context, source string, content []byte) (*models.FileResult, error) {
	format := parser.Classify(content)
	if format == parser.FormatUnrecognized {
		return nil, parser.ErrUnrecognizedFormat
	}

	decoded, err := s.decoder.Decode(content, format)
	if err != nil {
		return nil, err
	}

	result := &models.FileResult{
		ID:         uuid.New().String(),
		Source:     source,
		Format:     format.String(),
		Kind:       decoded.Kind,
		NumberKind: decoded.NumberKind,
		CreatedAt:  time.Now(),
	}

	switch decoded.Kind {
	case models.KindLoss:
		result.Loss = make([]models.LossRecord, len(decoded.Rows))
		for i, row := range decoded.Rows {
			m := rfmath.Transform(row.Primary, row.Secondary, s.transform)
			result.Loss[i] = models.LossRecord{
				FrequencyMHz:        row.FrequencyMHz,
				ReturnLossDB:        m.LogMagDB,
				VSWR:                m.VSWR,
				MismatchLossDB:      m.MismatchLossDB,
				Reflection:          m.Reflection,
				NormalizedImpedance: m.NormalizedImpedance,
			}
		}
	case models.KindEfficiency:
		blocks, spacing, err := segment.SegmentAdaptive(decoded.Samples)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("file", source).
			Float64("mean_gap_mhz", spacing.MeanGap).
			Float64("stdev_gap_mhz", spacing.StdevGap).
			Int("blocks", len(blocks)).
			Msg("Segmented efficiency sweep")
		result.Efficiency = blocks
	}

	return result, nil
}

// ParseFile loads a local path or an s3:// URI and parses it
func (s *sweepService) ParseFile(ctx context.Context, path string) (*models.FileResult, error) {
	content, err := s.load(ctx, path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	result, err := s.ParseContent(ctx, path, content)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return result, nil
}

// ParseBatch parses every path in order. A failing file is recorded and
// the rest still run.
func (s *sweepService) ParseBatch(ctx context.Context, paths []string) *BatchResult {
	batch := &BatchResult{}

	for _, path := range paths {
		result, err := s.ParseFile(ctx, path)
		if err != nil {
			var fe *FileError
			if !errors.As(err, &fe) {
				fe = &FileError{Path: path, Err: err}
			}
			log.Error().Str("file", path).Str("kind", ErrorKind(err)).Err(fe.Err).Msg("Failed to parse file")
			batch.Errors = append(batch.Errors, fe)
			continue
		}

		log.Info().
			Str("file", path).
			Str("format", result.Format).
			Str("kind", string(result.Kind)).
			Int("samples", result.Len()).
			Msg("Parsed file")

		if s.repository != nil {
			if err := s.repository.StoreResult(ctx, result); err != nil {
				log.Warn().Str("file", path).Err(err).Msg("Failed to archive result")
			}
		}

		batch.Results = append(batch.Results, result)
	}

	return batch
}

func (s *sweepService) load(ctx context.Context, path string) ([]byte, error) {
	if bucket, key, ok := storage.ParseURI(path); ok {
		if s.s3 == nil {
			return nil, fmt.Errorf("%w: %s", ErrStorageDisabled, path)
		}
		return s.s3.DownloadFile(ctx, bucket, key)
	}
	return os.ReadFile(path)
}
