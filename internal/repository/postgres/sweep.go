package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/RMahshie/rfsweep/internal/repository"
	"github.com/RMahshie/rfsweep/pkg/models"
)

// PostgresSweepRepository implements SweepRepository for PostgreSQL
type PostgresSweepRepository struct {
	db *sql.DB
}

// NewPostgresSweepRepository creates a new PostgreSQL sweep repository
func NewPostgresSweepRepository(db *sql.DB) repository.SweepRepository {
	return &PostgresSweepRepository{db: db}
}

// payload is the JSONB form of a result's samples. Values are stored as
// strconv strings so NaN and ±Inf survive the round trip.
type payload struct {
	// Loss rows: frequency, return loss, vswr, mismatch[, z real, z imag[, Γ real, Γ imag]]
	Loss [][]string `json:"loss,omitempty"`
	// Efficiency blocks of (frequency, efficiency) pairs
	Efficiency [][][2]string `json:"efficiency,omitempty"`
}

// StoreResult inserts a parsed sweep
func (r *PostgresSweepRepository) StoreResult(ctx context.Context, result *models.FileResult) error {
	data, err := json.Marshal(encodePayload(result))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO sweeps (id, source, format, kind, number_kind, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		result.ID,
		result.Source,
		result.Format,
		string(result.Kind),
		string(result.NumberKind),
		string(data),
		result.CreatedAt)

	return err
}

// GetResult retrieves a sweep by ID
func (r *PostgresSweepRepository) GetResult(ctx context.Context, id uuid.UUID) (*models.FileResult, error) {
	query := `
		SELECT id, source, format, kind, number_kind, payload, created_at
		FROM sweeps
		WHERE id = $1`

	result, err := scanResult(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListBySource retrieves sweeps parsed from source, newest first
func (r *PostgresSweepRepository) ListBySource(ctx context.Context, source string) ([]*models.FileResult, error) {
	query := `
		SELECT id, source, format, kind, number_kind, payload, created_at
		FROM sweeps
		WHERE source = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.FileResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*models.FileResult, error) {
	var result models.FileResult
	var kind, numberKind string
	var data []byte

	err := row.Scan(
		&result.ID,
		&result.Source,
		&result.Format,
		&kind,
		&numberKind,
		&data,
		&result.CreatedAt)
	if err != nil {
		return nil, err
	}

	result.Kind = models.MeasurementKind(kind)
	result.NumberKind = models.NumberKind(numberKind)

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if err := decodePayload(&p, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func encodePayload(result *models.FileResult) payload {
	var p payload
	for _, rec := range result.Loss {
		row := []string{
			formatFloat(rec.FrequencyMHz),
			formatFloat(rec.ReturnLossDB),
			formatFloat(rec.VSWR),
			formatFloat(rec.MismatchLossDB),
		}
		if z := rec.NormalizedImpedance; z != nil {
			row = append(row, formatFloat(real(*z)), formatFloat(imag(*z)))
			if g := rec.Reflection; g != nil {
				row = append(row, formatFloat(real(*g)), formatFloat(imag(*g)))
			}
		}
		p.Loss = append(p.Loss, row)
	}
	for _, block := range result.Efficiency {
		pairs := make([][2]string, len(block))
		for i, s := range block {
			pairs[i] = [2]string{formatFloat(s.FrequencyMHz), formatFloat(s.EfficiencyDB)}
		}
		p.Efficiency = append(p.Efficiency, pairs)
	}
	return p
}

func decodePayload(p *payload, result *models.FileResult) error {
	for _, row := range p.Loss {
		if len(row) != 4 && len(row) != 6 && len(row) != 8 {
			return fmt.Errorf("corrupt loss row with %d values", len(row))
		}
		vals, err := parseFloats(row)
		if err != nil {
			return err
		}
		rec := models.LossRecord{
			FrequencyMHz:   vals[0],
			ReturnLossDB:   vals[1],
			VSWR:           vals[2],
			MismatchLossDB: vals[3],
		}
		if len(vals) >= 6 {
			z := complex(vals[4], vals[5])
			rec.NormalizedImpedance = &z
		}
		if len(vals) == 8 {
			g := complex(vals[6], vals[7])
			rec.Reflection = &g
		}
		result.Loss = append(result.Loss, rec)
	}
	for _, pairs := range p.Efficiency {
		block := make(models.EfficiencyBlock, len(pairs))
		for i, pair := range pairs {
			vals, err := parseFloats(pair[:])
			if err != nil {
				return err
			}
			block[i] = models.EfficiencySample{FrequencyMHz: vals[0], EfficiencyDB: vals[1]}
		}
		result.Efficiency = append(result.Efficiency, block)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(in []string) ([]float64, error) {
	out := make([]float64, len(in))
	for i, s := range in {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt stored value %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
