package postgres

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RMahshie/rfsweep/internal/repository"
	"github.com/RMahshie/rfsweep/pkg/models"
)

func TestPayload_PreservesNonFiniteValues(t *testing.T) {
	z := complex(math.Inf(1), math.NaN())
	in := &models.FileResult{
		Kind: models.KindLoss,
		Loss: []models.LossRecord{
			{FrequencyMHz: 700, ReturnLossDB: math.Inf(1), VSWR: math.NaN(), MismatchLossDB: -0.5, NormalizedImpedance: &z},
			{FrequencyMHz: 710, ReturnLossDB: -6, VSWR: 3, MismatchLossDB: -1.26},
		},
		Efficiency: []models.EfficiencyBlock{{{FrequencyMHz: 824, EfficiencyDB: -2.5}}},
	}

	p := encodePayload(in)
	var out models.FileResult
	require.NoError(t, decodePayload(&p, &out))

	require.Len(t, out.Loss, 2)
	assert.True(t, math.IsInf(out.Loss[0].ReturnLossDB, 1))
	assert.True(t, math.IsNaN(out.Loss[0].VSWR))
	require.NotNil(t, out.Loss[0].NormalizedImpedance)
	assert.True(t, math.IsInf(real(*out.Loss[0].NormalizedImpedance), 1))
	assert.Nil(t, out.Loss[1].NormalizedImpedance)
	assert.Equal(t, -1.26, out.Loss[1].MismatchLossDB)
	assert.Equal(t, in.Efficiency, out.Efficiency)
}

func TestPayload_KeepsOpenCircuitReflection(t *testing.T) {
	g := complex(1, 0)
	z := complex(math.NaN(), math.NaN())
	in := &models.FileResult{
		Kind: models.KindLoss,
		Loss: []models.LossRecord{{FrequencyMHz: 700, ReturnLossDB: 0, VSWR: math.Inf(1), MismatchLossDB: math.Inf(-1), Reflection: &g, NormalizedImpedance: &z}},
	}

	p := encodePayload(in)
	require.Len(t, p.Loss[0], 8)

	var out models.FileResult
	require.NoError(t, decodePayload(&p, &out))
	require.NotNil(t, out.Loss[0].Reflection)
	assert.Equal(t, g, *out.Loss[0].Reflection)
	assert.True(t, math.IsNaN(real(*out.Loss[0].NormalizedImpedance)))
}

func TestDecodePayload_ImpedanceOnlyRows(t *testing.T) {
	var out models.FileResult
	require.NoError(t, decodePayload(&payload{Loss: [][]string{{"700", "-6", "3", "-1.26", "2", "1"}}}, &out))
	require.NotNil(t, out.Loss[0].NormalizedImpedance)
	assert.Equal(t, complex(2, 1), *out.Loss[0].NormalizedImpedance)
	assert.Nil(t, out.Loss[0].Reflection)
}

func TestDecodePayload_RejectsCorruptRows(t *testing.T) {
	var out models.FileResult
	assert.Error(t, decodePayload(&payload{Loss: [][]string{{"1", "2"}}}, &out))
	assert.Error(t, decodePayload(&payload{Loss: [][]string{{"1", "2", "x", "4"}}}, &out))
}

// TestPostgresSweepRepository_Integration migrates a fresh database and
// round-trips results through it
func TestPostgresSweepRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("rfsweep_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateUp(db), "second run is a no-op")

	version, dirty, err := MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	repo := NewPostgresSweepRepository(db)

	z := complex(1.2, -0.4)
	older := &models.FileResult{
		ID:         uuid.New().String(),
		Source:     "lab/ant1.s1p",
		Format:     "touchstone",
		Kind:       models.KindLoss,
		NumberKind: models.NumberComplex,
		Loss: []models.LossRecord{
			{FrequencyMHz: 700, ReturnLossDB: -6.99, VSWR: 2.6, MismatchLossDB: -0.97, NormalizedImpedance: &z},
		},
		CreatedAt: time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond),
	}
	newer := &models.FileResult{
		ID:         uuid.New().String(),
		Source:     "lab/ant1.s1p",
		Format:     "efficiency",
		Kind:       models.KindEfficiency,
		NumberKind: models.NumberNone,
		Efficiency: []models.EfficiencyBlock{
			{{FrequencyMHz: 700, EfficiencyDB: -3.1}, {FrequencyMHz: 710, EfficiencyDB: -2.9}},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.StoreResult(ctx, older))
	require.NoError(t, repo.StoreResult(ctx, newer))

	got, err := repo.GetResult(ctx, uuid.MustParse(older.ID))
	require.NoError(t, err)
	assert.Equal(t, older.Source, got.Source)
	assert.Equal(t, older.Kind, got.Kind)
	assert.Equal(t, older.NumberKind, got.NumberKind)
	require.Len(t, got.Loss, 1)
	assert.Equal(t, older.Loss[0].ReturnLossDB, got.Loss[0].ReturnLossDB)
	assert.Equal(t, z, *got.Loss[0].NormalizedImpedance)
	assert.True(t, older.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetResult(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := repo.ListBySource(ctx, "lab/ant1.s1p")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, newer.Efficiency, list[0].Efficiency)
}
