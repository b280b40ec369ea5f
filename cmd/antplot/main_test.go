package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/rfsweep/internal/config"
)

const (
	touchstoneExport = "# Hz S RI R 50\n" +
		"700000000\t0.1\t-0.2\n" +
		"800000000\t0.2\t0.1\n" +
		"900000000\t-0.1\t0.3\n"

	efficiencyExport = "Point Values,Frequency (MHz),700,710,720,1710,1720\n" +
		",Efficiency (dB),-3.1,-2.9,-3.0,-4.0,-4.2\n"
)

func setup(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("OUTPUT_DIR", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ant.s1p"), []byte(touchstoneExport), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eff.csv"), []byte(efficiencyExport), 0o644))
	return dir
}

func TestRun_WritesNextToLastArgument(t *testing.T) {
	dir := setup(t)

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"ANT1", "824", "894", filepath.Join(dir, "ant.s1p"), filepath.Join(dir, "eff.csv")}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.FileExists(t, filepath.Join(dir, "ANT1_parsedData.csv"))
	assert.FileExists(t, filepath.Join(dir, "ANT1.png"))
	assert.NoFileExists(t, filepath.Join(dir, "ANT1_parsedData.xlsx"))
	assert.NoFileExists(t, filepath.Join(dir, "ANT1_chart.html"))
}

func TestRun_AllOutputs(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--xlsx", "--html", "--out-dir", out, "-s",
		"ANT1", filepath.Join(dir, "ant.s1p"), "824",
	}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	for _, name := range []string{"ANT1_parsedData.csv", "ANT1_parsedData.xlsx", "ANT1.html", "ANT1_chart.html"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "ANT1.png"), "smith mode replaces the png")
}

func TestRun_LegacySideBySideOverridesSmith(t *testing.T) {
	dir := setup(t)

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-sbs", "-s", "ANT1", filepath.Join(dir, "ant.s1p"), filepath.Join(dir, "eff.csv")}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.FileExists(t, filepath.Join(dir, "ANT1.png"))
	assert.NoFileExists(t, filepath.Join(dir, "ANT1.html"))
}

func TestRun_FailedFileSetsExitStatus(t *testing.T) {
	dir := setup(t)
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Frequency,dB\n700,loud\n"), 0o644))

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"--no-plot", "ANT1", bad, filepath.Join(dir, "ant.s1p")}, &stderr)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "bad.csv: MalformedRow")
	assert.FileExists(t, filepath.Join(dir, "ANT1_parsedData.csv"), "good files are still written")
	assert.NoFileExists(t, filepath.Join(dir, "ANT1.png"))
}

func TestRun_Usage(t *testing.T) {
	setup(t)

	var stderr bytes.Buffer
	assert.Equal(t, exitUsage, run(context.Background(), []string{"ANT1"}, &stderr))
	assert.Equal(t, exitUsage, run(context.Background(), []string{"ANT1", "824", "894"}, &stderr))
	assert.Equal(t, exitUsage, run(context.Background(), []string{"--bogus"}, &stderr))
}

func TestParseInvocation(t *testing.T) {
	inv, err := parseInvocation([]string{"ANT", "1710", "a.csv", "824", "s3://b/k.csv"})
	require.NoError(t, err)

	assert.Equal(t, "ANT", inv.Name)
	assert.Equal(t, []float64{1710, 824}, inv.BandEdges)
	assert.Equal(t, []string{"a.csv", "s3://b/k.csv"}, inv.Inputs)
	assert.Equal(t, "s3://b/k.csv", inv.Last)
	assert.Equal(t, ".", defaultOutputDir(inv.Last))
}

func TestIsDigits(t *testing.T) {
	assert.True(t, isDigits("824"))
	assert.False(t, isDigits(""))
	assert.False(t, isDigits("82.4"))
	assert.False(t, isDigits("-824"))
	assert.False(t, isDigits("ant1"))
}

func TestNormalizeArgs(t *testing.T) {
	assert.Equal(t, []string{"--sidebyside", "-s", "x"}, normalizeArgs([]string{"-sbs", "-s", "x"}))
}

func TestArtifacts_Selection(t *testing.T) {
	inv := invocation{Name: "ANT"}
	names := func(cfg *config.Config) []string {
		var out []string
		for _, a := range artifacts(inv, nil, cfg, time.Now()) {
			out = append(out, a.Filename)
		}
		return out
	}

	assert.Equal(t, []string{"ANT_parsedData.csv", "ANT.png"}, names(&config.Config{}))
	assert.Equal(t, []string{"ANT_parsedData.csv"}, names(&config.Config{Output: config.OutputConfig{NoPlot: true}}))
	assert.Equal(t, []string{"ANT_parsedData.csv", "ANT_parsedData.xlsx", "ANT.html", "ANT_chart.html"},
		names(&config.Config{Output: config.OutputConfig{XLSX: true, HTML: true}, Plot: config.PlotConfig{Smith: true}}))
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) DownloadFile(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func TestUploadArtifacts(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ANT_parsedData.csv")
	pngPath := filepath.Join(dir, "ANT.png")
	require.NoError(t, os.WriteFile(csvPath, []byte("a,b\n"), 0o644))
	require.NoError(t, os.WriteFile(pngPath, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	s3 := new(MockS3Service)
	s3.On("UploadFile", mock.Anything, "exports/ANT/ANT_parsedData.csv", "text/csv", []byte("a,b\n")).Return(nil)
	s3.On("UploadFile", mock.Anything, "exports/ANT/ANT.png", "image/png", mock.Anything).Return(nil)
	s3.On("GenerateDownloadURL", mock.Anything, "exports/ANT/ANT_parsedData.csv").Return("https://example.com/csv", nil)
	s3.On("GenerateDownloadURL", mock.Anything, "exports/ANT/ANT.png").Return("", errors.New("presign failed"))

	require.NoError(t, uploadArtifacts(context.Background(), s3, "ANT", []string{csvPath, pngPath}))
	s3.AssertExpectations(t)

	failing := new(MockS3Service)
	failing.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("denied"))
	assert.ErrorContains(t, uploadArtifacts(context.Background(), failing, "ANT", []string{csvPath}), "denied")
}
