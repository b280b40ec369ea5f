// Command antplot parses network analyzer exports, writes a combined
// spreadsheet and plots return loss and efficiency.
//
//	antplot [flags] NAME [BAND_EDGE_MHZ...] FILE...
//
// Arguments made only of digits are band edges in MHz. Everything else is
// an input file, either a local path or s3://bucket/key.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RMahshie/rfsweep/internal/config"
	"github.com/RMahshie/rfsweep/internal/processing"
	"github.com/RMahshie/rfsweep/internal/repository"
	"github.com/RMahshie/rfsweep/internal/repository/postgres"
	"github.com/RMahshie/rfsweep/internal/storage"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// invocation is the positional part of the command line
type invocation struct {
	Name      string
	BandEdges []float64
	Inputs    []string
	// Last is the final argument, whose directory receives the outputs
	Last string
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()

	flags := pflag.NewFlagSet("antplot", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolP("sidebyside", "b", false, "plot return loss and efficiency side by side")
	flags.BoolP("smith", "s", false, "plot complex return loss on a Smith chart (ignored with --sidebyside)")
	flags.String("out-dir", "", "output directory (default: directory of the last argument)")
	flags.Bool("xlsx", false, "also write an Excel workbook")
	flags.Bool("html", false, "also write an interactive HTML chart")
	flags.Bool("no-plot", false, "only write the parsed data")
	flags.Bool("mismatch-positive", false, "report mismatch loss as a positive attenuation")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: antplot [flags] NAME [BAND_EDGE_MHZ...] FILE...")
		flags.PrintDefaults()
	}

	if err := flags.Parse(normalizeArgs(args)); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	for key, flag := range map[string]string{
		"SIDE_BY_SIDE":           "sidebyside",
		"SMITH":                  "smith",
		"OUTPUT_DIR":             "out-dir",
		"EXPORT_XLSX":            "xlsx",
		"EXPORT_HTML":            "html",
		"NO_PLOT":                "no-plot",
		"MISMATCH_LOSS_POSITIVE": "mismatch-positive",
		"LOG_LEVEL":              "log-level",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Error().Err(err).Str("flag", flag).Msg("Failed to bind flag")
			return exitUsage
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return exitUsage
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log.Logger = log.Logger.Level(level)
	}

	inv, err := parseInvocation(flags.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		flags.Usage()
		return exitUsage
	}

	if cfg.Plot.SideBySide && cfg.Plot.Smith {
		log.Warn().Msg("--smith is ignored with --sidebyside")
		cfg.Plot.Smith = false
	}

	var s3Service storage.S3Service
	if s3cfg, ok := cfg.AWS.S3Config(); ok {
		if s3Service, err = storage.NewS3Service(s3cfg); err != nil {
			log.Error().Err(err).Msg("Failed to configure object storage")
			return exitFailed
		}
	}

	var repo repository.SweepRepository
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open sweep archive")
			return exitFailed
		}
		defer db.Close()
		repo = postgres.NewPostgresSweepRepository(db)
	}

	svc := processing.NewSweepService(cfg.Parse.ProcessingOptions(), s3Service, repo)
	batch := svc.ParseBatch(ctx, inv.Inputs)
	for _, fe := range batch.Errors {
		fmt.Fprintln(stderr, fe.Error())
	}

	outDir := cfg.Output.Dir
	if outDir == "" {
		outDir = defaultOutputDir(inv.Last)
	}

	status := exitOK
	if batch.Failed() {
		status = exitFailed
	}
	if len(batch.Results) == 0 {
		log.Error().Msg("No file could be parsed, nothing to write")
		return exitFailed
	}

	written, err := writeArtifacts(outDir, inv, batch.Results, cfg, time.Now())
	for _, path := range written {
		log.Info().Str("file", path).Msg("Wrote output")
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write outputs")
		return exitFailed
	}

	if s3Service != nil {
		if err := uploadArtifacts(ctx, s3Service, inv.Name, written); err != nil {
			log.Error().Err(err).Msg("Failed to upload outputs")
			status = exitFailed
		}
	}

	return status
}

// normalizeArgs rewrites the single-dash long form -sbs, which pflag would
// otherwise read as -s -b -s
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-sbs" {
			a = "--sidebyside"
		}
		out[i] = a
	}
	return out
}

func parseInvocation(args []string) (invocation, error) {
	if len(args) < 2 {
		return invocation{}, errors.New("need an output name and at least one input file")
	}

	inv := invocation{Name: args[0], Last: args[len(args)-1]}
	for _, a := range args[1:] {
		if isDigits(a) {
			edge, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return invocation{}, fmt.Errorf("invalid band edge %q: %w", a, err)
			}
			inv.BandEdges = append(inv.BandEdges, edge)
			continue
		}
		inv.Inputs = append(inv.Inputs, a)
	}

	if len(inv.Inputs) == 0 {
		return invocation{}, errors.New("no input files given")
	}
	if len(inv.BandEdges)%2 != 0 {
		log.Warn().Int("band_edges", len(inv.BandEdges)).Msg("Odd number of band edges, the last one is not paired")
	}
	return inv, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func defaultOutputDir(last string) string {
	if strings.HasPrefix(last, "s3://") {
		return "."
	}
	return filepath.Dir(last)
}

func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := postgres.MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
