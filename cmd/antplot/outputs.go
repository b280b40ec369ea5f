package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/rfsweep/internal/config"
	"github.com/RMahshie/rfsweep/internal/export"
	"github.com/RMahshie/rfsweep/internal/render"
	"github.com/RMahshie/rfsweep/internal/storage"
	"github.com/RMahshie/rfsweep/pkg/models"
)

// artifact is one output file and the function that fills it
type artifact struct {
	Filename string
	Write    func(w io.Writer) error
}

// artifacts lists the outputs selected by cfg, in write order
func artifacts(inv invocation, results []*models.FileResult, cfg *config.Config, now time.Time) []artifact {
	opts := render.Options{
		Title:      inv.Name,
		BandEdges:  inv.BandEdges,
		SideBySide: cfg.Plot.SideBySide,
	}

	list := []artifact{{
		Filename: inv.Name + "_parsedData.csv",
		Write:    func(w io.Writer) error { return export.WriteCSV(w, results) },
	}}

	if cfg.Output.XLSX {
		list = append(list, artifact{
			Filename: inv.Name + "_parsedData.xlsx",
			Write:    func(w io.Writer) error { return export.WriteXLSX(w, results) },
		})
	}

	if !cfg.Output.NoPlot {
		if cfg.Plot.Smith {
			list = append(list, artifact{
				Filename: inv.Name + ".html",
				Write:    func(w io.Writer) error { return render.WriteSmithHTML(w, results, opts) },
			})
		} else {
			list = append(list, artifact{
				Filename: inv.Name + ".png",
				Write:    func(w io.Writer) error { return render.WritePNG(w, results, opts, now) },
			})
		}
	}

	if cfg.Output.HTML {
		list = append(list, artifact{
			Filename: inv.Name + "_chart.html",
			Write:    func(w io.Writer) error { return render.WriteLossHTML(w, results, opts) },
		})
	}

	return list
}

// writeArtifacts writes every selected output into dir and returns the
// paths written so far, also on error
func writeArtifacts(dir string, inv invocation, results []*models.FileResult, cfg *config.Config, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, a := range artifacts(inv, results, cfg, now) {
		path := filepath.Join(dir, a.Filename)
		if err := writeFile(path, a.Write); err != nil {
			return written, fmt.Errorf("%s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, fill func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// uploadArtifacts copies written outputs to exports/NAME/ in the bucket
func uploadArtifacts(ctx context.Context, s3Service storage.S3Service, name string, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		key := "exports/" + name + "/" + filepath.Base(path)
		if err := s3Service.UploadFile(ctx, key, storage.ContentType(path), data); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		url, err := s3Service.GenerateDownloadURL(ctx, key)
		if err != nil {
			log.Warn().Str("key", key).Err(err).Msg("Failed to presign download URL")
			continue
		}
		log.Info().Str("key", key).Str("url", url).Msg("Uploaded output")
	}
	return nil
}
