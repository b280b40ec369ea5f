package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/RMahshie/rfsweep/pkg/models"
)

// WriteCSV writes every result into one combined table
func WriteCSV(w io.Writer, results []*models.FileResult) error {
	header, rows := Table(results)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
