package export

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/RMahshie/rfsweep/pkg/models"
)

const summarySheet = "Summary"

// WriteXLSX writes a workbook with a summary sheet followed by one sheet
// per result, longest first
func WriteXLSX(w io.Writer, results []*models.FileResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Sheet", "Source", "Format", "Kind", "Samples"}); err != nil {
		return err
	}

	for i, r := range SortByLength(results) {
		name := SheetName(i, r.Source)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		summary := []interface{}{name, r.Source, r.Format, string(r.Kind), r.Len()}
		if err := f.SetSheetRow(summarySheet, cell(1, i+2), &summary); err != nil {
			return err
		}

		header := make([]interface{}, 0, 4)
		for _, h := range Header(r) {
			header = append(header, h)
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}

		for ri, row := range Rows(r) {
			values := make([]interface{}, len(row))
			for ci, v := range row {
				values[ci] = cellValue(v)
			}
			if err := f.SetSheetRow(name, cell(1, ri+2), &values); err != nil {
				return fmt.Errorf("failed to write sheet %q: %w", name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetName derives a unique worksheet name from the result's position and
// source file, within the 31 character limit
func SheetName(index int, source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, base)

	name := fmt.Sprintf("%d %s", index+1, base)
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return strings.TrimSpace(name)
}

// cellValue keeps finite numbers numeric. Spreadsheets have no NaN or Inf.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatValue(v)
	}
	return v
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
