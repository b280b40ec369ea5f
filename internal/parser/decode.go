package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RMahshie/rfsweep/pkg/models"
)

// UnitScale maps a format to the divisor applied to its frequency column
// to obtain MHz. A missing entry means the column is already MHz.
type UnitScale map[FormatTag]float64

// DefaultUnitScale treats every loss format as Hz-native
func DefaultUnitScale() UnitScale {
	return UnitScale{
		FormatTouchstone:   1e6,
		FormatRohdeSchwarz: 1e6,
		FormatAgilent:      1e6,
	}
}

func (u UnitScale) divisor(f FormatTag) float64 {
	if d, ok := u[f]; ok && d != 0 {
		return d
	}
	return 1
}

// Row is one decoded loss sample. Secondary is nil for magnitude-only
// formats.
type Row struct {
	FrequencyMHz float64
	Primary      float64
	Secondary    *float64
}

// Decoded is the typed content of one file, before any derived metrics
type Decoded struct {
	Format     FormatTag
	Kind       models.MeasurementKind
	NumberKind models.NumberKind

	// Rows is set for loss formats
	Rows []Row
	// Samples is set for the efficiency format, in file order
	Samples []models.EfficiencySample
}

// Decoder turns classified content into typed rows
type Decoder struct {
	Units UnitScale
}

// NewDecoder creates a decoder with the given unit scaling. A nil scale
// uses DefaultUnitScale.
func NewDecoder(units UnitScale) *Decoder {
	if units == nil {
		units = DefaultUnitScale()
	}
	return &Decoder{Units: units}
}

// Decode interprets content according to format
func (d *Decoder) Decode(content []byte, format FormatTag) (*Decoded, error) {
	switch format {
	case FormatTouchstone:
		return d.decodeComplex(content, format, '\t', "!", "#")
	case FormatRohdeSchwarz:
		return d.decodeComplex(content, format, ';', "freq", "#")
	case FormatAgilent:
		return d.decodeMagnitude(content, format, ',', "Frequency", "#")
	case FormatEfficiency:
		return d.decodeEfficiency(content)
	default:
		return nil, ErrUnrecognizedFormat
	}
}

func (d *Decoder) decodeComplex(content []byte, format FormatTag, delim rune, markers ...string) (*Decoded, error) {
	out := &Decoded{Format: format, Kind: models.KindLoss, NumberKind: models.NumberComplex}
	div := d.Units.divisor(format)

	err := eachDataRow(content, delim, markers, func(line int, fields []string) error {
		vals, err := parseFloats(line, fields, 3)
		if err != nil {
			return err
		}
		im := vals[2]
		out.Rows = append(out.Rows, Row{FrequencyMHz: vals[0] / div, Primary: vals[1], Secondary: &im})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Decoder) decodeMagnitude(content []byte, format FormatTag, delim rune, markers ...string) (*Decoded, error) {
	out := &Decoded{Format: format, Kind: models.KindLoss, NumberKind: models.NumberReal}
	div := d.Units.divisor(format)

	err := eachDataRow(content, delim, markers, func(line int, fields []string) error {
		vals, err := parseFloats(line, fields, 2)
		if err != nil {
			return err
		}
		out.Rows = append(out.Rows, Row{FrequencyMHz: vals[0] / div, Primary: vals[1]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Labels found in the wide efficiency layout
const (
	labelPointValues  = "Point Values"
	labelFrequencyMHz = "Frequency (MHz)"
	labelTotal        = "Total"
	labelETSFrequency = "Frequency  (MHz)"
	labelEfficiencyDB = "Efficiency (dB)"
	tokenETSFrequency = "Frequency  "
	tokenFrequency    = "Frequency"
	tokenPoint        = "Point"
)

func (d *Decoder) decodeEfficiency(content []byte) (*Decoded, error) {
	out := &Decoded{Format: FormatEfficiency, Kind: models.KindEfficiency, NumberKind: models.NumberNone}

	var freqs, effs labelledRow

	err := eachRow(content, ',', func(line int, fields []string) error {
		var err error
		switch {
		case anyContains(fields, tokenFrequency) && anyContains(fields, tokenPoint):
			freqs, err = parseLabelled(line, fields, labelPointValues, labelFrequencyMHz)
		case anyContains(fields, tokenETSFrequency) && anyContains(fields, labelTotal):
			freqs, err = parseLabelled(line, fields, labelTotal, labelETSFrequency)
		case anyContains(fields, labelEfficiencyDB):
			effs, err = parseLabelled(line, fields, labelEfficiencyDB)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if freqs.Line == 0 {
		return nil, &RowError{Reason: "no frequency row"}
	}
	if effs.Line == 0 {
		return nil, &RowError{Reason: "no efficiency row"}
	}
	if len(freqs.Values) != len(effs.Values) {
		return nil, &RowError{
			Line:   effs.Line,
			Reason: fmt.Sprintf("%d efficiencies for %d frequencies (line %d)", len(effs.Values), len(freqs.Values), freqs.Line),
		}
	}
	if freqs.Start != effs.Start {
		return nil, &RowError{
			Line:   effs.Line,
			Reason: fmt.Sprintf("efficiencies start at column %d, frequencies at column %d (line %d)", effs.Start+1, freqs.Start+1, freqs.Line),
		}
	}

	out.Samples = make([]models.EfficiencySample, len(freqs.Values))
	for i := range freqs.Values {
		out.Samples[i] = models.EfficiencySample{FrequencyMHz: freqs.Values[i], EfficiencyDB: effs.Values[i]}
	}
	return out, nil
}

// eachRow calls fn with every non-blank record and its line number
func eachRow(content []byte, delim rune, fn func(line int, fields []string) error) error {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return &RowError{Line: line, Reason: "unreadable record", Err: err}
		}
		if isBlank(fields) {
			continue
		}
		line, _ := r.FieldPos(0)
		if err := fn(line, fields); err != nil {
			return err
		}
	}
}

// eachDataRow is eachRow minus rows where any field contains a marker
func eachDataRow(content []byte, delim rune, markers []string, fn func(line int, fields []string) error) error {
	return eachRow(content, delim, func(line int, fields []string) error {
		for _, m := range markers {
			if anyContains(fields, m) {
				return nil
			}
		}
		return fn(line, fields)
	})
}

func parseFloats(line int, fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, &RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", n, len(fields))}
	}
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, &RowError{Line: line, Reason: fmt.Sprintf("field %d is not a number", i+1), Err: err}
		}
		vals[i] = v
	}
	return vals, nil
}

// labelledRow holds the numbers of a labelled efficiency row. Start is the
// zero-based column of the first number; Line is 0 until the row is seen.
type labelledRow struct {
	Line   int
	Start  int
	Values []float64
}

// parseLabelled skips leading label and spacer cells and trailing empty
// cells. Every cell in between must be a number.
func parseLabelled(line int, fields []string, labels ...string) (labelledRow, error) {
	start := 0
	for start < len(fields) && (strings.TrimSpace(fields[start]) == "" || isLabel(fields[start], labels)) {
		start++
	}
	end := len(fields)
	for end > start && strings.TrimSpace(fields[end-1]) == "" {
		end--
	}

	row := labelledRow{Line: line, Start: start, Values: make([]float64, 0, end-start)}
	for i := start; i < end; i++ {
		cell := strings.TrimSpace(fields[i])
		if cell == "" {
			return labelledRow{}, &RowError{Line: line, Reason: fmt.Sprintf("column %d is empty", i+1)}
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return labelledRow{}, &RowError{Line: line, Reason: fmt.Sprintf("column %d is not a number", i+1), Err: err}
		}
		row.Values = append(row.Values, v)
	}
	return row, nil
}

func isLabel(field string, labels []string) bool {
	trimmed := strings.TrimSpace(field)
	for _, l := range labels {
		if field == l || trimmed == l {
			return true
		}
	}
	return false
}

func anyContains(fields []string, token string) bool {
	for _, f := range fields {
		if strings.Contains(f, token) {
			return true
		}
	}
	return false
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
