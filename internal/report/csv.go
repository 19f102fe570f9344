// Package report renders audit records as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"webvitals/internal/config"
	"webvitals/pkg/domain"
	"webvitals/pkg/serrors"
)

// Column names, in report order.
const (
	ColumnURL              = "URL"
	ColumnDataSource       = "Data Source"
	ColumnPerformanceScore = "Performance Score"
	ColumnLCP              = "LCP (s)"
	ColumnLCPCategory      = "LCP Category"
	ColumnINP              = "INP (ms)"
	ColumnINPCategory      = "INP Category"
	ColumnCLS              = "CLS"
	ColumnCLSCategory      = "CLS Category"
	ColumnError            = "Error"
)

// FixedHeader is the header of the fixed schema: every column a record can
// carry.
var FixedHeader = []string{ //nolint: gochecknoglobals
	ColumnURL, ColumnDataSource, ColumnPerformanceScore,
	ColumnLCP, ColumnLCPCategory,
	ColumnINP, ColumnINPCategory,
	ColumnCLS, ColumnCLSCategory,
	ColumnError,
}

// CSVWriter writes a report file.
type CSVWriter struct {
	path   string
	schema string
}

// NewCSVWriter returns a writer for path using one of the config.Schema*
// layouts. An empty schema selects config.SchemaFixed.
func NewCSVWriter(path, schema string) (*CSVWriter, error) {
	if path == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "output path cannot be empty")
	}
	if schema == "" {
		schema = config.SchemaFixed
	}
	if schema != config.SchemaFixed && schema != config.SchemaFirstRecord {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown report schema %q", schema)
	}

	return &CSVWriter{path: path, schema: schema}, nil
}

// Path returns the destination file.
func (w *CSVWriter) Path() string {
	return w.path
}

// Write creates or truncates the destination and writes records to it.
func (w *CSVWriter) Write(records []domain.Record) (err error) {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("cannot create output file %s: %w", w.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close output file %s: %w", w.path, cerr)
		}
	}()

	return Encode(f, w.schema, records)
}

// Encode writes a header and one row per record to out.
//
// With config.SchemaFixed the header is FixedHeader. With
// config.SchemaFirstRecord it is made of the columns the first record
// carries, and a later record carrying a column outside of it is an error.
// In both layouts a column a record does not carry is left empty.
func Encode(out io.Writer, schema string, records []domain.Record) error {
	header := FixedHeader
	if schema == config.SchemaFirstRecord {
		if len(records) == 0 {
			return serrors.With(serrors.ErrBadRequest, "no records to derive the report header from")
		}
		header, _ = columns(records[0])
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	known := make(map[string]struct{}, len(header))
	for _, h := range header {
		known[h] = struct{}{}
	}

	row := make([]string, len(header))
	for i, rec := range records {
		keys, values := columns(rec)
		for _, k := range keys {
			if _, ok := known[k]; !ok {
				return serrors.With(serrors.ErrInternal,
					"record %d (%s) has column %q which is not in the report header", i, rec.URL, k)
			}
		}

		for j, h := range header {
			row[j] = values[h]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return nil
}

// columns returns the columns rec carries, in report order, and their cell
// values. Absent values are empty cells.
func columns(rec domain.Record) ([]string, map[string]string) {
	if rec.Failed() {
		return []string{ColumnURL, ColumnError}, map[string]string{
			ColumnURL:   rec.URL,
			ColumnError: rec.Error,
		}
	}

	return FixedHeader[:len(FixedHeader)-1], map[string]string{
		ColumnURL:              rec.URL,
		ColumnDataSource:       string(rec.Source),
		ColumnPerformanceScore: number(rec.PerformanceScore),
		ColumnLCP:              number(rec.LCPSeconds),
		ColumnLCPCategory:      string(rec.LCPCategory),
		ColumnINP:              number(rec.INPMilliseconds),
		ColumnINPCategory:      string(rec.INPCategory),
		ColumnCLS:              number(rec.CLS),
		ColumnCLSCategory:      string(rec.CLSCategory),
	}
}

func number(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}
