package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV decodes a catalog from CSV. A leading UTF-8 byte order mark is
// accepted and dropped.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cat := New(header)
	// Remap the header positions onto the normalised column list.
	positions := make([]int, len(cat.columns))
	for i, col := range cat.columns {
		positions[i] = -1
		for j, h := range header {
			if strings.TrimSpace(h) == col {
				positions[i] = j
				break
			}
		}
	}

	lineNum := 1
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", lineNum, err)
		}
		if isBlankRow(values) {
			continue
		}

		row := make([]string, len(cat.columns))
		for i, pos := range positions {
			if pos >= 0 && pos < len(values) {
				row[i] = values[pos]
			}
		}
		cat.AddRow(row)
	}

	slog.Debug("Finished reading CSV catalog", "rows", cat.Len(), "columns", len(cat.columns))
	return cat, nil
}

// WriteCSV encodes the catalog as UTF-8 CSV preceded by a byte order mark,
// which keeps spreadsheet tools from mangling Arabic text.
func WriteCSV(w io.Writer, cat *Catalog) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(tw)

	columns := cat.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range cat.Records {
		if err := writer.Write(Row(columns, rec)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to flush encoder: %w", err)
	}
	return nil
}

func isBlankRow(values []string) bool {
	for _, v := range values {
		if Clean(v) != "" {
			return false
		}
	}
	return true
}
