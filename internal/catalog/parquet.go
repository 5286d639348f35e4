package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
)

// parquetRecord is the on-disk row layout for Parquet catalogs.
type parquetRecord struct {
	Product          string         `parquet:"product"`
	Category         string         `parquet:"main_category"`
	Subcategory      string         `parquet:"sub_category"`
	Image            string         `parquet:"image"`
	AdditionalImages []string       `parquet:"additional_images,list"`
	Names            []parquetEntry `parquet:"names"`
	ShortDescription []parquetEntry `parquet:"short_description"`
	LongDescription  []parquetEntry `parquet:"long_description"`
	Extra            []parquetEntry `parquet:"extra"`
}

// parquetEntry is one key/value pair of a language or extra column map.
type parquetEntry struct {
	Key   string `parquet:"key"`
	Value string `parquet:"value"`
}

// readParquet loads a catalog from a Parquet file.
func readParquet(path string) (*Catalog, error) {
	slog.Debug("Opening Parquet catalog", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[parquetRecord](pf)
	defer reader.Close()

	var rows []parquetRecord
	batch := make([]parquetRecord, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	// Extra columns are ordered by first appearance.
	var extraCols []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, e := range row.Extra {
			if !seen[e.Key] {
				seen[e.Key] = true
				extraCols = append(extraCols, e.Key)
			}
		}
	}
	header := append([]string{ColProduct, ColCategory, ColSubcategory}, extraCols...)

	cat := New(header)
	for _, row := range rows {
		rec := fromParquet(row)
		if rec.LocalizedNames["en"] == "" && rec.Name != "" {
			rec.LocalizedNames["en"] = rec.Name
		}
		cat.Records = append(cat.Records, rec)
	}

	slog.Debug("Finished reading Parquet catalog", "rows", cat.Len())
	return cat, nil
}

// writeParquet encodes the catalog into w.
func writeParquet(w io.Writer, cat *Catalog) error {
	writer := parquet.NewGenericWriter[parquetRecord](w)

	rows := make([]parquetRecord, 0, len(cat.Records))
	for _, rec := range cat.Records {
		rows = append(rows, toParquet(rec))
	}
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func toParquet(rec *Record) parquetRecord {
	return parquetRecord{
		Product:          rec.Name,
		Category:         rec.Category,
		Subcategory:      rec.Subcategory,
		Image:            rec.MainImage,
		AdditionalImages: rec.AdditionalImages,
		Names:            toEntries(rec.LocalizedNames),
		ShortDescription: toEntries(rec.ShortDescription),
		LongDescription:  toEntries(rec.LongDescription),
		Extra:            toEntries(rec.Extra),
	}
}

func fromParquet(row parquetRecord) *Record {
	rec := NewRecord()
	rec.Name = Clean(row.Product)
	rec.Category = Clean(row.Category)
	rec.Subcategory = Clean(row.Subcategory)
	rec.MainImage = Clean(row.Image)
	for _, img := range row.AdditionalImages {
		if v := Clean(img); v != "" {
			rec.AdditionalImages = append(rec.AdditionalImages, v)
		}
	}
	fillEntries(rec.LocalizedNames, row.Names)
	fillEntries(rec.ShortDescription, row.ShortDescription)
	fillEntries(rec.LongDescription, row.LongDescription)
	for _, e := range row.Extra {
		rec.Extra[e.Key] = e.Value
	}
	return rec
}

func toEntries(m map[string]string) []parquetEntry {
	entries := make([]parquetEntry, 0, len(m))
	for _, k := range sortedKeys(m) {
		entries = append(entries, parquetEntry{Key: k, Value: m[k]})
	}
	return entries
}

func fillEntries(dst map[string]string, entries []parquetEntry) {
	for _, e := range entries {
		if v := Clean(e.Value); v != "" {
			dst[e.Key] = v
		}
	}
}
