// Package catalog holds the product catalog that enrichment runs read and
// rewrite, together with its CSV and Parquet encodings.
package catalog

import (
	"slices"
	"strings"
)

// pipelineColumns are added to a catalog on load when missing.
var pipelineColumns = []string{
	ColImage,
	ColAdditionalImages,
	NameColumn("en"),
	NameColumn("ar"),
	ShortDescriptionColumn("en"),
	LongDescriptionColumn("en"),
	ShortDescriptionColumn("ar"),
	LongDescriptionColumn("ar"),
}

// Catalog is the in-memory buffer of every row, in file order.
type Catalog struct {
	columns []string
	Records []*Record
}

// New creates a catalog from an input header. Pipeline columns missing from
// the header are appended.
func New(columns []string) *Catalog {
	cols := make([]string, 0, len(columns)+len(pipelineColumns))
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	for _, c := range pipelineColumns {
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	return &Catalog{columns: cols}
}

// Columns returns the output header. Language columns introduced by merged
// records are appended after the input columns.
func (c *Catalog) Columns() []string {
	cols := slices.Clone(c.columns)
	add := func(col string) {
		if !slices.Contains(cols, col) {
			cols = append(cols, col)
		}
	}
	for _, r := range c.Records {
		for _, lang := range sortedKeys(r.LocalizedNames) {
			add(NameColumn(lang))
		}
		for _, lang := range sortedKeys(r.ShortDescription) {
			add(ShortDescriptionColumn(lang))
		}
		for _, lang := range sortedKeys(r.LongDescription) {
			add(LongDescriptionColumn(lang))
		}
		for _, col := range sortedKeys(r.Extra) {
			add(col)
		}
	}
	return cols
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	return len(c.Records)
}

// AddRow decodes one raw row against the catalog header and appends it.
func (c *Catalog) AddRow(values []string) *Record {
	rec := NewRecord()
	for i, col := range c.columns {
		var v string
		if i < len(values) {
			v = values[i]
		}
		setField(rec, col, v)
	}
	// Name En starts out as the original product name so that a later
	// localized overwrite of Product never loses it.
	if rec.LocalizedNames["en"] == "" && rec.Name != "" {
		rec.LocalizedNames["en"] = rec.Name
	}
	c.Records = append(c.Records, rec)
	return rec
}

// Row encodes a record against the given header.
func Row(columns []string, rec *Record) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = getField(rec, col)
	}
	return row
}

func setField(rec *Record, column, raw string) {
	switch column {
	case ColProduct:
		rec.Name = Clean(raw)
	case ColCategory:
		rec.Category = Clean(raw)
	case ColSubcategory:
		rec.Subcategory = Clean(raw)
	case ColImage:
		rec.MainImage = Clean(raw)
	case ColAdditionalImages:
		rec.AdditionalImages = SplitImages(raw)
	default:
		if prefix, lang, ok := languageColumn(column); ok {
			v := Clean(raw)
			if v == "" {
				return
			}
			switch prefix {
			case namePrefix:
				rec.LocalizedNames[lang] = v
			case shortDescPrefix:
				rec.ShortDescription[lang] = v
			case longDescPrefix:
				rec.LongDescription[lang] = v
			}
			return
		}
		// Uninterpreted columns keep their raw text.
		rec.Extra[column] = raw
	}
}

func getField(rec *Record, column string) string {
	switch column {
	case ColProduct:
		return rec.Name
	case ColCategory:
		return rec.Category
	case ColSubcategory:
		return rec.Subcategory
	case ColImage:
		return rec.MainImage
	case ColAdditionalImages:
		return JoinImages(rec.AdditionalImages)
	}
	if prefix, lang, ok := languageColumn(column); ok {
		switch prefix {
		case namePrefix:
			return rec.LocalizedNames[lang]
		case shortDescPrefix:
			return rec.ShortDescription[lang]
		case longDescPrefix:
			return rec.LongDescription[lang]
		}
	}
	return rec.Extra[column]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
