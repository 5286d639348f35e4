package catalog

import (
	"strings"
)

// Column names used by the product export.
const (
	ColID               = "ID"
	ColWebsite          = "Website"
	ColProduct          = "Product"
	ColPrice            = "Price"
	ColBarcode          = "Barcode"
	ColExpiryDate       = "Expiry Date"
	ColQuantity         = "Quantity"
	ColCategory         = "Main Category (EN)"
	ColSubcategory      = "Sub-Category (EN)"
	ColImage            = "Image"
	ColAdditionalImages = "Additional Images"

	namePrefix      = "Name "
	shortDescPrefix = "Short Description "
	longDescPrefix  = "Long Description "
)

// ImageDelimiter separates entries of the additional images column.
const ImageDelimiter = "|"

// Record is one catalog row. Absent values are empty strings; sentinel
// spellings such as "nan" never survive loading.
type Record struct {
	Name        string
	Category    string
	Subcategory string

	// MainImage is operator curated and only filled when empty.
	MainImage        string
	AdditionalImages []string

	// Keyed by lower-case language code ("en", "ar").
	LocalizedNames   map[string]string
	ShortDescription map[string]string
	LongDescription  map[string]string

	// Brand is derived during enrichment and not persisted.
	Brand string

	// Extra holds every column the pipeline does not interpret.
	Extra map[string]string
}

// NewRecord returns an empty record with initialised maps.
func NewRecord() *Record {
	return &Record{
		LocalizedNames:   make(map[string]string),
		ShortDescription: make(map[string]string),
		LongDescription:  make(map[string]string),
		Extra:            make(map[string]string),
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.AdditionalImages = append([]string(nil), r.AdditionalImages...)
	c.LocalizedNames = cloneMap(r.LocalizedNames)
	c.ShortDescription = cloneMap(r.ShortDescription)
	c.LongDescription = cloneMap(r.LongDescription)
	c.Extra = cloneMap(r.Extra)
	return &c
}

// Field returns the value of an uninterpreted column such as Barcode.
func (r *Record) Field(column string) string {
	return r.Extra[column]
}

// HasMainImage reports whether a main image is already stored.
func (r *Record) HasMainImage() bool {
	return strings.TrimSpace(r.MainImage) != ""
}

// LocalizedName returns the name stored for lang.
func (r *Record) LocalizedName(lang string) string {
	return r.LocalizedNames[strings.ToLower(lang)]
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clean maps the "no data" spellings produced by spreadsheet exports
// ("nan", "none", blank) to the empty string.
func Clean(value string) string {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "nan", "none":
		return ""
	}
	return v
}

// SplitImages splits a delimiter-joined image column, dropping absent entries.
func SplitImages(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ImageDelimiter) {
		if p := Clean(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinImages is the inverse of SplitImages.
func JoinImages(images []string) string {
	return strings.Join(images, ImageDelimiter)
}

// NameColumn returns the localized name column for a language code ("ar" -> "Name Ar").
func NameColumn(lang string) string {
	return namePrefix + langSuffix(lang)
}

// ShortDescriptionColumn returns the short description column for lang.
func ShortDescriptionColumn(lang string) string {
	return shortDescPrefix + langSuffix(lang)
}

// LongDescriptionColumn returns the long description column for lang.
func LongDescriptionColumn(lang string) string {
	return longDescPrefix + langSuffix(lang)
}

func langSuffix(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	return strings.ToUpper(lang[:1]) + lang[1:]
}

// languageColumn splits "Name Ar" style headers into their prefix and language code.
func languageColumn(column string) (prefix, lang string, ok bool) {
	for _, p := range []string{namePrefix, shortDescPrefix, longDescPrefix} {
		if suffix, found := strings.CutPrefix(column, p); found {
			suffix = strings.TrimSpace(suffix)
			// "Main Category (EN)" style headers are not language columns
			if suffix == "" || strings.ContainsAny(suffix, " ()") {
				return "", "", false
			}
			return p, strings.ToLower(suffix), true
		}
	}
	return "", "", false
}
