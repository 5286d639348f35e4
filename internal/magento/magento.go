// Package magento maps catalog records onto the Magento product import CSV.
package magento

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shelfline/catalog-enricher/internal/catalog"
)

// Columns is the import header, in order.
var Columns = []string{
	"sku", "store_view_code", "attribute_set_code", "product_type", "categories",
	"product_websites", "name", "description", "short_description", "weight",
	"product_online", "tax_class_name", "visibility", "price", "url_key",
	"meta_title", "meta_keywords", "meta_description", "base_image", "small_image",
	"small_image_label", "thumbnail_image", "display_product_options_in", "qty",
	"additional_images", "additional_attributes",
}

const metaDescriptionLimit = 255

var (
	scientificBarcode = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[eE][+-]?[0-9]+$`)
	nonAlnum          = regexp.MustCompile(`[^a-zA-Z0-9]`)
	urlKeySeparators  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Product is one import row.
type Product struct {
	SKU              string
	Categories       string
	Name             string
	Description      string
	ShortDescription string
	Price            string
	URLKey           string
	MetaDescription  string
	Image            string
	Quantity         string
	AdditionalImages string
}

// Map converts records to import rows. Records sharing a valid barcode are
// collapsed to the first one, and generated SKUs are made unique.
func Map(records []*catalog.Record) []Product {
	seenBarcodes := make(map[string]bool)
	usedSKUs := make(map[string]bool)
	out := make([]Product, 0, len(records))

	for _, rec := range records {
		barcode := validBarcode(rec.Field(catalog.ColBarcode))
		if barcode != "" {
			if seenBarcodes[barcode] {
				continue
			}
			seenBarcodes[barcode] = true
		}

		sku := barcode
		if sku == "" {
			sku = generatedSKU(rec)
		}
		final := sku
		for n := 1; usedSKUs[final]; n++ {
			final = fmt.Sprintf("%s-%d", sku, n)
		}
		usedSKUs[final] = true

		shortEN := rec.ShortDescription["en"]
		description := rec.LongDescription["en"]
		if description == "" {
			description = shortEN
		}

		out = append(out, Product{
			SKU:              final,
			Categories:       categories(rec.Category, rec.Subcategory),
			Name:             rec.Name,
			Description:      description,
			ShortDescription: shortEN,
			Price:            withDefault(strings.TrimSpace(rec.Field(catalog.ColPrice)), "1"),
			URLKey:           URLKey(rec.Name),
			MetaDescription:  truncateRunes(shortEN, metaDescriptionLimit),
			Image:            rec.MainImage,
			Quantity:         withDefault(strings.TrimSpace(rec.Field(catalog.ColQuantity)), "1"),
			AdditionalImages: catalog.JoinImages(rec.AdditionalImages),
		})
	}
	return out
}

// Row renders p in Columns order.
func (p Product) Row() []string {
	return []string{
		p.SKU, "", "Default", "simple", p.Categories,
		"base", p.Name, p.Description, p.ShortDescription, "",
		"1", "", "Catalog, Search", p.Price, p.URLKey,
		p.Name, "", p.MetaDescription, p.Image, p.Image,
		"", p.Image, "Block after Info Column", p.Quantity,
		p.AdditionalImages, "requires_prescription=No",
	}
}

// WriteCSV writes the import file.
func WriteCSV(w io.Writer, products []Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range products {
		if err := cw.Write(p.Row()); err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.SKU, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// URLKey lower-cases name and joins its alphanumeric runs with dashes.
func URLKey(name string) string {
	return strings.Trim(urlKeySeparators.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func validBarcode(raw string) string {
	b := strings.TrimSpace(raw)
	if b == "" || scientificBarcode.MatchString(b) {
		return ""
	}
	return b
}

func generatedSKU(rec *catalog.Record) string {
	id := withDefault(strings.TrimSpace(rec.Field(catalog.ColID)), "0")
	if len(id) < 3 {
		id = strings.Repeat("0", 3-len(id)) + id
	}
	return skuPrefix(rec.Category) + skuPrefix(rec.Subcategory) + id
}

func skuPrefix(s string) string {
	p := nonAlnum.ReplaceAllString(withDefault(s, "GEN"), "")
	if len(p) > 3 {
		p = p[:3]
	}
	p = strings.ToUpper(p)
	return p + strings.Repeat("X", 3-len(p))
}

func categories(main, sub string) string {
	switch {
	case main != "" && sub != "":
		return fmt.Sprintf("Default Category/%s/%s,Default Category/%s,All Products,Default Category", main, sub, main)
	case main != "":
		return fmt.Sprintf("Default Category/%s,All Products,Default Category", main)
	default:
		return "All Products,Default Category"
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
