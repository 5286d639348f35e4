package catalog

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

const sampleCSV = "ID,Product,Barcode,Main Category (EN),Sub-Category (EN),Image,Additional Images\n" +
	"1,NIVEA Body Lotion 400ml,6281006,Personal Care,Body,nan,https://x/a.jpg| none |https://x/b.jpg\n" +
	"2,Generic widget,,Home,,https://x/main.jpg,\n" +
	",,,,,,\n"

func TestClean(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"nan", ""},
		{"NaN", ""},
		{"None", ""},
		{" https://x/a.jpg ", "https://x/a.jpg"},
		{"nano", "nano"},
	}

	for _, tt := range tests {
		if result := Clean(tt.input); result != tt.expected {
			t.Errorf("Clean(%q): expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}

func TestSplitImages(t *testing.T) {
	got := SplitImages("https://x/a.jpg| nan ||https://x/b.jpg|None")
	expected := []string{"https://x/a.jpg", "https://x/b.jpg"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if got := SplitImages("nan"); got != nil {
		t.Errorf("Expected nil for sentinel column, got %v", got)
	}
}

func TestReadCSV(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if cat.Len() != 2 {
		t.Fatalf("Expected 2 rows (blank row dropped), got %d", cat.Len())
	}

	first := cat.Records[0]
	if first.Name != "NIVEA Body Lotion 400ml" {
		t.Errorf("Expected product name, got %q", first.Name)
	}
	if first.HasMainImage() {
		t.Errorf("Expected sentinel main image to be absent, got %q", first.MainImage)
	}
	if !reflect.DeepEqual(first.AdditionalImages, []string{"https://x/a.jpg", "https://x/b.jpg"}) {
		t.Errorf("Unexpected additional images: %v", first.AdditionalImages)
	}
	if first.LocalizedName("en") != first.Name {
		t.Errorf("Expected Name En to be initialised from Product, got %q", first.LocalizedName("en"))
	}
	if first.Field(ColBarcode) != "6281006" {
		t.Errorf("Expected barcode to be preserved, got %q", first.Field(ColBarcode))
	}

	second := cat.Records[1]
	if second.MainImage != "https://x/main.jpg" {
		t.Errorf("Expected main image, got %q", second.MainImage)
	}
	if second.AdditionalImages != nil {
		t.Errorf("Expected no additional images, got %v", second.AdditionalImages)
	}
}

func TestReadCSV_StripsBOM(t *testing.T) {
	input := "\ufeff" + "Product,Name Ar\nDove Soap,صابون دوف\n"

	cat, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if cat.Records[0].Name != "Dove Soap" {
		t.Errorf("Expected BOM to be stripped from header, got name %q", cat.Records[0].Name)
	}
	if cat.Records[0].LocalizedName("ar") != "صابون دوف" {
		t.Errorf("Expected Arabic name, got %q", cat.Records[0].LocalizedName("ar"))
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	cat.Records[0].LocalizedNames["ar"] = "لوشن نيفيا"
	cat.Records[0].LocalizedNames["fr"] = "Lotion NIVEA"

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cat); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("\xEF\xBB\xBF")) {
		t.Error("Expected output to start with a UTF-8 byte order mark")
	}

	header := strings.SplitN(strings.TrimPrefix(buf.String(), "\ufeff"), "\n", 2)[0]
	if !strings.HasPrefix(header, "ID,Product,Barcode,") {
		t.Errorf("Expected input column order to be kept, got %q", header)
	}
	if !strings.Contains(header, "Name Fr") {
		t.Errorf("Expected new language column to be appended, got %q", header)
	}

	again, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV of written output failed: %v", err)
	}
	if again.Records[0].LocalizedName("ar") != "لوشن نيفيا" {
		t.Errorf("Arabic name lost in round trip: %q", again.Records[0].LocalizedName("ar"))
	}
	if !reflect.DeepEqual(again.Records[0].AdditionalImages, cat.Records[0].AdditionalImages) {
		t.Errorf("Additional images changed in round trip: %v", again.Records[0].AdditionalImages)
	}
}

func TestLanguageColumn(t *testing.T) {
	tests := []struct {
		column string
		prefix string
		lang   string
		ok     bool
	}{
		{"Name En", namePrefix, "en", true},
		{"Name Ar", namePrefix, "ar", true},
		{"Short Description Ar", shortDescPrefix, "ar", true},
		{"Long Description En", longDescPrefix, "en", true},
		{"Main Category (EN)", "", "", false},
		{"Name", "", "", false},
		{"Name (EN)", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			prefix, lang, ok := languageColumn(tt.column)
			if ok != tt.ok || prefix != tt.prefix || lang != tt.lang {
				t.Errorf("Expected (%q, %q, %v), got (%q, %q, %v)", tt.prefix, tt.lang, tt.ok, prefix, lang, ok)
			}
		})
	}
}

func TestClone(t *testing.T) {
	rec := NewRecord()
	rec.AdditionalImages = []string{"a"}
	rec.LocalizedNames["en"] = "x"

	c := rec.Clone()
	c.AdditionalImages[0] = "b"
	c.LocalizedNames["en"] = "y"

	if rec.AdditionalImages[0] != "a" || rec.LocalizedNames["en"] != "x" {
		t.Error("Clone shares state with the original record")
	}
}
