package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/catalog-enricher/internal/catalog"
)

func record(main string, additional ...string) *catalog.Record {
	r := catalog.NewRecord()
	r.Name = "NIVEA Body Lotion 400ml"
	r.LocalizedNames["en"] = r.Name
	r.MainImage = main
	r.AdditionalImages = additional
	return r
}

func TestMerge_MainImagePreserved(t *testing.T) {
	r := record("https://existing/a.jpg")
	d := Discovered{Images: []string{"https://new/a._AC_SX425_.jpg", "https://new/b.jpg"}}

	got, ch := Merge(r, d)
	assert.Equal(t, "https://existing/a.jpg", got.MainImage)
	assert.False(t, ch.MainImageSet)
	assert.Equal(t, []string{"https://new/a.jpg", "https://new/b.jpg"}, got.AdditionalImages,
		"all discovered images are candidates when the main image is curated")
}

func TestMerge_MainImageBackfill(t *testing.T) {
	r := record("")
	d := Discovered{Images: []string{"https://new/a.jpg", "https://new/b._SX38_.jpg"}}

	got, ch := Merge(r, d)
	assert.True(t, ch.MainImageSet)
	assert.Equal(t, "https://new/a.jpg", got.MainImage)
	assert.NotContains(t, got.AdditionalImages, "https://new/a.jpg")
	assert.Equal(t, []string{"https://new/b.jpg"}, got.AdditionalImages)
}

func TestMerge_MainImageFilteredFromAdditional(t *testing.T) {
	r := record("https://x/main._AC_.jpg", "https://x/main.jpg?v=2", "https://x/a.jpg")
	d := Discovered{Images: []string{"https://x/main.jpg", "https://x/b.jpg"}}

	got, _ := Merge(r, d)
	assert.Equal(t, "https://x/main._AC_.jpg", got.MainImage, "curated value is kept verbatim")
	assert.Equal(t, []string{"https://x/a.jpg", "https://x/b.jpg"}, got.AdditionalImages)
}

func TestMerge_DedupAndOrder(t *testing.T) {
	r := record("https://x/main.jpg", "https://x/A.jpg", "https://x/B.jpg")
	d := Discovered{Images: []string{"https://x/B._AC_SX425_.jpg", "https://x/C.jpg?foo=1"}}

	got, ch := Merge(r, d)
	assert.Equal(t, []string{"https://x/A.jpg", "https://x/B.jpg", "https://x/C.jpg"}, got.AdditionalImages)
	assert.Equal(t, 1, ch.ImagesAdded)
}

func TestMerge_StoredImagesCanonicalized(t *testing.T) {
	r := record("https://x/main.jpg", "https://x/a._AC_.jpg", "https://x/a.jpg", "https://x/b")

	got, ch := Merge(r, Discovered{})
	assert.Equal(t, []string{"https://x/a.jpg", "https://x/b.jpg"}, got.AdditionalImages)
	assert.Equal(t, 3, ch.ImagesRewritten)
	assert.True(t, ch.Changed())
}

func TestMerge_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		rec  *catalog.Record
		d    Discovered
	}{
		{
			name: "backfill main",
			rec:  record(""),
			d:    Discovered{Images: []string{"https://new/a._AC_.jpg", "https://new/b", "https://new/a.jpg"}},
		},
		{
			name: "curated main",
			rec:  record("https://x/m._SX1_.png", "https://x/a._AC_.jpg"),
			d:    Discovered{Images: []string{"https://x/m.png", "https://x/c.jpg"}},
		},
		{
			name: "localized title",
			rec:  record("", "https://x/a.jpg"),
			d: Discovered{
				Images:            []string{"https://x/a.jpg", "https://x/b.jpg"},
				LocalizedTitle:    "لوشن نيفيا",
				Language:          "ar",
				ShortDescriptions: map[string]string{"en": "Deep moisture"},
			},
		},
		{
			name: "nothing discovered",
			rec:  record("https://x/m.jpg"),
			d:    Discovered{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, _ := Merge(tt.rec, tt.d)
			twice, ch := Merge(once, tt.d)
			assert.Equal(t, once, twice)
			assert.False(t, ch.Changed(), "second merge reported changes: %+v", ch)
		})
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	r := record("", "https://x/a._AC_.jpg")
	_, _ = Merge(r, Discovered{Images: []string{"https://x/b.jpg"}, LocalizedTitle: "t", Language: "ar"})

	assert.Equal(t, "", r.MainImage)
	assert.Equal(t, []string{"https://x/a._AC_.jpg"}, r.AdditionalImages)
	assert.Equal(t, "NIVEA Body Lotion 400ml", r.Name)
	assert.Empty(t, r.LocalizedName("ar"))
}

func TestMerge_LocalizedTitle(t *testing.T) {
	r := catalog.NewRecord()
	r.Name = "NIVEA Body Lotion 400ml"

	got, ch := Merge(r, Discovered{LocalizedTitle: "  لوشن نيفيا ", Language: "AR"})
	require.True(t, ch.NameReplaced)
	assert.True(t, ch.NameBackfilled)
	assert.Equal(t, "لوشن نيفيا", got.Name)
	assert.Equal(t, "لوشن نيفيا", got.LocalizedName("ar"))
	assert.Equal(t, "NIVEA Body Lotion 400ml", got.LocalizedName("en"), "original name is backfilled before replacement")
}

func TestMerge_LocalizedTitleKeepsStoredDefault(t *testing.T) {
	r := record("")
	r.LocalizedNames["en"] = "Curated English name"

	got, ch := Merge(r, Discovered{LocalizedTitle: "لوشن", Language: "ar"})
	assert.False(t, ch.NameBackfilled)
	assert.Equal(t, "Curated English name", got.LocalizedName("en"))
}

func TestMerge_DescriptionsFillOnlyEmpty(t *testing.T) {
	r := record("")
	r.ShortDescription["en"] = "Curated"

	got, ch := Merge(r, Discovered{
		ShortDescriptions: map[string]string{"en": "Scraped", "ar": "ترطيب"},
		LongDescriptions:  map[string]string{"en": "Long text", "fr": "  "},
	})
	assert.Equal(t, "Curated", got.ShortDescription["en"])
	assert.Equal(t, "ترطيب", got.ShortDescription["ar"])
	assert.Equal(t, "Long text", got.LongDescription["en"])
	assert.NotContains(t, got.LongDescription, "fr")
	assert.Equal(t, 2, ch.DescriptionsFilled)
}

func TestMerge_UnusableImagesDropped(t *testing.T) {
	got, ch := Merge(record(""), Discovered{Images: []string{"", "   ", "?x=1", "https://x/a.jpg"}})
	assert.Equal(t, "https://x/a.jpg", got.MainImage)
	assert.Empty(t, got.AdditionalImages)
	assert.True(t, ch.MainImageSet)
}
