// Package merge folds newly discovered listing data into a catalog record
// without overwriting curated fields or duplicating images.
package merge

import (
	"strings"

	"github.com/shelfline/catalog-enricher/internal/catalog"
	"github.com/shelfline/catalog-enricher/internal/imageurl"
)

// DefaultLanguage is the language the display name is written in before any
// localized title replaces it.
const DefaultLanguage = "en"

// Discovered is everything learnt about one product in one run.
type Discovered struct {
	// Images in discovery order. The first usable one is the main candidate.
	Images []string

	// LocalizedTitle, when set, replaces the display name and is stored
	// under Language.
	LocalizedTitle string
	Language       string

	// DefaultLanguage receives the pre-localization display name. Empty
	// means DefaultLanguage.
	DefaultLanguage string

	// Per-language descriptions; only fill fields that are empty.
	ShortDescriptions map[string]string
	LongDescriptions  map[string]string
}

// Changes summarises what a merge altered.
type Changes struct {
	MainImageSet       bool
	ImagesAdded        int
	ImagesRewritten    int
	NameReplaced       bool
	NameBackfilled     bool
	DescriptionsFilled int
}

// Changed reports whether the record differs from its input.
func (c Changes) Changed() bool {
	return c.MainImageSet || c.ImagesAdded > 0 || c.ImagesRewritten > 0 ||
		c.NameReplaced || c.NameBackfilled || c.DescriptionsFilled > 0
}

// Merge returns existing updated with d. existing is not modified.
//
// Merge is idempotent: Merge(Merge(r, d), d) leaves the record unchanged.
func Merge(existing *catalog.Record, d Discovered) (*catalog.Record, Changes) {
	out := existing.Clone()
	var ch Changes

	candidates := canonicalList(d.Images)
	if !out.HasMainImage() && len(candidates) > 0 {
		out.MainImage = candidates[0]
		candidates = candidates[1:]
		ch.MainImageSet = true
	}

	out.AdditionalImages, ch.ImagesAdded, ch.ImagesRewritten = mergeAdditional(out.MainImage, existing.AdditionalImages, candidates)

	if title := strings.TrimSpace(d.LocalizedTitle); title != "" {
		ch.NameBackfilled, ch.NameReplaced = applyTitle(out, title, d.language(), d.defaultLanguage())
	}

	ch.DescriptionsFilled += fillEmpty(out.ShortDescription, d.ShortDescriptions)
	ch.DescriptionsFilled += fillEmpty(out.LongDescription, d.LongDescriptions)

	return out, ch
}

// mergeAdditional keeps the stored list as the prefix, rewritten to canonical
// form, then appends new candidates. The main image never appears in the
// result. rewritten counts stored entries that were changed or dropped.
func mergeAdditional(main string, stored, candidates []string) (merged []string, added, rewritten int) {
	seen := make(map[string]bool, len(stored)+len(candidates))
	if key := imageurl.Key(main); key != "" {
		seen[key] = true
	}

	for _, raw := range stored {
		key := imageurl.Key(raw)
		if key == "" || seen[key] {
			rewritten++
			continue
		}
		if key != raw {
			rewritten++
		}
		seen[key] = true
		merged = append(merged, key)
	}

	for _, key := range candidates {
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, key)
		added++
	}

	return merged, added, rewritten
}

// applyTitle replaces the display name with a localized title, first saving
// the current name under the default language if nothing is stored there.
func applyTitle(r *catalog.Record, title, lang, defaultLang string) (backfilled, replaced bool) {
	if strings.TrimSpace(r.LocalizedNames[defaultLang]) == "" && strings.TrimSpace(r.Name) != "" {
		r.LocalizedNames[defaultLang] = r.Name
		backfilled = true
	}
	if r.LocalizedNames[lang] != title {
		r.LocalizedNames[lang] = title
		replaced = true
	}
	if r.Name != title {
		r.Name = title
		replaced = true
	}
	return backfilled, replaced
}

func fillEmpty(dst, src map[string]string) int {
	filled := 0
	for lang, v := range src {
		lang = strings.ToLower(strings.TrimSpace(lang))
		v = strings.TrimSpace(v)
		if lang == "" || v == "" || strings.TrimSpace(dst[lang]) != "" {
			continue
		}
		dst[lang] = v
		filled++
	}
	return filled
}

// canonicalList canonicalizes raw URLs, dropping unusable and repeated ones.
func canonicalList(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, u := range raw {
		key := imageurl.Key(u)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func (d Discovered) language() string {
	if lang := strings.ToLower(strings.TrimSpace(d.Language)); lang != "" {
		return lang
	}
	return d.defaultLanguage()
}

func (d Discovered) defaultLanguage() string {
	if lang := strings.ToLower(strings.TrimSpace(d.DefaultLanguage)); lang != "" {
		return lang
	}
	return DefaultLanguage
}
