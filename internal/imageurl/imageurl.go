// Package imageurl normalises listing media URLs into the canonical form used
// as the dedup key for catalog images.
package imageurl

import (
	"strings"
)

// SizeHintDelimiter marks the start of a CDN size hint such as "._AC_SX425_".
const SizeHintDelimiter = "._"

// DefaultExtension is appended when a URL carries no image extension.
const DefaultExtension = ".jpg"

// Extensions are the recognised image file extensions, in match order.
var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

var placeholderMarkers = []string{"transparent", "pixel", "placeholder"}

// Canonicalize strips query strings, fragments and size hints from raw and
// guarantees an image extension. It reports false when nothing usable is left.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(u)) == Canonicalize(u).
func Canonicalize(raw string) (string, bool) {
	base := strings.TrimSpace(raw)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}

	if head, _, found := strings.Cut(base, SizeHintDelimiter); found {
		// Everything after the first delimiter is size hint; its trailing
		// extension, when present, is the real asset type.
		tail := base[strings.LastIndex(base, SizeHintDelimiter)+len(SizeHintDelimiter):]
		base = head
		if ext, ok := extension(tail); ok && head != "" {
			return head + ext, true
		}
	}

	if base == "" {
		return "", false
	}
	if _, ok := extension(base); ok {
		return base, true
	}
	return base + DefaultExtension, true
}

// Key returns the canonical form of raw, or "" if raw is unusable.
func Key(raw string) string {
	c, _ := Canonicalize(raw)
	return c
}

// Equal reports whether two URLs address the same asset.
func Equal(a, b string) bool {
	ka, kb := Key(a), Key(b)
	return ka != "" && ka == kb
}

// IsPlaceholder reports whether a URL looks like a transparent pixel or other
// placeholder rather than product media.
func IsPlaceholder(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extension returns the lower-case image extension s ends with.
func extension(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return ext, true
		}
	}
	return "", false
}
