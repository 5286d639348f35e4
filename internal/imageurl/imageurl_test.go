package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"size hint with extension", "https://x/img._AC_SX425_.jpg", "https://x/img.jpg", true},
		{"query string", "https://x/img.jpg?foo=1", "https://x/img.jpg", true},
		{"fragment", "https://x/img.png#zoom", "https://x/img.png", true},
		{"fragment before query", "https://x/img#a?b", "https://x/img.jpg", true},
		{"default extension", "https://x/img", "https://x/img.jpg", true},
		{"size hint without extension", "https://x/img._AC_SX425_", "https://x/img.jpg", true},
		{"size hint keeps png", "https://x/img._SL1500_.png", "https://x/img.png", true},
		{"uppercase extension in hint", "https://x/img._AC_.JPG", "https://x/img.jpg", true},
		{"uppercase extension kept as-is", "https://x/IMG.JPEG", "https://x/IMG.JPEG", true},
		{"stacked size hints", "https://x/img._AC_._SX38_.webp", "https://x/img.webp", true},
		{"amazon cdn", "https://m.media-amazon.com/images/I/71abcDEF12L._AC_SY879_.jpg", "https://m.media-amazon.com/images/I/71abcDEF12L.jpg", true},
		{"surrounding whitespace", "  https://x/img.gif  ", "https://x/img.gif", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"only query", "?a=1", "", false},
		{"only size hint", "._AC_.jpg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Canonicalize(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://x/img._AC_SX425_.jpg",
		"https://x/img.jpg?foo=1",
		"https://x/img",
		"https://x/img._AC_SX425_",
		"https://x/a._X_._Y_.jpg",
		"https://x/dir._v2/img.png",
		"https://x/IMG.JPG",
		"https://x/img.",
		"https://x/img.tiff",
	}

	for _, in := range inputs {
		once, ok := Canonicalize(in)
		if !assert.True(t, ok, in) {
			continue
		}
		twice, ok := Canonicalize(once)
		assert.True(t, ok, once)
		assert.Equal(t, once, twice, "canonicalize not idempotent for %q", in)
	}
}

func TestCanonicalize_DedupEquivalence(t *testing.T) {
	a := Key("https://x/img._AC_SX425_.jpg")
	b := Key("https://x/img.jpg?foo=1")

	assert.Equal(t, "https://x/img.jpg", a)
	assert.Equal(t, a, b)
	assert.True(t, Equal("https://x/img._SX38_.jpg", "https://x/img.jpg#top"))
	assert.False(t, Equal("", ""))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("https://x/transparent-pixel.gif"))
	assert.True(t, IsPlaceholder("https://x/Placeholder.png"))
	assert.False(t, IsPlaceholder("https://m.media-amazon.com/images/I/71abc.jpg"))
}
