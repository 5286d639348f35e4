// Package brand detects the brand of a product from its free-text name.
package brand

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern maps a regular expression onto a brand. When Name is empty the
// matched text itself (first capture group, else the whole match) is the brand.
type Pattern struct {
	Expr string `mapstructure:"pattern" yaml:"pattern"`
	Name string `mapstructure:"name" yaml:"name,omitempty"`
}

// trademarkGlyphs are removed from matched brand text.
var trademarkGlyphs = strings.NewReplacer("®", "", "™", "", "©", "")

// DefaultPatterns is the built-in brand table, in priority order.
func DefaultPatterns() []Pattern {
	exprs := []string{
		`\b(NATURE REPUBLIC)\b`,
		`\b(CHICCO)\b`,
		`\b(ACCU-CHEK|ACCUCHEK)\b`,
		`\b(JCKOO)\b`,
		`\b(KARSEELL®|KARSEELL)\b`,
		`\b(EDG PLANT)\b`,
		`\b(OLAY)\b`,
		`\b(NIVEA)\b`,
		`\b(L'OREAL|LOREAL)\b`,
		`\b(GARNIER)\b`,
		`\b(PANTENE)\b`,
		`\b(HEAD & SHOULDERS|HEADANDSHOULDERS)\b`,
		`\b(DOVE)\b`,
		`\b(SEBAMED)\b`,
		`\b(VICHY)\b`,
		`\b(LA ROCHE-POSAY|LAROCHEPOSAY)\b`,
		`\b(AVENE)\b`,
		`\b(CETAPHIL)\b`,
		`\b(BIODERMA)\b`,
		`\b(CLINIQUE)\b`,
		`\b(ESTEE LAUDER|ESTEELAUDER)\b`,
		`\b(MAC)\b`,
		`\b(MAYBELLINE)\b`,
		`\b(REVLON)\b`,
		`\b(RIMMEL)\b`,
	}
	patterns := make([]Pattern, len(exprs))
	for i, e := range exprs {
		patterns[i] = Pattern{Expr: e}
	}
	return patterns
}

type compiled struct {
	re   *regexp.Regexp
	name string
}

// Extractor matches product names against an ordered brand table and falls
// back to a capitalisation heuristic.
type Extractor struct {
	patterns []compiled
}

// NewExtractor compiles patterns in order. Word boundaries are dropped so that
// brands glued to other tokens ("NIVEA-Soft") still match; any name a bounded
// pattern matches is matched by its unbounded form as well.
func NewExtractor(patterns []Pattern) (*Extractor, error) {
	e := &Extractor{patterns: make([]compiled, 0, len(patterns))}
	for i, p := range patterns {
		expr := strings.ReplaceAll(p.Expr, `\b`, "")
		if strings.TrimSpace(expr) == "" {
			return nil, fmt.Errorf("brand pattern %d is empty", i)
		}
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("brand pattern %d (%q) is invalid: %w", i, p.Expr, err)
		}
		e.patterns = append(e.patterns, compiled{re: re, name: strings.TrimSpace(p.Name)})
	}
	return e, nil
}

// Default returns an extractor over DefaultPatterns.
func Default() *Extractor {
	e, err := NewExtractor(DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the detected brand of a product name.
func (e *Extractor) Extract(productName string) (string, bool) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return "", false
	}

	upper := strings.ToUpper(name)
	for _, p := range e.patterns {
		m := p.re.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		if p.name != "" {
			return p.name, true
		}
		text := m[0]
		if len(m) > 1 && m[1] != "" {
			text = m[1]
		}
		if brand := strings.TrimSpace(trademarkGlyphs.Replace(text)); brand != "" {
			return brand, true
		}
	}

	return heuristic(name)
}

// heuristic treats a leading upper-case or capitalised word (longer than two
// characters) as the brand, joined with the second word when it qualifies too.
func heuristic(name string) (string, bool) {
	words := strings.Fields(name)
	if len(words) == 0 || !looksLikeBrand(words[0]) {
		return "", false
	}
	if len(words) > 1 && looksLikeBrand(words[1]) {
		return words[0] + " " + words[1], true
	}
	return words[0], true
}

func looksLikeBrand(word string) bool {
	if isUpper(word) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(first) && utf8.RuneCountInString(word) > 2
}

// isUpper reports whether word has at least one cased letter and no lower-case ones.
func isUpper(word string) bool {
	cased := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
