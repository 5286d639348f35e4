// Package query composes search strings for the listing search oracle.
package query

import "strings"

// Build joins brand, name and the most specific category into one
// whitespace-separated query. Blank parts are skipped.
func Build(name, brand, category, subcategory string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{brand, name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if sub := strings.TrimSpace(subcategory); sub != "" {
		parts = append(parts, sub)
	} else if cat := strings.TrimSpace(category); cat != "" {
		parts = append(parts, cat)
	}

	return strings.Join(parts, " ")
}

// Scoped restricts a query to one site the way web search engines expect.
func Scoped(domain, q string) string {
	return "site:" + strings.TrimSpace(domain) + " " + q
}
