package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shelfline/catalog-enricher/internal/listing"
	"github.com/shelfline/catalog-enricher/internal/query"
	"github.com/shelfline/catalog-enricher/internal/webclient"
)

// DuckDuckGoEndpoint is the HTML-only search endpoint.
const DuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// resultSelectors locate result links, most specific first.
var resultSelectors = []string{
	"h2 a",
	`a[data-testid="result-title-a"]`,
	".result__a",
	`a[href*="amazon"]`,
}

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*webclient.Page, error)
}

// DuckDuckGo searches the web through DuckDuckGo's HTML endpoint.
type DuckDuckGo struct {
	Fetcher  Fetcher
	Endpoint string
}

// NewDuckDuckGo creates a searcher over f.
func NewDuckDuckGo(f Fetcher) *DuckDuckGo {
	return &DuckDuckGo{Fetcher: f, Endpoint: DuckDuckGoEndpoint}
}

// Search implements Searcher.
func (d *DuckDuckGo) Search(ctx context.Context, domain, q string) ([]string, error) {
	u := d.Endpoint + "?q=" + url.QueryEscape(query.Scoped(domain, q))

	page, err := d.Fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	if strings.Contains(page.Body, "anomaly-modal") || webclient.IsChallenge(page) {
		return nil, fmt.Errorf("%w: search challenge for %s", listing.ErrBlocked, domain)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse search results: %w", listing.ErrMalformed, err)
	}

	var links []string
	seen := make(map[string]bool)
	for _, sel := range resultSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			link := decodeRedirect(href)
			if link == "" || seen[link] {
				return
			}
			seen[link] = true
			links = append(links, link)
		})
	}

	return links, nil
}

// decodeRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" links.
func decodeRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}
