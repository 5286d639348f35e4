// Package detail scrapes media and text from a listing's product page.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/k3a/html2text"

	"github.com/shelfline/catalog-enricher/internal/imageurl"
	"github.com/shelfline/catalog-enricher/internal/listing"
	"github.com/shelfline/catalog-enricher/internal/webclient"
)

// DefaultMaxImages caps the raw image URLs taken from one page.
const DefaultMaxImages = 5

var (
	heroSelectors = []string{
		"#landingImage",
		"#imgTagWrapperId img",
		".a-dynamic-image",
	}
	gallerySelectors = []string{
		"#imageBlock_feature_div ul li img",
		".a-button-thumbnail img",
		"#altImages ul li img",
	}
	longTextSelectors = []string{
		"#productDescription",
		"#aplus",
	}
)

const (
	bulletSelector = "#feature-bullets ul li span.a-list-item"
	titleSelector  = "#productTitle"
)

// PageFetcher retrieves a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*webclient.Page, error)
}

// Fetcher reads product pages over HTTP.
type Fetcher struct {
	pages     PageFetcher
	maxImages int
}

// NewFetcher creates a Fetcher keeping at most maxImages images per page.
func NewFetcher(pages PageFetcher, maxImages int) *Fetcher {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &Fetcher{pages: pages, maxImages: maxImages}
}

// ProductURL is the address of a listing page in a given language.
func ProductURL(id, domain, lang string) string {
	return fmt.Sprintf("https://www.%s/-/%s/dp/%s", domain, lang, id)
}

// FetchDetails loads one listing page. A challenge page yields
// listing.ErrBlocked and no partial data.
func (f *Fetcher) FetchDetails(ctx context.Context, id, domain, lang string) (listing.Details, error) {
	url := ProductURL(id, domain, lang)
	page, err := f.pages.Fetch(ctx, url)
	if err != nil {
		return listing.Details{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if webclient.IsChallenge(page) {
		return listing.Details{}, fmt.Errorf("%w: challenge page at %s", listing.ErrBlocked, page.URL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return listing.Details{}, fmt.Errorf("%w: failed to parse %s: %w", listing.ErrMalformed, url, err)
	}

	d := listing.Details{
		Identifier: id,
		Domain:     domain,
		Language:   lang,
		Images:     f.images(doc),
		Bullets:    bullets(doc),
		LongText:   longText(doc),
		Title:      cleanText(doc.Find(titleSelector).First().Text()),
	}
	slog.Debug("Parsed product page", "id", id, "domain", domain, "lang", lang, "images", len(d.Images), "has_title", d.Title != "")

	return d, nil
}

// images takes one hero image, then gallery thumbnails until maxImages.
func (f *Fetcher) images(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(src string) bool {
		key := imageurl.Key(src)
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
		out = append(out, src)
		return true
	}

	for _, sel := range heroSelectors {
		src, _ := doc.Find(sel).First().Attr("src")
		if usable(src) && add(src) {
			break
		}
	}

	for _, sel := range gallerySelectors {
		if len(out) >= f.maxImages {
			break
		}
		thumbs := doc.Find(sel)
		thumbs.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= f.maxImages*2 || len(out) >= f.maxImages {
				return false
			}
			src, _ := s.Attr("data-old-src")
			if !usable(src) {
				src, _ = s.Attr("src")
			}
			if usable(src) && !imageurl.IsPlaceholder(src) {
				add(src)
			}
			return true
		})
	}

	if len(out) > f.maxImages {
		out = out[:f.maxImages]
	}
	return out
}

func usable(src string) bool {
	return strings.HasPrefix(strings.TrimSpace(src), "http")
}

func bullets(doc *goquery.Document) []string {
	var out []string
	doc.Find(bulletSelector).Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func longText(doc *goquery.Document) string {
	for _, sel := range longTextSelectors {
		html, err := doc.Find(sel).First().Html()
		if err != nil || strings.TrimSpace(html) == "" {
			continue
		}
		if text := strings.TrimSpace(html2text.HTML2Text(html)); text != "" {
			return text
		}
	}
	return ""
}

// cleanText collapses runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
