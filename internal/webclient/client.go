// Package webclient fetches HTML pages from the listing site and its search
// oracle, mapping HTTP outcomes onto the listing error taxonomy.
package webclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/shelfline/catalog-enricher/internal/listing"
	"github.com/shelfline/catalog-enricher/internal/pacing"
)

// DefaultUserAgents are rotated across requests when none are configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
}

// maxBodyBytes bounds how much of a page is read.
const maxBodyBytes = 4 << 20

// Page is a fetched HTML document.
type Page struct {
	URL    string
	Status int
	Body   string
}

// Client issues paced GET requests.
type Client struct {
	HTTPClient *http.Client
	Pacer      *pacing.Pacer
	UserAgents []string
	Language   string
}

// New creates a client with the given request timeout and pacer.
func New(timeout time.Duration, pacer *pacing.Pacer, userAgents []string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if len(userAgents) == 0 {
		userAgents = DefaultUserAgents
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Pacer:      pacer,
		UserAgents: userAgents,
	}
}

// Fetch waits for the pacer and then GETs url. Errors wrap listing.ErrBlocked,
// listing.ErrNotFound or listing.ErrTransient.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := c.Pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", listing.ErrTransient, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if c.Language != "" {
		req.Header.Set("Accept-Language", c.Language)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", listing.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", listing.ErrTransient, err)
	}

	final := url
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	slog.Debug("Fetched page", "url", url, "final_url", final, "status", resp.StatusCode, "bytes", len(body))

	return &Page{URL: final, Status: resp.StatusCode, Body: string(body)}, nil
}

func (c *Client) userAgent() string {
	if len(c.UserAgents) == 0 {
		return DefaultUserAgents[0]
	}
	return c.UserAgents[rand.IntN(len(c.UserAgents))]
}

func statusError(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: status %d", listing.ErrBlocked, status)
	case status == http.StatusNotFound, status == http.StatusGone:
		return fmt.Errorf("%w: status %d", listing.ErrNotFound, status)
	default:
		return fmt.Errorf("%w: status %d", listing.ErrTransient, status)
	}
}

// captchaMarkers identify provider challenge pages.
var captchaMarkers = []string{
	"enter the characters you see below",
	"sorry, we just need to make sure you're not a robot",
}

// IsChallenge reports whether a fetched page is an automated-traffic challenge.
func IsChallenge(p *Page) bool {
	if p == nil {
		return false
	}
	if strings.Contains(strings.ToLower(p.URL), "captcha") {
		return true
	}
	body := strings.ToLower(p.Body)
	for _, m := range captchaMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}
