// Package resolver maps a search query to a listing identifier by querying a
// search oracle once per candidate domain.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfline/catalog-enricher/internal/listing"
)

// DefaultWindow is how many result links are inspected per domain.
const DefaultWindow = 10

// Searcher runs a query scoped to one domain and returns result links in rank order.
type Searcher interface {
	Search(ctx context.Context, domain, query string) ([]string, error)
}

// Resolver tries candidate domains in order until one yields an identifier.
type Resolver struct {
	searcher Searcher
	window   int
}

// New creates a Resolver inspecting the first window links of each search.
func New(s Searcher, window int) *Resolver {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Resolver{searcher: s, window: window}
}

// Resolve returns the first listing found across domains. Blocked and
// transient failures abandon that domain only; when every domain fails the
// error wraps listing.ErrNotFound alone, with the per-domain causes in its text.
func (r *Resolver) Resolve(ctx context.Context, query string, domains []string) (listing.Resolution, error) {
	if len(domains) == 0 {
		return listing.Resolution{}, fmt.Errorf("%w: no candidate domains", listing.ErrNotFound)
	}

	var errs []error
	for _, domain := range domains {
		if err := ctx.Err(); err != nil {
			return listing.Resolution{}, err
		}

		res, err := r.resolveDomain(ctx, query, domain)
		if err == nil {
			return res, nil
		}
		slog.Debug("Domain yielded no listing", "domain", domain, "kind", listing.Classify(err), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", domain, err))
	}

	return listing.Resolution{}, fmt.Errorf("%w for %q: %v", listing.ErrNotFound, query, errors.Join(errs...))
}

func (r *Resolver) resolveDomain(ctx context.Context, query, domain string) (listing.Resolution, error) {
	links, err := r.searcher.Search(ctx, domain, query)
	if err != nil {
		return listing.Resolution{}, err
	}

	site := listing.SiteName(domain)
	if len(links) > r.window {
		links = links[:r.window]
	}

	sawListing := false
	for _, link := range links {
		if !listing.IsListingLink(link, site) {
			continue
		}
		sawListing = true
		if id, ok := listing.ExtractIdentifier(link); ok {
			return listing.Resolution{Identifier: id, Domain: domain}, nil
		}
	}

	if sawListing {
		return listing.Resolution{}, fmt.Errorf("%w: listing link without identifier", listing.ErrMalformed)
	}
	return listing.Resolution{}, listing.ErrNotFound
}
