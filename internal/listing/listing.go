// Package listing holds the types and error taxonomy shared by the adapters
// that talk to the external listing site.
package listing

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotFound means a query or identifier yielded no usable listing.
	ErrNotFound = errors.New("listing not found")
	// ErrBlocked means the provider answered with an automated-traffic challenge.
	ErrBlocked = errors.New("blocked by provider challenge")
	// ErrTransient covers network failures and timeouts.
	ErrTransient = errors.New("transient fetch failure")
	// ErrMalformed means a successful response could not be interpreted.
	ErrMalformed = errors.New("malformed listing data")
)

// Kind is the recoverable error class of a collaborator failure.
type Kind string

const (
	KindNone      Kind = ""
	KindNotFound  Kind = "not_found"
	KindBlocked   Kind = "blocked"
	KindTransient Kind = "transient"
	KindMalformed Kind = "malformed"
)

// Classify maps err into the taxonomy. Network errors, timeouts and anything
// unrecognised count as transient.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBlocked):
		return KindBlocked
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	default:
		return KindTransient
	}
}

// Resolution is a listing found for a query.
type Resolution struct {
	Identifier string
	Domain     string
}

// Details is the raw content of one listing page in one language.
type Details struct {
	Identifier string
	Domain     string
	Language   string
	Images     []string
	Bullets    []string
	LongText   string
	Title      string
}

// IdentifierLength is the fixed length of a listing identifier.
const IdentifierLength = 10

var (
	identifierPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?]|$)`)
	listingMarkers    = []string{"/dp/", "/gp/product/"}
)

// ExtractIdentifier returns the identifier embedded in a listing URL.
func ExtractIdentifier(link string) (string, bool) {
	m := identifierPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsListingLink reports whether link points at a product listing on site.
// site is the bare registrable name such as "amazon".
func IsListingLink(link, site string) bool {
	if site != "" && !strings.Contains(strings.ToLower(link), strings.ToLower(site)) {
		return false
	}
	for _, marker := range listingMarkers {
		if strings.Contains(link, marker) {
			return true
		}
	}
	return false
}

// SiteName returns the first label of a domain: "amazon.sa" gives "amazon".
func SiteName(domain string) string {
	d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	name, _, _ := strings.Cut(d, ".")
	return name
}
