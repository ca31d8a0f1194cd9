package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// DomainPropertyPrefix marks a Search Console domain property identifier.
// Domain properties cover every scheme and subdomain of a registrable domain
// and carry no parseable URL.
const DomainPropertyPrefix = "sc-domain:"

// PropertyType distinguishes the two Search Console property naming schemes.
type PropertyType string

const (
	// PropertyURLPrefix is a site verified under a scheme+host string,
	// e.g. "https://example.com/".
	PropertyURLPrefix PropertyType = "URL_PREFIX"

	// PropertyDomain is a site verified as "sc-domain:example.com".
	PropertyDomain PropertyType = "DOMAIN_PROPERTY"
)

// PermissionUnverified is the permission level Search Console reports for
// sites the account can see but has not verified. Such sites are excluded
// from the catalog.
const PermissionUnverified = "siteUnverifiedUser"

// Site is one accessible Search Console property, discovered under a
// specific account. Sites are immutable once created.
type Site struct {
	// SiteURL is the raw property identifier as reported by the API,
	// opaque to callers.
	SiteURL string `json:"siteUrl"`

	// Domain is the canonical registrable domain: lower-case host, no
	// scheme, no leading "www.". Never empty for a well-formed SiteURL.
	Domain string `json:"domain"`

	// PropertyType records which naming scheme SiteURL uses.
	PropertyType PropertyType `json:"propertyType"`

	// PermissionLevel is the account's access level on the site.
	PermissionLevel string `json:"permissionLevel"`

	// Account is the account identifier the site was discovered under.
	Account string `json:"account"`
}

// Canonicalize converts a raw site identifier into its canonical domain and
// property type. Domain properties strip the sc-domain: prefix; URL-prefix
// properties parse as a URL and take the hostname. Identifiers that yield no
// hostname return ErrUnparseableSite so the caller can skip the site instead
// of crashing at query time.
func Canonicalize(rawSiteURL string) (string, PropertyType, error) {
	if strings.HasPrefix(rawSiteURL, DomainPropertyPrefix) {
		d := strings.TrimPrefix(rawSiteURL, DomainPropertyPrefix)
		if d == "" {
			return "", PropertyDomain, fmt.Errorf("%w: %q", ErrUnparseableSite, rawSiteURL)
		}
		return NormalizeForMatch(d), PropertyDomain, nil
	}

	u, err := url.Parse(rawSiteURL)
	if err != nil || u.Hostname() == "" {
		return "", PropertyURLPrefix, fmt.Errorf("%w: %q", ErrUnparseableSite, rawSiteURL)
	}
	return NormalizeForMatch(u.Hostname()), PropertyURLPrefix, nil
}

// NormalizeForMatch lower-cases a domain and strips a single leading "www."
// (only one, not recursive). It is the one normalization used on both sides
// of every filter comparison.
func NormalizeForMatch(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "www.")
	return d
}

// DomainFilter narrows a site set to one canonical domain. The zero value
// matches every site.
type DomainFilter struct {
	domain string
}

// NewDomainFilter builds a filter for the given target domain. An empty
// target yields a match-all filter.
func NewDomainFilter(domain string) DomainFilter {
	return DomainFilter{domain: NormalizeForMatch(domain)}
}

// IsZero reports whether the filter matches all sites.
func (f DomainFilter) IsZero() bool {
	return f.domain == ""
}

// Domain returns the canonicalized target domain, empty for match-all.
func (f DomainFilter) Domain() string {
	return f.domain
}

// Matches reports whether a site's canonical domain equals the filter target.
// Equality only, never substring or prefix match: "example.com" must not
// match "notexample.com". The comparison goes through the same normalization
// as Canonicalize for every site regardless of property type, so domain
// properties match exactly like URL-prefix properties.
func (f DomainFilter) Matches(site Site) bool {
	if f.IsZero() {
		return true
	}
	return NormalizeForMatch(site.Domain) == f.domain
}
