package marketplace

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// DefaultBrand is the marketplace label used by the package-level helpers.
	DefaultBrand = "amazon"
	// DefaultCountryCode is used whenever a country code cannot be inferred.
	DefaultCountryCode = "com"
)

var (
	productIDPattern   = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	// Same suffix grammar as the product URL pattern.
	countryCodePattern = regexp.MustCompile(`^[a-z]+(?:\.[a-z]+)*$`)

	defaultNormalizer = NewNormalizer(DefaultBrand)
)

// Reference identifies one product on one marketplace domain.
type Reference struct {
	BaseURL     string
	ProductID   string
	CountryCode string
}

// URL returns the canonical /dp/ URL for the reference.
func (r Reference) URL() string {
	return r.BaseURL + "dp/" + r.ProductID
}

// Normalizer parses and rebuilds product URLs for a single marketplace brand.
type Normalizer struct {
	brand   string
	pattern *regexp.Regexp
}

// NewNormalizer builds a Normalizer for hosts of the form <sub>.<brand>.<tld>.
// An empty brand selects DefaultBrand.
func NewNormalizer(brand string) *Normalizer {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		brand = DefaultBrand
	}
	pattern := regexp.MustCompile(
		`^https?://(?i:(?:[a-z0-9-]+\.)*` + regexp.QuoteMeta(brand) + `\.([a-z]+(?:\.[a-z]+)*))` +
			`(?:/[^/?#]+)*?/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?#]|$)`,
	)
	return &Normalizer{brand: brand, pattern: pattern}
}

// Brand returns the marketplace label the normalizer matches.
func (n *Normalizer) Brand() string {
	return n.brand
}

// Parse extracts the domain-rooted base URL and the product identifier from
// a product URL. Anything that is not a recognizable product URL yields false;
// there is no partial extraction.
func (n *Normalizer) Parse(raw string) (Reference, bool) {
	m := n.pattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Reference{}, false
	}
	cc := strings.ToLower(m[1])
	return Reference{
		BaseURL:     n.BaseURL(cc),
		ProductID:   m[2],
		CountryCode: cc,
	}, true
}

// Canonicalize returns https://www.<brand>.<cc>/dp/<id>. When countryCode is
// empty it is inferred from originalURL; inference failures fall back to
// DefaultCountryCode.
func (n *Normalizer) Canonicalize(originalURL, productID, countryCode string) string {
	cc := strings.ToLower(strings.TrimSpace(countryCode))
	if cc == "" {
		cc = n.InferCountryCode(originalURL)
	}
	return n.BaseURL(cc) + "dp/" + strings.TrimSpace(productID)
}

// InferCountryCode reads the host labels that follow the brand label, so
// www.amazon.co.uk yields "co.uk".
func (n *Normalizer) InferCountryCode(raw string) string {
	host := hostOf(raw)
	if host == "" {
		return DefaultCountryCode
	}
	labels := strings.Split(host, ".")
	for i, label := range labels {
		if label != n.brand || i+1 >= len(labels) {
			continue
		}
		cc := strings.Join(labels[i+1:], ".")
		if countryCodePattern.MatchString(cc) {
			return cc
		}
		break
	}
	return DefaultCountryCode
}

// BaseURL returns the domain root for a country code, with a trailing slash.
func (n *Normalizer) BaseURL(countryCode string) string {
	cc := strings.ToLower(strings.TrimSpace(countryCode))
	if cc == "" {
		cc = DefaultCountryCode
	}
	return fmt.Sprintf("https://www.%s.%s/", n.brand, cc)
}

// SearchURL builds the keyword search URL for a country code.
func (n *Normalizer) SearchURL(countryCode, query string) string {
	return n.BaseURL(countryCode) + "s?k=" + url.QueryEscape(strings.TrimSpace(query))
}

// IsProductID reports whether s is a bare 10-character product identifier.
func IsProductID(s string) bool {
	return productIDPattern.MatchString(s)
}

// ResolveURL resolves href against base. Absolute hrefs are returned as is;
// unparsable input yields an empty string.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}

// Parse is Normalizer.Parse for the default brand.
func Parse(raw string) (Reference, bool) {
	return defaultNormalizer.Parse(raw)
}

// Canonicalize is Normalizer.Canonicalize for the default brand.
func Canonicalize(originalURL, productID, countryCode string) string {
	return defaultNormalizer.Canonicalize(originalURL, productID, countryCode)
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
