package marketplace

import (
	"regexp"
	"strings"
)

var visitStorePattern = regexp.MustCompile(`(?i)visit\s+the\s+(.+?)\s+store\b`)

// ExtractBrand returns the brand named in a "Visit the <brand> Store" phrase.
func ExtractBrand(text string) (string, bool) {
	m := visitStorePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	brand := strings.TrimSpace(m[1])
	if brand == "" {
		return "", false
	}
	return brand, true
}
