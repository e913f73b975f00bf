// Package identity holds the browser impersonation profiles used to shape
// outgoing requests, and the rotation state that moves between them after
// a request is blocked.
package identity

import (
	"net/http"
	"sort"
	"strings"
)

// DefaultProfile is the profile a client starts with when none is configured.
const DefaultProfile = "chrome119"

const (
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	acceptLang = "en-US,en;q=0.9"
)

// Profile is a named set of headers mimicking one real browser.
type Profile struct {
	Name    string
	headers http.Header
}

// UserAgent returns the profile's User-Agent header.
func (p Profile) UserAgent() string {
	return p.headers.Get("User-Agent")
}

// Header builds the request header for the profile. A non-empty referer is
// sent as Referer; overrides replace profile values key by key.
func (p Profile) Header(referer string, overrides http.Header) http.Header {
	h := p.headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	if referer != "" {
		h.Set("Referer", referer)
		h.Set("Sec-Fetch-Site", "same-origin")
	}
	for key, values := range overrides {
		h.Del(key)
		for _, v := range values {
			h.Add(key, v)
		}
	}
	return h
}

func chromium(name, ua, brands, platform string) Profile {
	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept", acceptHTML)
	h.Set("Accept-Language", acceptLang)
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Ch-Ua", brands)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", platform)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	return Profile{Name: name, headers: h}
}

func gecko(name, ua, accept string) Profile {
	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept", accept)
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	return Profile{Name: name, headers: h}
}

var builtin = []Profile{
	chromium("chrome119",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		`"Google Chrome";v="119", "Chromium";v="119", "Not?A_Brand";v="24"`,
		`"Windows"`),
	chromium("chrome124",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		`"Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99"`,
		`"macOS"`),
	chromium("edge122",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
		`"Chromium";v="122", "Not(A:Brand";v="24", "Microsoft Edge";v="122"`,
		`"Windows"`),
	gecko("safari17",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
		"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"),
	gecko("firefox125",
		"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
		"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"),
}

// Profiles returns the built-in profiles in rotation order.
func Profiles() []Profile {
	out := make([]Profile, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup finds a built-in profile by case-insensitive name.
func Lookup(name string) (Profile, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range builtin {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Names lists the built-in profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for _, p := range builtin {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
