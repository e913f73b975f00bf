package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JakeFAU/marketplace-scraper/internal/identity"
	"github.com/JakeFAU/marketplace-scraper/internal/marketplace"
)

// Config holds the settings for a Client. It is decoupled from Viper so the
// client can be configured and tested without a config file. A Client never
// modifies its Config.
type Config struct {
	// Marketplace is the brand label of the marketplace host, e.g. "amazon".
	Marketplace string
	// CountryCode is used when the input is a bare product identifier.
	CountryCode string
	// Profile names the identity profile the first attempt uses.
	Profile string
	// Proxies maps a URL scheme ("http", "https" or "all") to a proxy URL.
	Proxies map[string]string
	// Headers override profile headers on every request.
	Headers map[string]string

	MaxAttempts       int
	DelayMin          time.Duration
	DelayMax          time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	BlockStatuses []int
	BlockMarkers  []string

	// SearchPages is the page limit for searches that do not set one.
	SearchPages int
	// BaseURLOverride, when set, replaces the scheme and host of every
	// fetched URL. Records still carry the canonical marketplace URL.
	BaseURLOverride string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Marketplace:    marketplace.DefaultBrand,
		CountryCode:    marketplace.DefaultCountryCode,
		Profile:        identity.DefaultProfile,
		MaxAttempts:    3,
		DelayMin:       2 * time.Second,
		DelayMax:       5 * time.Second,
		RequestTimeout: 25 * time.Second,
		BlockStatuses:  append([]int(nil), DefaultBlockStatuses...),
		BlockMarkers:   append([]string(nil), DefaultBlockMarkers...),
		SearchPages:    1,
	}
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Marketplace) == "" {
		return fmt.Errorf("scraper.marketplace must be set")
	}
	if c.Profile != "" {
		if _, ok := identity.Lookup(c.Profile); !ok {
			return fmt.Errorf("scraper.profile %q is unknown (known: %s)", c.Profile, strings.Join(identity.Names(), ", "))
		}
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("scraper.max_attempts must be > 0")
	}
	if c.DelayMin < 0 || c.DelayMax < 0 {
		return fmt.Errorf("scraper.delay_min and scraper.delay_max must be >= 0")
	}
	if c.DelayMax < c.DelayMin {
		return fmt.Errorf("scraper.delay_max must be >= scraper.delay_min")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("scraper.requests_per_second must be >= 0")
	}
	if c.SearchPages < 0 {
		return fmt.Errorf("scraper.search_pages must be >= 0")
	}
	for _, code := range c.BlockStatuses {
		if code < 100 || code > 599 {
			return fmt.Errorf("scraper.block_statuses: %d is not an HTTP status", code)
		}
	}
	for scheme, raw := range c.Proxies {
		switch strings.ToLower(scheme) {
		case "http", "https", "all":
		default:
			return fmt.Errorf("scraper.proxies: unsupported scheme %q", scheme)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("scraper.proxies.%s: invalid proxy url %q", scheme, raw)
		}
	}
	if c.BaseURLOverride != "" {
		u, err := url.Parse(c.BaseURLOverride)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("scraper.base_url_override: invalid url %q", c.BaseURLOverride)
		}
	}
	return nil
}
