// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	collyfetcher "github.com/JakeFAU/marketplace-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/marketplace-scraper/internal/scraper"
)

// EnvPrefix prefixes every environment override, e.g. SCRAPER_SERVER_PORT.
const EnvPrefix = "SCRAPER"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Client  ClientConfig  `mapstructure:"client"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ClientConfig governs how product and search pages are fetched.
type ClientConfig struct {
	Marketplace       string            `mapstructure:"marketplace"`
	CountryCode       string            `mapstructure:"country_code"`
	Profile           string            `mapstructure:"profile"`
	Proxies           map[string]string `mapstructure:"proxies"`
	Headers           map[string]string `mapstructure:"headers"`
	MaxAttempts       int               `mapstructure:"max_attempts"`
	DelayMin          time.Duration     `mapstructure:"delay_min"`
	DelayMax          time.Duration     `mapstructure:"delay_max"`
	RequestTimeout    time.Duration     `mapstructure:"request_timeout"`
	RequestsPerSecond float64           `mapstructure:"requests_per_second"`
	BlockStatuses     []int             `mapstructure:"block_statuses"`
	BlockMarkers      []string          `mapstructure:"block_markers"`
	SearchPages       int               `mapstructure:"search_pages"`
	BaseURLOverride   string            `mapstructure:"base_url_override"`
	MaxBodySize       int               `mapstructure:"max_body_size"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	APIKey         string        `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := scraper.DefaultConfig()
	v.SetDefault("client.marketplace", d.Marketplace)
	v.SetDefault("client.country_code", d.CountryCode)
	v.SetDefault("client.profile", d.Profile)
	v.SetDefault("client.max_attempts", d.MaxAttempts)
	v.SetDefault("client.delay_min", d.DelayMin)
	v.SetDefault("client.delay_max", d.DelayMax)
	v.SetDefault("client.request_timeout", d.RequestTimeout)
	v.SetDefault("client.requests_per_second", d.RequestsPerSecond)
	v.SetDefault("client.block_statuses", d.BlockStatuses)
	v.SetDefault("client.block_markers", d.BlockMarkers)
	v.SetDefault("client.search_pages", d.SearchPages)
	v.SetDefault("client.base_url_override", "")
	v.SetDefault("client.max_body_size", 10*1024*1024)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.request_timeout", 90*time.Second)
	v.SetDefault("server.api_key", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Client.MaxBodySize <= 0 {
		return fmt.Errorf("client.max_body_size must be > 0")
	}
	if err := c.Client.Scraper().Validate(); err != nil {
		return fmt.Errorf("client config: %w", err)
	}
	return nil
}

// Scraper converts the client section into a scraper.Config.
func (c ClientConfig) Scraper() scraper.Config {
	return scraper.Config{
		Marketplace:       c.Marketplace,
		CountryCode:       c.CountryCode,
		Profile:           c.Profile,
		Proxies:           c.Proxies,
		Headers:           c.Headers,
		MaxAttempts:       c.MaxAttempts,
		DelayMin:          c.DelayMin,
		DelayMax:          c.DelayMax,
		RequestTimeout:    c.RequestTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		BlockStatuses:     c.BlockStatuses,
		BlockMarkers:      c.BlockMarkers,
		SearchPages:       c.SearchPages,
		BaseURLOverride:   c.BaseURLOverride,
	}
}

// Fetcher converts the client section into the colly fetcher's config.
func (c ClientConfig) Fetcher() collyfetcher.Config {
	return collyfetcher.Config{
		Timeout:     c.RequestTimeout,
		Proxies:     c.Proxies,
		MaxBodySize: c.MaxBodySize,
	}
}

