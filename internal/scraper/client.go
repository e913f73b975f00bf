package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JakeFAU/marketplace-scraper/internal/identity"
	"github.com/JakeFAU/marketplace-scraper/internal/marketplace"
	"github.com/JakeFAU/marketplace-scraper/internal/metrics"
)

// Client fetches product and search pages and extracts records from them.
// A Client is safe for concurrent use; each lookup carries its own identity
// rotation state.
type Client struct {
	cfg        Config
	normalizer *marketplace.Normalizer
	fetcher    Fetcher
	detector   Detector
	retry      RetryPolicy
	pauser     pauseController
	limiter    *rate.Limiter
	profiles   []identity.Profile
	headers    http.Header
	override   *url.URL
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetryPolicy replaces the retry policy derived from Config.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p != nil {
			c.retry = p
		}
	}
}

// WithDetector replaces the block detector derived from Config.
func WithDetector(d Detector) Option {
	return func(c *Client) {
		if d != nil {
			c.detector = d
		}
	}
}

// WithProfiles sets the identity profiles rotated through after blocks.
func WithProfiles(profiles []identity.Profile) Option {
	return func(c *Client) {
		if len(profiles) > 0 {
			c.profiles = profiles
		}
	}
}

// New builds a Client. The fetcher performs the actual HTTP requests.
func New(cfg Config, fetcher Fetcher, opts ...Option) (*Client, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("scraper: fetcher is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = marketplace.DefaultCountryCode
	}
	if p, ok := identity.Lookup(cfg.Profile); ok {
		cfg.Profile = p.Name
	} else {
		cfg.Profile = identity.DefaultProfile
	}
	if cfg.SearchPages == 0 {
		cfg.SearchPages = 1
	}

	c := &Client{
		cfg:        cfg,
		normalizer: marketplace.NewNormalizer(cfg.Marketplace),
		fetcher:    fetcher,
		detector:   NewBlockDetector(cfg.BlockStatuses, cfg.BlockMarkers),
		retry:      NewJitterRetryPolicy(cfg.MaxAttempts, cfg.DelayMin, cfg.DelayMax),
		pauser:     &timerPauseController{},
		profiles:   identity.Profiles(),
		headers:    http.Header{},
		logger:     zap.NewNop(),
	}
	for k, v := range cfg.Headers {
		c.headers.Set(k, v)
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.BaseURLOverride != "" {
		// Validate already checked the URL.
		c.override, _ = url.Parse(cfg.BaseURLOverride)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Normalizer returns the URL normalizer for the configured marketplace.
func (c *Client) Normalizer() *marketplace.Normalizer {
	return c.normalizer
}

// GetProductDetails fetches and parses one product page. It never fails:
// on any error the returned record has every field absent.
func (c *Client) GetProductDetails(ctx context.Context, urlOrID string) Product {
	p, err := c.Lookup(ctx, urlOrID)
	if err != nil {
		c.logger.Warn("product lookup failed",
			zap.String("input", urlOrID),
			zap.Error(err),
		)
		return Product{}
	}
	return p
}

// Lookup is GetProductDetails with the error that caused an empty record.
// A nil error means the page was fetched and parsed, even if some fields
// are absent.
func (c *Client) Lookup(ctx context.Context, urlOrID string) (Product, error) {
	logger := c.logger.With(zap.String("lookup_id", uuid.NewString()))

	canonical, productID, err := c.resolve(urlOrID)
	if err != nil {
		metrics.ObserveLookup("product", "invalid")
		logger.Debug("rejected input", zap.String("input", urlOrID))
		return Product{}, err
	}
	logger = logger.With(zap.String("url", canonical), zap.String("product_id", productID))

	resp, err := c.fetchPage(ctx, logger, canonical, "")
	if err != nil {
		metrics.ObserveLookup("product", "failed")
		return Product{}, err
	}

	p := ParseProduct(resp.Body)
	p.ASIN = productID
	p.URL = canonical

	missing := p.Missing()
	for _, field := range missing {
		metrics.ObserveMissingField(field)
	}
	status := "ok"
	if p.IsEmpty() {
		status = "empty"
	}
	metrics.ObserveLookup("product", status)
	logger.Info("product extracted",
		zap.Int("status_code", resp.StatusCode),
		zap.Strings("missing", missing),
	)
	return p, nil
}

// resolve turns a product URL or bare identifier into the canonical URL.
func (c *Client) resolve(urlOrID string) (string, string, error) {
	input := strings.TrimSpace(urlOrID)
	if marketplace.IsProductID(input) {
		return c.normalizer.Canonicalize("", input, c.cfg.CountryCode), input, nil
	}
	ref, ok := c.normalizer.Parse(input)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidInput, urlOrID)
	}
	return c.normalizer.Canonicalize(input, ref.ProductID, ref.CountryCode), ref.ProductID, nil
}

// fetchPage runs the attempt loop for one page. The first attempt uses the
// configured profile; each block rotates to the next one.
func (c *Client) fetchPage(ctx context.Context, logger *zap.Logger, pageURL, referer string) (FetchResponse, error) {
	target := c.rewrite(pageURL)
	rotator := identity.NewRotator(c.profiles, c.cfg.Profile)

	var (
		attempt int
		lastErr error
	)
	for {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return FetchResponse{}, fmt.Errorf("scraper: waiting for rate limiter: %w", err)
			}
		}

		profile := rotator.Current()
		resp, err := c.attempt(ctx, target, profile, referer)
		attemptLog := logger.With(
			zap.Int("attempt", attempt),
			zap.String("profile", profile.Name),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", resp.Duration),
		)
		if err == nil {
			attemptLog.Debug("attempt succeeded")
			return resp, nil
		}
		lastErr = err
		attemptLog.Info("attempt failed", zap.Error(err))

		if ctx.Err() != nil {
			return FetchResponse{}, ctx.Err()
		}
		if !c.retry.ShouldRetry(err, attempt) {
			break
		}
		if errors.Is(err, ErrBlocked) {
			next := rotator.Rotate()
			metrics.ObserveRotation(next.Name)
			attemptLog.Debug("rotated identity", zap.String("next_profile", next.Name))
		}
		delay := c.retry.Backoff(attempt, err)
		attemptLog.Debug("backing off", zap.Duration("delay", delay))
		c.pauser.Pause(ctx, delay)
		if ctx.Err() != nil {
			return FetchResponse{}, ctx.Err()
		}
	}

	if errors.Is(lastErr, ErrUnexpectedStatus) {
		return FetchResponse{}, lastErr
	}
	return FetchResponse{}, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, lastErr)
}

// attempt performs one fetch and classifies the outcome.
func (c *Client) attempt(ctx context.Context, target string, profile identity.Profile, referer string) (FetchResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.fetcher.Fetch(attemptCtx, FetchRequest{
		URL:     target,
		Headers: profile.Header(referer, c.headers),
	})
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}
	if err != nil {
		metrics.ObserveAttempt(target, metrics.OutcomeError, resp.Duration)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp, ctxErr
		}
		return resp, fmt.Errorf("scraper: fetch %s: %w", target, err)
	}
	if block, blocked := c.detector.Detect(resp); blocked {
		metrics.ObserveAttempt(target, metrics.OutcomeBlocked, resp.Duration)
		metrics.ObserveBlock(target, block.Kind)
		return resp, &BlockError{Block: block, StatusCode: resp.StatusCode, Profile: profile.Name}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.ObserveAttempt(target, metrics.OutcomeHTTPFail, resp.Duration)
		return resp, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	metrics.ObserveAttempt(target, metrics.OutcomeOK, resp.Duration)
	return resp, nil
}

// rewrite points a marketplace URL at BaseURLOverride, if one is set.
func (c *Client) rewrite(raw string) string {
	if c.override == nil {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = c.override.Scheme
	u.Host = c.override.Host
	return u.String()
}
