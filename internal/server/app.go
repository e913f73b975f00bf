// Package server builds the application's dependencies and runs the HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/marketplace-scraper/internal/api"
	"github.com/JakeFAU/marketplace-scraper/internal/config"
	collyfetcher "github.com/JakeFAU/marketplace-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/marketplace-scraper/internal/logging"
	"github.com/JakeFAU/marketplace-scraper/internal/metrics"
	"github.com/JakeFAU/marketplace-scraper/internal/scraper"
)

const shutdownTimeout = 10 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *scraper.Client
	apiServer *api.Server
}

// Build creates the logger, fetcher, scraper client and HTTP API from cfg.
func Build(cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return BuildWithLogger(cfg, logger)
}

// BuildWithLogger is Build with a caller-supplied logger.
func BuildWithLogger(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	fetcher, err := collyfetcher.New(cfg.Client.Fetcher())
	if err != nil {
		return nil, fmt.Errorf("fetcher init failed: %w", err)
	}
	client, err := scraper.New(cfg.Client.Scraper(), fetcher, scraper.WithLogger(logger.Named("scraper")))
	if err != nil {
		return nil, fmt.Errorf("scraper init failed: %w", err)
	}
	logger.Info("scraper client ready",
		zap.String("marketplace", client.Config().Marketplace),
		zap.String("country_code", client.Config().CountryCode),
		zap.String("profile", client.Config().Profile),
		zap.Int("max_attempts", client.Config().MaxAttempts),
		zap.Bool("proxied", len(client.Config().Proxies) > 0),
	)

	app := &App{
		cfg:    cfg,
		logger: logger,
		client: client,
	}
	app.apiServer = api.NewServer(app, client.Normalizer(), api.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		APIKey:         cfg.Server.APIKey,
	}, logger.Named("api"))
	return app, nil
}

// Client returns the scraper client.
func (a *App) Client() *scraper.Client {
	return a.client
}

// Lookup fetches one product record through the scraper client.
func (a *App) Lookup(ctx context.Context, urlOrID string) (scraper.Product, error) {
	p, err := a.client.Lookup(ctx, urlOrID)
	if err != nil {
		return p, fmt.Errorf("lookup %q: %w", urlOrID, err)
	}
	return p, nil
}

// Search collects search results through the scraper client. Results
// gathered before a failure are returned alongside the error.
func (a *App) Search(ctx context.Context, query, searchURL string, maxPages int) ([]scraper.SearchResult, error) {
	results, err := a.client.Search(ctx, query, searchURL, maxPages)
	if err != nil {
		return results, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the HTTP server and blocks until ctx is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	a.logger.Info("http server stopped")

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	default:
		return nil
	}
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.logger.Sync() //nolint:errcheck // best-effort flush
}
