// Package cmd defines and implements the CLI commands for the marketplace-scraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/marketplace-scraper/internal/config"
	"github.com/JakeFAU/marketplace-scraper/internal/scraper"
	"github.com/JakeFAU/marketplace-scraper/internal/server"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// Tests swap in a fake through newApp.
type App interface {
	Lookup(ctx context.Context, urlOrID string) (scraper.Product, error)
	Search(ctx context.Context, query, searchURL string, maxPages int) ([]scraper.SearchResult, error)
	Run(ctx context.Context) error
	Logger() *zap.Logger
	Close()
}

// newApp is the application factory.
var newApp = func(cfg *config.Config) (App, error) {
	return server.Build(cfg)
}

type rootOptions struct {
	cfgFile  string
	country  string
	profile  string
	proxy    string
	logLevel string
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "marketplace-scraper",
		Short: "Fetches product details and search results from online marketplaces.",
		Long: `marketplace-scraper resolves product URLs or bare product identifiers to
canonical product pages, fetches them with rotating browser identities and
retries, and extracts title, price, currency, image and brand.`,
		SilenceUsage: true,

		// Builds the application after flags are parsed but before the
		// subcommand's RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			appInstance, err := newApp(&cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (YAML, JSON or TOML)")
	flags.StringVar(&opts.country, "country", "", "marketplace country code for bare identifiers, e.g. com, co.uk, de")
	flags.StringVar(&opts.profile, "profile", "", "initial browser identity profile")
	flags.StringVar(&opts.proxy, "proxy", "", "proxy URL used for every request")
	flags.StringVar(&opts.logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")

	cmd.AddCommand(newProductCmd(), newSearchCmd(), newServeCmd())
	return cmd
}

// loadConfig reads the config file and environment, then applies flag overrides.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.country != "" {
		cfg.Client.CountryCode = opts.country
	}
	if opts.profile != "" {
		cfg.Client.Profile = opts.profile
	}
	if opts.proxy != "" {
		cfg.Client.Proxies = map[string]string{"all": opts.proxy}
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
