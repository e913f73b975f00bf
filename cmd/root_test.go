package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/marketplace-scraper/internal/config"
	"github.com/JakeFAU/marketplace-scraper/internal/scraper"
)

type fakeApp struct {
	products map[string]scraper.Product
	results  []scraper.SearchResult
	err      error
	cfg      *config.Config
	closed   bool
	ran      bool
	searched []string
}

func (f *fakeApp) Lookup(_ context.Context, urlOrID string) (scraper.Product, error) {
	if p, ok := f.products[urlOrID]; ok {
		return p, nil
	}
	return scraper.Product{}, fmt.Errorf("lookup %q: %w", urlOrID, scraper.ErrRetriesExhausted)
}

func (f *fakeApp) Search(_ context.Context, query, searchURL string, _ int) ([]scraper.SearchResult, error) {
	f.searched = append(f.searched, query+"|"+searchURL)
	return f.results, f.err
}

func (f *fakeApp) Run(context.Context) error { f.ran = true; return nil }
func (f *fakeApp) Logger() *zap.Logger { return zap.NewNop() }
func (f *fakeApp) Close() { f.closed = true }

// withFakeApp swaps the application factory; tests using it must not run in parallel.
func withFakeApp(t *testing.T, app *fakeApp) {
	t.Helper()
	orig := newApp
	newApp = func(cfg *config.Config) (App, error) {
		app.cfg = cfg
		return app, nil
	}
	t.Cleanup(func() { newApp = orig })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProductCommandPrintsRecords(t *testing.T) {
	title := "Acme Anvil"
	app := &fakeApp{products: map[string]scraper.Product{"B0ABCDEF12": {Title: &title}}}
	withFakeApp(t, app)

	out, err := execute(t, "product", "B0ABCDEF12", "B0MISSING0", "--country", "co.uk")
	require.NoError(t, err)
	assert.True(t, app.closed)
	assert.Equal(t, "co.uk", app.cfg.Client.CountryCode)

	dec := json.NewDecoder(bytes.NewBufferString(out))
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "Acme Anvil", first["title"])
	assert.Len(t, second, 5)
	for k, v := range second {
		assert.Nil(t, v, k)
	}
}

func TestProductCommandStrict(t *testing.T) {
	withFakeApp(t, &fakeApp{})

	_, err := execute(t, "product", "--strict", "B0MISSING0")
	require.ErrorIs(t, err, errLookupsFailed)
}

func TestProductCommandRequiresArgs(t *testing.T) {
	withFakeApp(t, &fakeApp{})

	_, err := execute(t, "product")
	require.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	app := &fakeApp{results: []scraper.SearchResult{{ASIN: "B0AAAAAAA1", Title: "Acme Anvil"}}}
	withFakeApp(t, app)

	out, err := execute(t, "search", "steel", "anvil")
	require.NoError(t, err)
	assert.Equal(t, []string{"steel anvil|"}, app.searched)

	var results []scraper.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "B0AAAAAAA1", results[0].ASIN)

	_, err = execute(t, "search")
	require.Error(t, err)
}

func TestSearchCommandFailsWithoutResults(t *testing.T) {
	withFakeApp(t, &fakeApp{err: scraper.ErrUnexpectedStatus})

	_, err := execute(t, "search", "anvil")
	require.ErrorIs(t, err, scraper.ErrUnexpectedStatus)
}

func TestServeCommandRunsApp(t *testing.T) {
	app := &fakeApp{}
	withFakeApp(t, app)

	_, err := execute(t, "serve")
	require.NoError(t, err)
	assert.True(t, app.ran)
}

func TestInvalidFlagOverride(t *testing.T) {
	withFakeApp(t, &fakeApp{})

	_, err := execute(t, "product", "--profile", "lynx", "B0ABCDEF12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}
