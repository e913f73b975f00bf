package collyfetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/marketplace-scraper/internal/scraper"
)

func TestFetchReturnsErrorStatusesAsData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-UA", r.Header.Get("User-Agent"))
		w.Header().Set("X-Seen-Lang", r.Header.Get("Accept-Language"))
		if r.URL.Path == "/busy" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "<html>try later</html>")
			return
		}
		_, _ = io.WriteString(w, "<html><span id=\"productTitle\">ok</span></html>")
	}))
	defer srv.Close()

	f, err := New(Config{Timeout: 5 * time.Second})
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("User-Agent", "profile-agent/1.0")
	headers.Set("Accept-Language", "de-DE")

	for i := 0; i < 2; i++ {
		resp, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL + "/busy", Headers: headers})
		require.NoError(t, err, "revisits of the same url are allowed")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "<html>try later</html>", string(resp.Body))
		assert.Equal(t, "profile-agent/1.0", resp.Headers.Get("X-Seen-UA"))
		assert.Equal(t, "de-DE", resp.Headers.Get("X-Seen-Lang"))
	}

	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL + "/dp/B0ABCDEF12", Headers: headers})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "productTitle")
	assert.Equal(t, srv.URL+"/dp/B0ABCDEF12", resp.URL)
	assert.Positive(t, resp.Duration)
}

func TestFetchTransportErrorAndCancellation(t *testing.T) {
	t.Parallel()

	f, err := New(Config{Timeout: 2 * time.Second})
	require.NoError(t, err)

	srv := httptest.NewServer(http.NotFoundHandler())
	closedURL := srv.URL
	srv.Close()

	_, err = f.Fetch(context.Background(), scraper.FetchRequest{URL: closedURL + "/dp/B0ABCDEF12"})
	require.Error(t, err)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer slow.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = f.Fetch(ctx, scraper.FetchRequest{URL: slow.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProxyFunc(t *testing.T) {
	t.Parallel()

	fn, err := proxyFunc(map[string]string{
		"HTTPS": "http://secure-proxy:8443",
		"all":   "http://catch-all:3128",
	})
	require.NoError(t, err)

	got, err := fn(&http.Request{URL: mustParseURL(t, "https://www.amazon.com/dp/B0ABCDEF12")})
	require.NoError(t, err)
	assert.Equal(t, "secure-proxy:8443", got.Host)

	got, err = fn(&http.Request{URL: mustParseURL(t, "http://www.amazon.com/")})
	require.NoError(t, err)
	assert.Equal(t, "catch-all:3128", got.Host)

	only, err := proxyFunc(map[string]string{"https": "http://secure-proxy:8443"})
	require.NoError(t, err)
	got, err = only(&http.Request{URL: mustParseURL(t, "http://www.amazon.com/")})
	require.NoError(t, err)
	assert.Nil(t, got, "no proxy for unmatched schemes without an all entry")

	_, err = proxyFunc(map[string]string{"http": "::bad"})
	require.Error(t, err)
	_, err = New(Config{Proxies: map[string]string{"http": "no-scheme"}})
	require.Error(t, err)
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f, err := New(Config{})
	require.NoError(t, err)
	req := scraper.FetchRequest{
		URL:     "https://www.amazon.com/dp/B0ABCDEF12",
		Headers: http.Header{"X-Trace": {"yes"}, "User-Agent": {"profile-agent"}},
	}
	var result scraper.FetchResponse
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, req, time.Unix(0, 0), &result, &fetchErr)
	require.NotNil(t, hooks.onRequest)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	collyReq := &colly.Request{Headers: &http.Header{"User-Agent": {"colly"}}}
	hooks.onRequest(collyReq)
	assert.Equal(t, "yes", collyReq.Headers.Get("X-Trace"))
	assert.Equal(t, []string{"profile-agent"}, collyReq.Headers.Values("User-Agent"))

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       []byte("slow down"),
		Headers:    &http.Header{"Retry-After": {"30"}},
		Request:    &colly.Request{URL: mustParseURL(t, req.URL)},
	})
	assert.Equal(t, http.StatusTooManyRequests, result.StatusCode)
	assert.Equal(t, "slow down", string(result.Body))
	assert.Equal(t, "30", result.Headers.Get("Retry-After"))

	hooks.onError(nil, errors.New("boom"))
	assert.EqualError(t, fetchErr, "boom")
}

func TestCopyHeadersHandlesNil(t *testing.T) {
	t.Parallel()

	f, err := New(Config{})
	require.NoError(t, err)
	collyReq := &colly.Request{Headers: &http.Header{}}
	f.copyHeaders(scraper.FetchRequest{}, collyReq)
	assert.Empty(t, *collyReq.Headers)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
