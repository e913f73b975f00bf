package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	Init()
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/v1/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/v1/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	ts := httptest.NewServer(r)
	defer ts.Close()

	ok := httpRequestsTotal.WithLabelValues("GET", "200")
	notFound := httpRequestsTotal.WithLabelValues("GET", "404")
	beforeOK := testutil.ToFloat64(ok)
	beforeNotFound := testutil.ToFloat64(notFound)

	for _, path := range []string{"/v1/products", "/v1/missing"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		if errInner := resp.Body.Close(); errInner != nil {
			t.Log(errInner)
		}
	}

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeNotFound+1, testutil.ToFloat64(notFound))
	assert.Positive(t, testutil.CollectAndCount(httpRequestDurationSeconds))
}
