// Package api exposes the HTTP interface for the scraper.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/marketplace-scraper/internal/marketplace"
	"github.com/JakeFAU/marketplace-scraper/internal/metrics"
	"github.com/JakeFAU/marketplace-scraper/internal/scraper"
)

const maxSearchPages = 20

// ProductService is the part of scraper.Client the API needs.
type ProductService interface {
	Lookup(ctx context.Context, urlOrID string) (scraper.Product, error)
	Search(ctx context.Context, query, searchURL string, maxPages int) ([]scraper.SearchResult, error)
}

// Server wires HTTP handlers to the product service.
type Server struct {
	router     chi.Router
	service    ProductService
	normalizer *marketplace.Normalizer
	logger     *zap.Logger
}

// Options tunes the HTTP surface.
type Options struct {
	// RequestTimeout bounds each request, including every fetch attempt.
	RequestTimeout time.Duration
	// APIKey, when set, is required in X-API-Key or ?api_key= on every route.
	APIKey string
}

// NewServer constructs a Server with middleware and routes. The normalizer
// builds product URLs for ?id= requests.
func NewServer(
	service ProductService,
	normalizer *marketplace.Normalizer,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = marketplace.NewNormalizer(marketplace.DefaultBrand)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	s := &Server{
		service:    service,
		normalizer: normalizer,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(opts.RequestTimeout))
	if opts.APIKey != "" {
		r.Use(s.apiKeyMiddleware(opts.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/products", s.getProduct)
		r.Get("/search", s.search)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type productResponse struct {
	Product scraper.Product `json:"product"`
	Error   string          `json:"error,omitempty"`
}

// getProduct serves GET /v1/products?url=... or ?id=...&country=...
func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := strings.TrimSpace(q.Get("url"))
	if input == "" {
		id := strings.TrimSpace(q.Get("id"))
		if id == "" {
			s.writeJSON(w, http.StatusBadRequest, productResponse{Error: "url or id is required"})
			return
		}
		if !marketplace.IsProductID(id) {
			s.writeJSON(w, http.StatusBadRequest, productResponse{Error: "id must be 10 uppercase letters or digits"})
			return
		}
		input = id
		if country := strings.TrimSpace(q.Get("country")); country != "" {
			input = s.normalizer.Canonicalize("", id, country)
		}
	}

	p, err := s.service.Lookup(r.Context(), input)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, productResponse{Product: p})
	case errors.Is(err, scraper.ErrInvalidInput):
		s.writeJSON(w, http.StatusBadRequest, productResponse{Product: p, Error: err.Error()})
	default:
		s.logger.Warn("product lookup failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("input", input),
			zap.Error(err),
		)
		s.writeJSON(w, http.StatusBadGateway, productResponse{Product: p, Error: err.Error()})
	}
}

type searchResponse struct {
	Results []scraper.SearchResult `json:"results"`
	Count   int                    `json:"count"`
	Error   string                 `json:"error,omitempty"`
}

// search serves GET /v1/search?q=...&pages=... or ?url=...
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	searchURL := strings.TrimSpace(q.Get("url"))
	if query == "" && searchURL == "" {
		s.writeJSON(w, http.StatusBadRequest, searchResponse{Results: []scraper.SearchResult{}, Error: "q or url is required"})
		return
	}
	pages := 0
	if raw := q.Get("pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchPages {
			s.writeJSON(w, http.StatusBadRequest, searchResponse{
				Results: []scraper.SearchResult{},
				Error:   fmt.Sprintf("pages must be between 1 and %d", maxSearchPages),
			})
			return
		}
		pages = n
	}

	results, err := s.service.Search(r.Context(), query, searchURL, pages)
	if results == nil {
		results = []scraper.SearchResult{}
	}
	resp := searchResponse{Results: results, Count: len(results)}
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, scraper.ErrInvalidInput):
		resp.Error = err.Error()
		s.writeJSON(w, http.StatusBadRequest, resp)
	default:
		s.logger.Warn("search failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("query", query),
			zap.Error(err),
		)
		resp.Error = err.Error()
		status := http.StatusOK
		if len(results) == 0 {
			status = http.StatusBadGateway
		}
		s.writeJSON(w, status, resp)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.String("request_id", requestIDFrom(r.Context())),
					zap.Any("error", rec),
				)
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func (s *Server) apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				s.writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
