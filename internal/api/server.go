// Package api serves a collected dataset over a read-only JSON API.
//
// Amounts are converted to the canonical unit when they are served; the
// files on disk are never modified.
package api

import (
	"net/http"
	"time"

	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/internal/money"
	"golang-export-scraper/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Server holds the API dependencies
type Server struct {
	reader     *dataset.Reader
	normalizer *money.Normalizer
	logger     logger.Logger
}

// NewServer creates a Server over a dataset root
func NewServer(reader *dataset.Reader, normalizer *money.Normalizer, log logger.Logger) *Server {
	if normalizer == nil {
		normalizer = money.DefaultNormalizer()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Server{reader: reader, normalizer: normalizer, logger: log.WithComponent("api")}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", s.health)
		r.Get("/dataset.zip", s.archive)

		r.Route("/countries", func(r chi.Router) {
			r.Get("/", s.listCountries)
			r.Route("/{code}", func(r chi.Router) {
				r.Use(s.countryCtx)
				r.Get("/", s.getCountry)
				r.Get("/items", s.getItems)
				r.Get("/yearly", s.getYearly)
				r.Get("/monthly", s.getMonthly)
			})
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Debug("Request served")
	})
}
