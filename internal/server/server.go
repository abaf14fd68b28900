// Package server exposes lead preview and rating over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/catalog"
	"github.com/sells-group/lead-qualifier/internal/config"
	"github.com/sells-group/lead-qualifier/internal/lead"
	"github.com/sells-group/lead-qualifier/internal/provider"
	"github.com/sells-group/lead-qualifier/internal/qualify"
	"github.com/sells-group/lead-qualifier/internal/report"
	"github.com/sells-group/lead-qualifier/internal/sheet"
)

// APIKeyHeader carries the caller's LLM API key. It is forwarded to the
// provider and never logged.
const APIKeyHeader = "X-LLM-API-Key"

// Server serves the lead qualification API.
type Server struct {
	qualifier *qualify.Qualifier
	catalog   *catalog.Catalog
	registry  *provider.Registry
	cfg       config.Config
}

// New creates a Server.
func New(q *qualify.Qualifier, cat *catalog.Catalog, reg *provider.Registry, cfg config.Config) *Server {
	return &Server{qualifier: q, catalog: cat, registry: reg, cfg: cfg}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", APIKeyHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/providers", s.handleProviders)
		r.Get("/services", s.handleServices)
		r.Post("/leads/preview", s.handlePreview)
		r.Group(func(r chi.Router) {
			if n := s.cfg.Server.RateLimitPerMinute; n > 0 {
				r.Use(httprate.LimitByIP(n, time.Minute))
			}
			r.Post("/leads/rate", s.handleRate)
		})
	})

	return r
}

type providerInfo struct {
	Name       string `json:"name"`
	Model      string `json:"model,omitempty"`
	Configured bool   `json:"configured"`
	Default    bool   `json:"default"`
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	def := provider.Key(s.cfg.Rating.DefaultProvider)
	out := lo.Map(s.registry.All(), func(p provider.Provider, _ int) providerInfo {
		return providerInfo{
			Name:       p.Name,
			Model:      p.Model,
			Configured: p.Configured(),
			Default:    provider.Key(p.Name) == def,
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"company":  s.cfg.Company.Name,
		"url":      s.cfg.Company.ServicesURL,
		"services": s.catalog.Services(r.Context(), s.cfg.Company.ServicesURL),
	})
}

type previewResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func newPreview(ds *lead.Dataset) previewResponse {
	return previewResponse{Columns: ds.Columns, Rows: report.PreviewRows(ds)}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ds, err := s.qualifier.Preview(t)
	if err != nil {
		writeLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPreview(ds))
}

type rateResponse struct {
	RunID    string             `json:"run_id"`
	Company  string             `json:"company"`
	Provider string             `json:"provider"`
	Preview  previewResponse    `json:"preview"`
	Services []string           `json:"services,omitempty"`
	Ratings  []report.RatingRow `json:"ratings,omitempty"`
	Notice   string             `json:"notice,omitempty"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("provider"))
	if name == "" {
		name = s.cfg.Rating.DefaultProvider
	}

	rep, err := s.qualifier.Run(r.Context(), t, qualify.Request{
		Provider: name,
		APIKey:   r.Header.Get(APIKeyHeader),
	})
	if err != nil {
		writeLeadError(w, err)
		return
	}

	resp := rateResponse{
		RunID:    rep.RunID,
		Company:  rep.Company,
		Provider: rep.Provider,
		Preview:  newPreview(rep.Dataset),
		Services: rep.Services,
		Notice:   rep.Notice,
	}
	if rep.Results != nil {
		resp.Ratings = report.RatingRows(rep.Results)
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload parses the multipart "file" field into a table. On failure it
// writes the error response and returns false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*sheet.Table, bool) {
	limit := int64(s.cfg.Server.MaxUploadMB) << 20
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, false
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, false
	}
	defer f.Close() //nolint:errcheck

	t, err := sheet.Read(fh.Filename, f)
	if err != nil {
		zap.L().Info("server: unreadable upload", zap.String("filename", fh.Filename), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return t, true
}

func writeLeadError(w http.ResponseWriter, err error) {
	var mce *lead.MissingColumnError
	if errors.As(err, &mce) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   mce.Error(),
			"missing": mce.Missing,
		})
		return
	}
	zap.L().Error("server: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

// requestLogger logs one line per request. Headers are not logged.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
