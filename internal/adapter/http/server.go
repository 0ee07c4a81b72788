package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/uk-accident-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/uk-accident-dashboard/internal/dashboard"
	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
)

//go:embed static/index.html
var static embed.FS

// Views is the dashboard surface the server exposes.
type Views interface {
	sharedobs.ReadinessChecker
	ComputeViews(sel domain.Selection) dashboard.Views
	Figures(v dashboard.Views) dashboard.Figures
	BarView(sel domain.Selection) []domain.BarTrace
	Options() dashboard.Options
	Datasets() dashboard.DatasetSummary
}

// viewsResponse is the payload of GET /api/views.
type viewsResponse struct {
	Selection    domain.Selection    `json:"selection"`
	FilteredRows int                 `json:"filtered_rows"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Bar          dashboard.BarFigure `json:"bar"`
	Map          dashboard.MapFigure `json:"map"`
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	views      Views
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the page, /api, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, views Views, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		views:  views,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("GET /api/bar.png", s.handleBarPNG)
	mux.HandleFunc("GET /api/datasets", s.handleDatasets)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(views))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		s.logger.Error("read index page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page) //nolint:errcheck // client went away
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.views.Options())
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.views.Datasets())
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	v := s.views.ComputeViews(parseSelection(r))
	figs := s.views.Figures(v)

	writeJSON(w, http.StatusOK, viewsResponse{
		Selection:    v.Selection,
		FilteredRows: v.FilteredRows,
		GeneratedAt:  v.GeneratedAt,
		Bar:          figs.Bar,
		Map:          figs.Map,
	})
}

func (s *Server) handleBarPNG(w http.ResponseWriter, r *http.Request) {
	traces := s.views.BarView(parseSelection(r))

	var buf bytes.Buffer
	if err := chart.RenderBarPNG(&buf, traces); err != nil {
		if errors.Is(err, chart.ErrNoBars) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.logger.Error("render bar chart", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// parseSelection reads repeated or comma-separated severity and day query
// parameters. A missing parameter is an empty selection for that checklist.
func parseSelection(r *http.Request) domain.Selection {
	q := r.URL.Query()

	days := splitValues(q["day"])
	rawSev := splitValues(q["severity"])
	severities := make([]domain.Severity, len(rawSev))
	for i, v := range rawSev {
		severities[i] = domain.Severity(v)
	}
	return domain.Selection{Severities: severities, Days: days}
}

func splitValues(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
