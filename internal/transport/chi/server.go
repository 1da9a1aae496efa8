// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/logger"
	"github.com/ppetroskevicius/fastctl-search/internal/metrics"
	searchuc "github.com/ppetroskevicius/fastctl-search/internal/usecase/search"
)

// Searcher is the transport's view of the search pipeline.
type Searcher interface {
	Search(ctx context.Context, rawQuery string, topK int) ([]searchuc.Result, error)
}

// Pinger reports the reachability of one downstream dependency.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Server serves the search API.
type Server struct {
	search       Searcher
	checks       map[string]Pinger
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// ServerConfig holds the HTTP server wiring.
type ServerConfig struct {
	Search       Searcher
	Checks       map[string]Pinger
	DefaultLimit int
	MaxLimit     int
	Logger       *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(cfg *ServerConfig) *Server {
	return &Server{
		search:       cfg.Search,
		checks:       cfg.Checks,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		logger:       cfg.Logger,
	}
}

// Router builds the HTTP routing table with auth, recovery, logging and
// metrics middleware applied.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chirouter.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/v1/search", s.handleSearch)
	return r
}

type searchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Total   int                `json:"total"`
}

type searchResultItem struct {
	ID               string        `json:"id"`
	Score            float64       `json:"score"`
	Name             string        `json:"name"`
	Ward             string        `json:"ward,omitempty"`
	Address          string        `json:"address,omitempty"`
	MonthlyTotal     int           `json:"monthly_total"`
	AreaM2           float64       `json:"area_m2"`
	FloorNumber      int           `json:"floor_number,omitempty"`
	YearBuilt        int           `json:"year_built,omitempty"`
	ContractLength   string        `json:"contract_length,omitempty"`
	UnitFeatures     []string      `json:"unit_features,omitempty"`
	BuildingFeatures []string      `json:"building_features,omitempty"`
	Stations         []stationItem `json:"stations,omitempty"`
}

type stationItem struct {
	Name        string   `json:"name"`
	WalkTimeMin int      `json:"walk_time_min"`
	Lines       []string `json:"lines,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleSearch handles POST /v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	limit := s.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit <= 0 || limit > s.maxLimit {
		writeError(w, http.StatusBadRequest, "validation_failed",
			fmt.Sprintf("limit must be between 1 and %d", s.maxLimit))
		return
	}

	results, err := s.search.Search(r.Context(), req.Query, limit)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = resultToItem(&results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: items, Total: len(items)})
}

// handleHealth handles GET /health. Any failing dependency turns the whole
// report unhealthy with a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type report struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	resp := report{Status: "healthy", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK

	for name, p := range s.checks {
		if err := p.HealthCheck(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed",
				zap.String("dependency", name), zap.Error(err))
			resp.Checks[name] = "unhealthy"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "healthy"
	}

	writeJSON(w, status, resp)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_failed", verr.Field+": "+verr.Reason)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid query constraints")
	case errors.Is(err, domain.ErrRetrieval):
		log.Error("retrieval error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "retrieval_failed", "search backend unavailable")
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func resultToItem(r *searchuc.Result) searchResultItem {
	item := searchResultItem{
		ID:               r.ID,
		Score:            r.Score,
		Name:             r.Name,
		Ward:             r.Ward,
		Address:          r.AddressFull,
		MonthlyTotal:     r.MonthlyTotal,
		AreaM2:           r.AreaM2,
		FloorNumber:      r.FloorNumber,
		YearBuilt:        r.YearBuilt,
		ContractLength:   r.ContractLength,
		UnitFeatures:     r.UnitFeatures,
		BuildingFeatures: r.BuildingFeatures,
	}
	for _, st := range r.Stations {
		item.Stations = append(item.Stations, stationItem{
			Name:        st.Name,
			WalkTimeMin: st.WalkTimeMin,
			Lines:       st.Lines,
		})
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
