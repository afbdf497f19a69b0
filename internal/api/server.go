package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/2187Nick/schwab-market-depth/internal/domain/depth"
	"github.com/2187Nick/schwab-market-depth/pkg/httplib/healthcheck"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
	"github.com/2187Nick/schwab-market-depth/pkg/util"
)

// Lister exposes the registry's active set to the query surface.
type Lister interface {
	ListActive() []string
}

// Server serves the market depth query surface.
type Server struct {
	depth    depth.Usecase
	registry Lister
	store    healthcheck.Pinger
	logger   logger.Interface
}

// NewServer creates a new query server. store backs the readiness probe and
// may be nil.
func NewServer(depth depth.Usecase, registry Lister, store healthcheck.Pinger, logger logger.Interface) *Server {
	return &Server{
		depth:    depth,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Handler builds the route table wrapped with the health check and
// request-id middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /active_symbols", s.handleActiveSymbols)
	mux.HandleFunc("GET /symbols", s.handleSymbols)
	mux.HandleFunc("GET /depth/{symbol}", s.handleDepth)
	mux.HandleFunc("GET /historical_full/{symbol}", s.handleHistoricalFull)

	var handler http.Handler = mux
	handler = s.requestID(handler)
	handler = healthcheck.HealthCheck{Store: s.store}.Handler(handler)
	return handler
}

func (s *Server) requestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := util.WithRequestID(r.Context(), r.Header.Get("X-Request-Id"))
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Market Depth API is running"})
}

func (s *Server) handleActiveSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := s.registry.ListActive()
	if symbols == nil {
		symbols = []string{}
	}
	s.writeJSON(w, http.StatusOK, SymbolsResponse{Symbols: symbols})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.depth.Symbols(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	s.writeJSON(w, http.StatusOK, SymbolsResponse{Symbols: symbols})
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	// limit is accepted for forward compatibility but unused by the
	// reconstruction.
	_ = parseLimit(r)

	snap, err := s.depth.Latest(r.Context(), r.PathValue("symbol"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toDepthResponse(snap))
}

func (s *Server) handleHistoricalFull(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	snaps, err := s.depth.History(r.Context(), r.PathValue("symbol"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := HistoricalResponse{
		Symbol:    depth.NormalizeSymbol(r.PathValue("symbol")),
		Snapshots: make([]HistoricalSnapshot, 0, len(snaps)),
	}
	for i := range snaps {
		resp.Snapshots = append(resp.Snapshots, toHistoricalSnapshot(&snaps[i]))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), err,
		logger.Field{Key: "path", Value: r.URL.Path})
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
}
