// Package api serves read-only JSON views of a loaded engine.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/okian/sdvxrec/internal/app"
	"github.com/okian/sdvxrec/internal/domain/model"
)

// DefaultMaxLimit caps the limit accepted by /best.
const DefaultMaxLimit = 500

// Queries is the engine surface the handlers read from.
type Queries interface {
	RecordsByID(ids []uint16) []model.CanonicalRecord
	RecordsByName(name string) []model.CanonicalRecord
	Best(n int) []model.CanonicalRecord
	Volforce() model.Volforce
	LevelStats(level *uint8) []model.LevelStat
	LevelCount(level uint8) int
	Stats() app.Stats
}

// Server wires HTTP routes for the query API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	bestHandler    *BestHandler
	recordsHandler *RecordsHandler
	skillHandler   *SkillHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit int
}

// WithMaxLimit caps the number of rows /best returns.
func WithMaxLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(q Queries, opts ...Option) *Server {
	o := serverOptions{maxLimit: DefaultMaxLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(q),
		bestHandler:    NewBestHandler(q, o.maxLimit),
		recordsHandler: NewRecordsHandler(q),
		skillHandler:   NewSkillHandler(q),
	}
}

// Handler returns a router serving every query route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	s.Register(r)
	return r
}

// Register attaches all query routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/best", MetricsMiddleware(s.bestHandler.HandleGetBest, "best"))
	r.Get("/records/{id}", MetricsMiddleware(s.recordsHandler.HandleGetRecords, "records"))
	r.Get("/search", MetricsMiddleware(s.recordsHandler.HandleSearch, "search"))
	r.Get("/volforce", MetricsMiddleware(s.skillHandler.HandleVolforce, "volforce"))
	r.Get("/levels", MetricsMiddleware(s.skillHandler.HandleLevels, "levels"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: "+format, append([]any{ErrBadRequest}, args...)...))
}
