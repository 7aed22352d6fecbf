package api

import (
	"encoding/json"
	"net/http"
	"time"

	"metric-diary/internal/analytics"
	"metric-diary/internal/config"
	"metric-diary/internal/db"
	"metric-diary/internal/provider"
)

// Server is the HTTP API server that connects the analytics engine, the
// prediction provider, and the database.
type Server struct {
	cfg    config.Config
	db     *db.DB
	client *provider.Client
	cache  *provider.SeriesCache
	engine *analytics.Engine
	start  time.Time
}

// NewServer creates a Server with the given config, database, provider
// client, series cache and engine.
func NewServer(cfg config.Config, database *db.DB, client *provider.Client, cache *provider.SeriesCache, engine *analytics.Engine) *Server {
	return &Server{
		cfg:    cfg,
		db:     database,
		client: client,
		cache:  cache,
		engine: engine,
		start:  time.Now(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)

	mux.HandleFunc("GET /api/parameters", s.handleListParameters)
	mux.HandleFunc("POST /api/parameters", s.handleCreateParameter)
	mux.HandleFunc("POST /api/parameters/{key}/rename", s.handleRenameParameter)
	mux.HandleFunc("POST /api/parameters/{key}/archive", s.handleArchiveParameter)
	mux.HandleFunc("POST /api/parameters/{key}/restore", s.handleRestoreParameter)
	mux.HandleFunc("GET /api/parameters/{key}/description", s.handleGetDescription)
	mux.HandleFunc("POST /api/parameters/{key}/description", s.handleSetDescription)
	mux.HandleFunc("GET /api/parameter_history", s.handleParameterHistory)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/select", s.handleSelect)
	mux.HandleFunc("POST /api/defaults", s.handleApplyDefaults)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSetSettings)
	mux.HandleFunc("GET /api/sort", s.handleGetSort)
	mux.HandleFunc("POST /api/sort/{key}", s.handleActivateSort)
	mux.HandleFunc("POST /api/retrain", s.handleRetrain)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	params, _ := s.db.ActiveParameters()
	providerOK := s.client.HealthCheck()

	writeJSON(w, map[string]interface{}{
		"provider_ok":   providerOK,
		"parameters":    len(params),
		"cached_series": s.cache.Len(),
		"uptime_sec":    int(time.Since(s.start).Seconds()),
	})
}
