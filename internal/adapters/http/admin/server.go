// Package admin exposes the read-only operational surface: Prometheus
// metrics, a JSON stats snapshot, and a JSON debug view of the current
// ranking. None of these endpoints mutate server state.
package admin

import (
	"context"
	"net/http"
)

// StatsProvider supplies the live counters rendered by /stats.
type StatsProvider interface {
	Stats() map[string]any
}

// RankingProvider supplies the current ranking payload rendered by
// /ranking. It is the same source the TCP REQUEST_RANKING command uses.
type RankingProvider interface {
	RequestRanking(ctx context.Context) string
}

// Server wires the admin HTTP routes.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	rankingHandler *RankingHandler
}

// NewServer creates an admin HTTP server bound to the given providers.
func NewServer(stats StatsProvider, ranking RankingProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(stats),
		rankingHandler: NewRankingHandler(ranking),
	}
}

// Register attaches the admin routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleRanking, "ranking"))
}
