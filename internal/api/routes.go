package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Collector-era surface: one endpoint, selected by ?action=
	r.HandleFunc("/", handler.Dispatch).Methods("GET")

	// Health and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// REST aliases for the same three reads
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stocks", handler.GetStocks).Methods("GET")
	api.HandleFunc("/signals", handler.GetSignals).Methods("GET")
	api.HandleFunc("/signals/sync", handler.SyncNew).Methods("GET")

	return r
}
