package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quantwatch/signalboard/internal/database"
	"github.com/quantwatch/signalboard/internal/metrics"
	"github.com/quantwatch/signalboard/internal/models"
	"github.com/quantwatch/signalboard/internal/redis"
)

// defaultSignalLimit bounds the recent-signal snapshot. Delta sync is the
// unbounded path; the snapshot only seeds a fresh client.
const defaultSignalLimit = 100

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db    *database.DB
	cache *redis.Client
}

// NewHandler creates a new Handler. cache may be nil.
func NewHandler(db *database.DB, cache *redis.Client) *Handler {
	return &Handler{
		db:    db,
		cache: cache,
	}
}

// Dispatch serves the collector-era query surface: a single endpoint selected
// by an action query parameter. The REST routes below are aliases.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "get_stocks":
		h.GetStocks(w, r)
	case "get_signals":
		h.GetSignals(w, r)
	case "sync_new":
		h.SyncNew(w, r)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// GetStocks handles action=get_stocks: the full watchlist, newest first.
func (h *Handler) GetStocks(w http.ResponseWriter, r *http.Request) {
	metrics.QueryRequests.WithLabelValues("get_stocks").Inc()

	stocks, err := h.db.ListStocks()
	if err != nil {
		metrics.QueryErrors.WithLabelValues("get_stocks").Inc()
		log.Printf("get_stocks failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stocks == nil {
		stocks = []*models.Stock{}
	}

	respondJSON(w, http.StatusOK, stocks)
}

// GetSignals handles action=get_signals: the bounded recent-signal snapshot,
// newest first, each row joined to its watch target name.
func (h *Handler) GetSignals(w http.ResponseWriter, r *http.Request) {
	metrics.QueryRequests.WithLabelValues("get_signals").Inc()

	limit := defaultSignalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= defaultSignalLimit {
			limit = n
		}
	}

	cacheKey := "signals:" + strconv.Itoa(limit)
	if h.cache != nil {
		ctx, cancel := cacheContext(r)
		defer cancel()
		if body, err := h.cache.GetSnapshot(ctx, cacheKey); err == nil {
			metrics.CacheHits.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		} else if err != goredis.Nil {
			log.Printf("snapshot cache read failed: %v", err)
		}
	}

	signals, err := h.db.RecentSignals(limit)
	if err != nil {
		metrics.QueryErrors.WithLabelValues("get_signals").Inc()
		log.Printf("get_signals failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if signals == nil {
		signals = []*models.SignalWithName{}
	}

	body, err := json.Marshal(signals)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		ctx, cancel := cacheContext(r)
		defer cancel()
		if err := h.cache.SetSnapshot(ctx, cacheKey, body); err != nil {
			log.Printf("snapshot cache write failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// SyncNew handles action=sync_new&last_id=N: every signal with id > last_id,
// ascending. This is the delta endpoint; it is never cached and never
// bounded, so a long-disconnected client receives its whole backlog.
func (h *Handler) SyncNew(w http.ResponseWriter, r *http.Request) {
	metrics.QueryRequests.WithLabelValues("sync_new").Inc()

	lastID, err := strconv.ParseInt(r.URL.Query().Get("last_id"), 10, 64)
	if err != nil || lastID < 0 {
		// The reference endpoint coerced garbage to 0; keep that.
		lastID = 0
	}

	signals, err := h.db.SignalsSince(lastID)
	if err != nil {
		metrics.QueryErrors.WithLabelValues("sync_new").Inc()
		log.Printf("sync_new(last_id=%d) failed: %v", lastID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if signals == nil {
		signals = []*models.SignalWithName{}
	}
	metrics.SyncRowsServed.Add(float64(len(signals)))

	respondJSON(w, http.StatusOK, signals)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)

	if err := h.db.Ping(); err != nil {
		services["postgres"] = "unhealthy: " + err.Error()
		health["status"] = "degraded"
	} else {
		services["postgres"] = "healthy"
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	respondJSON(w, http.StatusOK, health)
}

// cacheContext bounds cache round-trips so a slow Redis cannot slow a read
// that the database can answer directly.
func cacheContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 200*time.Millisecond)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
