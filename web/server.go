package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"livescore-service/config"
	"livescore-service/database"
	"livescore-service/models"
	"livescore-service/services"
)

// Server exposes the operator API and the live WebSocket endpoint. It
// is a thin caller of the core services; all invariants live below it.
type Server struct {
	config     *config.Config
	store      *database.MatchStore
	cache      *services.ReferenceCache
	enricher   *services.Enricher
	syncer     *services.PollingSyncer
	wsHub      *Hub
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

func NewServer(cfg *config.Config, store *database.MatchStore, cache *services.ReferenceCache,
	enricher *services.Enricher, syncer *services.PollingSyncer, hub *Hub) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		cache:    cache,
		enricher: enricher,
		syncer:   syncer,
		wsHub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // restrict in production
			},
		},
	}
}

func (s *Server) Start() error {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/matches", s.handleGetMatches).Methods("GET")
	api.HandleFunc("/matches/{match_id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/matches/{match_id}/events", s.handleGetMatchEvents).Methods("GET")
	api.HandleFunc("/cache/stats", s.handleCacheStats).Methods("GET")
	api.HandleFunc("/cache/reload", s.handleCacheReload).Methods("POST")
	api.HandleFunc("/cache/reset", s.handleCacheReset).Methods("POST")
	api.HandleFunc("/sync/run", s.handleSyncRun).Methods("POST")

	router.HandleFunc("/ws", s.handleWebSocket)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// enrichedMatch is a match row joined with display metadata.
type enrichedMatch struct {
	database.MatchRow
	HomeTeam    *models.EnrichedEntity `json:"home_team,omitempty"`
	AwayTeam    *models.EnrichedEntity `json:"away_team,omitempty"`
	Competition *models.EnrichedEntity `json:"competition,omitempty"`
}

func (s *Server) enrich(row database.MatchRow) enrichedMatch {
	em := enrichedMatch{MatchRow: row}
	if row.HomeTeamID != nil {
		em.HomeTeam = s.enricher.Enrich(models.KindTeam, *row.HomeTeamID)
	}
	if row.AwayTeamID != nil {
		em.AwayTeam = s.enricher.Enrich(models.KindTeam, *row.AwayTeamID)
	}
	if row.CompetitionID != nil {
		em.Competition = s.enricher.Enrich(models.KindCompetition, *row.CompetitionID)
	}
	return em
}

// handleGetMatches lists matches for one date (default today, UTC).
func (s *Server) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date, want yyyy-mm-dd", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	rows, err := s.store.ListMatchesByDate(day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Freshen the cache so names resolve; placeholders on miss.
	s.cache.EnsureLoaded(models.KindTeam)
	s.cache.EnsureLoaded(models.KindCompetition)

	out := make([]enrichedMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.enrich(row))
	}
	writeJSON(w, map[string]interface{}{
		"date":    day.Format("2006-01-02"),
		"matches": out,
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	row, err := s.store.GetMatch(matchID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if row == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	writeJSON(w, s.enrich(*row))
}

func (s *Server) handleGetMatchEvents(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	events, err := s.store.GetEvents(matchID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"match_id": matchID,
		"count":    len(events),
		"events":   events,
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cache.Stats())
}

func (s *Server) handleCacheReload(w http.ResponseWriter, r *http.Request) {
	s.cache.ReloadAll()
	writeJSON(w, map[string]interface{}{
		"status": "reloaded",
		"stats":  s.cache.Stats(),
	})
}

func (s *Server) handleCacheReset(w http.ResponseWriter, r *http.Request) {
	s.cache.ResetAll()
	writeJSON(w, map[string]interface{}{"status": "reset"})
}

// handleSyncRun triggers a polling sync for an offset window
// (?start=-1&end=1, defaults 0..0) or a single day (?date=yyyy-mm-dd)
// and reports the result counts.
func (s *Server) handleSyncRun(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start := 0
	end := 0
	if raw := query.Get("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date, want yyyy-mm-dd", http.StatusBadRequest)
			return
		}
		today := time.Now().UTC().Truncate(24 * time.Hour)
		offset := int(day.Sub(today).Hours() / 24)
		writeJSON(w, s.syncer.SyncWindow(offset, offset))
		return
	}
	if raw := query.Get("start"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid start offset", http.StatusBadRequest)
			return
		}
		start = v
	}
	if raw := query.Get("end"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid end offset", http.StatusBadRequest)
			return
		}
		end = v
	}
	if start > end {
		http.Error(w, "start offset after end offset", http.StatusBadRequest)
		return
	}

	result := s.syncer.SyncWindow(start, end)
	writeJSON(w, result)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      s.wsHub,
		conn:     conn,
		send:     make(chan []byte, 64),
		matchIDs: make(map[string]bool),
	}
	s.wsHub.register <- client

	go client.writePump()
	go client.readPump()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
