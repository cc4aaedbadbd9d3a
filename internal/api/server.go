// Package api serves the world over HTTP. GET endpoints read published
// snapshots and never touch live simulation state; POST endpoints require a
// bearer token and enqueue intents the simulation applies at its next tick
// boundary. The websocket stream relays the event log.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/genesis/internal/agents"
	"github.com/talgya/genesis/internal/engine"
	"github.com/talgya/genesis/internal/persistence"
)

// Server serves snapshots, events, and the admin control plane.
type Server struct {
	Pub    *engine.Publisher
	Sched  *engine.Scheduler
	Ticker *engine.Ticker
	Events *engine.EventLog
	DB     *persistence.DB

	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	ArchiveDir string

	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

// Start begins serving in a goroutine. Call Shutdown to stop.
func (s *Server) Start() {
	streamLimiter := NewRateLimiter(10, time.Minute)
	archiveLimiter := NewRateLimiter(6, time.Hour)

	mux := http.NewServeMux()

	// Public read path.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/crisis", s.handleCrisis)
	mux.HandleFunc("/api/v1/deaths", s.handleDeaths)

	// Live stream.
	mux.HandleFunc("/api/v1/stream", Limit(streamLimiter, s.handleStream))

	// Admin control plane.
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/spawn", s.adminOnly(s.handleSpawn))
	mux.HandleFunc("/api/v1/archive", s.adminOnly(Limit(archiveLimiter, s.handleArchive)))

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// The stream is public observation data; origin checks add nothing.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	addr := fmt.Sprintf(":%d", s.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires a bearer token on POST; GETs pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no GENESIS_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Pub.Latest()
	writeJSON(w, map[string]any{
		"name":       "Genesis",
		"tick":       snap.Tick,
		"sim_time":   snap.SimTime,
		"speed":      s.Ticker.Speed(),
		"population": snap.Stats.Population,
		"births":     snap.Stats.Births,
		"deaths":     snap.Stats.Deaths,
		"avg_mood":   snap.Stats.AvgMood,
		"crisis":     snap.Crisis,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	snap := s.Pub.Latest()

	type summary struct {
		ID        agents.AgentID   `json:"id"`
		Name      string           `json:"name"`
		Stage     agents.LifeStage `json:"stage"`
		AgeYears  float64          `json:"age_years"`
		Health    float32          `json:"health"`
		Mood      float32          `json:"mood"`
		Longitude float64          `json:"longitude"`
		Latitude  float64          `json:"latitude"`
	}

	out := make([]summary, 0, len(snap.Agents))
	for _, a := range snap.Agents {
		if !a.Alive {
			continue
		}
		out = append(out, summary{
			ID: a.ID, Name: a.Name, Stage: a.Stage, AgeYears: a.AgeYears,
			Health: a.Health, Mood: a.Mood,
			Longitude: a.Longitude, Latitude: a.Latitude,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, out)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	id := agents.AgentID(strings.TrimPrefix(r.URL.Path, "/api/v1/agent/"))
	snap := s.Pub.Latest()

	if a, ok := snap.Agent(id); ok {
		writeJSON(w, a)
		return
	}
	// Dead agents resolve to their record rather than a 404 surprise.
	if rec, ok := snap.Deceased(id); ok {
		writeJSON(w, map[string]any{"deceased": rec})
		return
	}
	http.Error(w, "unknown agent", http.StatusNotFound)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	// The in-memory ring only holds recent history; scope=all reaches back
	// into everything the periodic saves have persisted.
	if r.URL.Query().Get("scope") == "all" && s.DB != nil {
		events, err := s.DB.RecentEvents(limit)
		if err != nil {
			slog.Error("event history query failed", "error", err)
			http.Error(w, "event history unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
		return
	}
	writeJSON(w, s.Events.Recent(limit))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Pub.Latest().Stats)
}

func (s *Server) handleCrisis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Pub.Latest().Crisis)
}

func (s *Server) handleDeaths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Pub.Latest().Deaths)
}

// handleStream upgrades to a websocket and relays live events until the
// client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	events, cancel := s.Events.Subscribe(64)
	defer cancel()

	// Reader goroutine: only to detect close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		s.Ticker.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Ticker.Speed()})
}

// handleSpawn enqueues founder spawns; the simulation applies them at its
// next tick boundary.
func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count <= 0 || req.Count > 1000 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.Sched.Enqueue(func(sch *engine.Scheduler) {
		sch.Seed(req.Count)
	})
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]any{"queued": req.Count})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := s.Pub.Latest()
	path := fmt.Sprintf("%s/snapshot-%d.json.zst", s.ArchiveDir, snap.Tick)
	if err := persistence.WriteArchive(path, snap); err != nil {
		slog.Error("archive failed", "error", err)
		http.Error(w, "archive failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"path": path, "tick": snap.Tick})
}
