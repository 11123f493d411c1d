// Package api serves the HTTP control surface and the observer
// websocket endpoint. GET endpoints are public (read-only observation);
// POST control endpoints require a bearer token when one is configured.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/emberhollow/villagesim/internal/broadcast"
	"github.com/emberhollow/villagesim/internal/engine"
	"github.com/emberhollow/villagesim/internal/persistence"
)

// Server exposes the simulation over HTTP.
type Server struct {
	Eng      *engine.Engine
	Hub      *broadcast.Hub
	DB       *persistence.DB
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = control open.
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := s.routes()
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")
	go func() {
		if err := http.ListenAndServe(s.Addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public read-only endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/villagers", s.handleVillagers)
	mux.HandleFunc("GET /api/v1/villager/{id}", s.handleVillager)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)

	// Control endpoints — synchronous, idempotent, all return the clock state.
	mux.HandleFunc("POST /api/v1/control/start", s.adminOnly(s.handleStart))
	mux.HandleFunc("POST /api/v1/control/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("POST /api/v1/control/toggle", s.adminOnly(s.handleToggle))
	mux.HandleFunc("POST /api/v1/control/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/control/time", s.adminOnly(s.handleTime))

	// Observer websocket.
	mux.HandleFunc("GET /ws", s.Hub.ServeWS)

	return mux
}

// adminOnly guards control endpoints with a bearer token when configured.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	clock, tm, views := s.Eng.FullState()
	writeJSON(w, map[string]any{
		"clock":     clock,
		"time":      tm,
		"villagers": len(views),
		"observers": s.Hub.ObserverCount(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	clock, tm, views := s.Eng.FullState()
	writeJSON(w, map[string]any{
		"clock":     clock,
		"time":      tm,
		"villagers": views,
	})
}

func (s *Server) handleVillagers(w http.ResponseWriter, r *http.Request) {
	_, _, views := s.Eng.FullState()
	writeJSON(w, views)
}

func (s *Server) handleVillager(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, _, views := s.Eng.FullState()
	for _, v := range views {
		if v.ID != id {
			continue
		}
		resp := map[string]any{"villager": v}
		if s.DB != nil {
			if thoughts, err := s.DB.RecentThoughts(id, 10); err == nil {
				resp["recent_thoughts"] = thoughts
			}
		}
		writeJSON(w, resp)
		return
	}
	http.Error(w, "villager not found", http.StatusNotFound)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Stats())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Start())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Pause())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.TogglePause())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Speed <= 0 {
		slog.Warn("malformed speed request", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "expected {\"speed\": n} with n > 0", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Eng.SetSpeed(body.Speed))
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day  *int `json:"day"`
		Hour *int `json:"hour"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Day == nil || body.Hour == nil {
		slog.Warn("malformed time request", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "expected {\"day\": d, \"hour\": h}", http.StatusBadRequest)
		return
	}
	if *body.Hour < 0 || *body.Hour > 23 || *body.Day < 0 {
		http.Error(w, fmt.Sprintf("time out of range: day %d hour %d", *body.Day, *body.Hour), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Eng.SetTime(*body.Day, *body.Hour))
}
