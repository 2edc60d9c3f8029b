// Package devserver implements the development backend the terminal client
// talks to: instrument search, the user layout store, a canned AI query
// endpoint, and a random-walk quote stream over websocket. It exists so the
// client is fully exercisable without the production services.
package devserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"marketterm/internal/launchpad"
	"marketterm/internal/util"
)

const layoutsStoreKey = "server_user_layouts"

// KV is the persistence surface for server-side state. Satisfied by
// localstore.Store.
type KV interface {
	Get(key string, dest any) bool
	Put(key string, v any) error
}

// Server is the dev backend.
type Server struct {
	log       *slog.Logger
	kv        KV
	aiLimiter *util.RateLimiter
	upgrader  websocket.Upgrader

	mu     sync.Mutex
	prices map[string]float64
	rng    *rand.Rand
}

// New creates a Server. aiRatePerMin throttles the AI query endpoint.
func New(kv KV, aiRatePerMin int, log *slog.Logger) *Server {
	if aiRatePerMin <= 0 {
		aiRatePerMin = 60
	}
	s := &Server{
		log:       log,
		kv:        kv,
		aiLimiter: util.NewRateLimiter(aiRatePerMin),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		prices:    make(map[string]float64),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, inst := range universe {
		s.prices[inst.Symbol] = inst.Price
	}
	return s
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/instruments/search", s.handleSearch)
		r.Get("/user/layouts", s.handleGetLayouts)
		r.Put("/user/layouts", s.handlePutLayouts)
		r.Post("/ai/query", s.handleAIQuery)
		r.Get("/quotes", s.handleQuotes)
	})

	return r
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := searchInstruments(query, 10)

	s.mu.Lock()
	for i := range results {
		if p, ok := s.prices[results[i].Symbol]; ok {
			results[i].Price = p
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"items": results})
}

type layoutsPayload struct {
	Items []launchpad.LayoutPreset `json:"items"`
}

func (s *Server) handleGetLayouts(w http.ResponseWriter, r *http.Request) {
	var items []launchpad.LayoutPreset
	if s.kv != nil {
		s.kv.Get(layoutsStoreKey, &items)
	}
	writeJSON(w, http.StatusOK, layoutsPayload{Items: items})
}

func (s *Server) handlePutLayouts(w http.ResponseWriter, r *http.Request) {
	var payload layoutsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid layouts payload")
		return
	}
	if s.kv != nil {
		if err := s.kv.Put(layoutsStoreKey, payload.Items); err != nil {
			if s.log != nil {
				s.log.Error("persisting layouts", "error", err)
			}
			writeError(w, http.StatusInternalServerError, "persisting layouts failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAIQuery(w http.ResponseWriter, r *http.Request) {
	if err := s.aiLimiter.Wait(r.Context()); err != nil {
		writeError(w, http.StatusTooManyRequests, "rate limited")
		return
	}

	var req struct {
		Query string `json:"q"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	session := util.MarketSession(time.Now())
	answer := fmt.Sprintf("Markets are currently %s. No analysis backend is attached in dev mode; your query was %q.", session, req.Query)
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// handleQuotes upgrades to a websocket and publishes random-walk ticks for
// the symbols the client subscribes to. Prices drift harder during regular
// hours than outside them.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var mu sync.Mutex
	subscribed := make(map[string]struct{})

	// Reader: subscription frames only. Any read error ends the session.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			var msg struct {
				Op      string   `json:"op"`
				Symbols []string `json:"symbols"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Op != "subscribe" {
				continue
			}
			mu.Lock()
			subscribed = make(map[string]struct{}, len(msg.Symbols))
			for _, sym := range msg.Symbols {
				subscribed[sym] = struct{}{}
			}
			mu.Unlock()
		}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-r.Context().Done():
			return
		case now := <-ticker.C:
			mu.Lock()
			symbols := make([]string, 0, len(subscribed))
			for sym := range subscribed {
				symbols = append(symbols, sym)
			}
			mu.Unlock()

			for _, sym := range symbols {
				price := s.nextPrice(sym)
				tick := map[string]any{"symbol": sym, "price": price, "time": now}
				if err := conn.WriteJSON(tick); err != nil {
					return
				}
			}
		}
	}
}

// nextPrice advances the random walk for sym, seeding unknown symbols at 100.
func (s *Server) nextPrice(sym string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[sym]
	if !ok || price <= 0 {
		price = 100
	}

	drift := 0.0005
	if util.IsMarketOpen(time.Now()) {
		drift = 0.002
	}
	price *= 1 + drift*(s.rng.Float64()*2-1)
	if price < 0.01 {
		price = 0.01
	}
	s.prices[sym] = price
	return price
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
