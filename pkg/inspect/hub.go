package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/decantr-dev/decantr/pkg/state"
)

// Snapshot is the aggregate served by /stats.
type Snapshot struct {
	Flushes int   `json:"flushes"`
	Passes  int   `json:"passes"`
	Runs    int   `json:"runs"`
	Skipped int   `json:"skipped"`
	Errors  int   `json:"errors"`
	Dropped int64 `json:"dropped"`
	Clients int   `json:"clients"`
}

// Hub broadcasts scheduler events to WebSocket clients.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	events    chan Event
	runEvents bool
	dropped   atomic.Int64
	logger    *slog.Logger

	statsMu sync.Mutex
	stats   Snapshot
}

var _ state.Observer = (*Hub)(nil)

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets how many events may wait for broadcast. Default: 1024.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.events = make(chan Event, n)
		}
	}
}

// WithRunEvents enables/disables per-run messages. Enabled by default.
func WithRunEvents(enabled bool) Option {
	return func(h *Hub) {
		h.runEvents = enabled
	}
}

// WithLogger sets the logger for connection errors.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCheckOrigin replaces the WebSocket origin check. The default accepts
// every origin, which suits a local devtools endpoint.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHub creates a hub. Call Run to start broadcasting.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		events:    make(chan Event, 1024),
		runEvents: true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FlushStarted implements state.Observer.
func (h *Hub) FlushStarted() {
	h.publish(Event{Type: EventFlushStarted, Time: time.Now()})
}

// FlushFinished implements state.Observer.
func (h *Hub) FlushFinished(s state.FlushStats) {
	h.statsMu.Lock()
	h.stats.Flushes++
	h.stats.Passes += s.Passes
	h.stats.Runs += s.Runs
	h.stats.Skipped += s.Skipped
	h.stats.Errors += s.Errors
	h.statsMu.Unlock()

	h.publish(flushEvent(s))
}

// Ran implements state.Observer.
func (h *Hub) Ran(info state.RunInfo) {
	if h.runEvents {
		h.publish(runEvent(info))
	}
}

// publish queues ev without blocking the runtime.
func (h *Hub) publish(ev Event) {
	select {
	case h.events <- ev:
	default:
		h.dropped.Add(1)
	}
}

// Run broadcasts queued events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.broadcast(ev)
		}
	}
}

// Router returns the inspector's HTTP routes.
func (h *Hub) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/ws", h.HandleWebSocket)
	r.Get("/stats", h.handleStats)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("inspect: upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Snapshot()); err != nil {
		h.logger.Debug("inspect: write stats", "error", err)
	}
}

// Snapshot returns the aggregate counters.
func (h *Hub) Snapshot() Snapshot {
	h.statsMu.Lock()
	s := h.stats
	h.statsMu.Unlock()

	s.Dropped = h.dropped.Load()
	s.Clients = h.ClientCount()
	return s
}

// broadcast sends an event to all connected clients.
func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("inspect: dropping client", "error", err)
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
