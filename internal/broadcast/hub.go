// Websocket observer hub — connection lifecycle, heartbeat, and frame
// fan-out.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emberhollow/villagesim/internal/engine"
)

const (
	// Time allowed to write a frame to an observer.
	writeWait = 10 * time.Second
	// Heartbeat cadence; an observer missing two pings is dropped.
	pingPeriod = 30 * time.Second
	pongWait   = 2*pingPeriod + 5*time.Second

	// Per-observer outbound buffer. A client that falls this far behind
	// is disconnected rather than allowed to stall the hub.
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Observers are read-only; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribeMsg is the only client → server message observers may send.
// Unknown or malformed messages are logged and ignored.
type subscribeMsg struct {
	Type      string   `json:"type"`
	Villagers []string `json:"villagers,omitempty"` // Empty = everyone
}

// observer is one connected websocket client.
type observer struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	filter map[string]bool // Villager id subscription filter; nil = all
}

// Hub owns all observer connections and the shared broadcast baseline.
type Hub struct {
	mu        sync.Mutex
	observers map[*observer]bool
	tracker   *Tracker
	lastFull  *Frame // Bootstrap frame for newly-connecting observers
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		observers: make(map[*observer]bool),
		tracker:   NewTracker(),
	}
}

// ObserverCount returns the number of connected observers.
func (h *Hub) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// HandleTick computes the delta frame for a tick event and fans it out.
// Wired to the engine's tick event. The whole fan-out runs under the hub
// lock: send channels are only ever closed under the same lock, so a
// disconnecting observer cannot close a channel mid-send, and a
// connecting observer never sees a partially-updated baseline. Sends are
// non-blocking, so the lock is held only for buffer handoffs.
func (h *Hub) HandleTick(ev engine.TickEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delta := h.tracker.FrameFor(ev)
	full := FullFrame(ev)
	h.lastFull = &full

	for o := range h.observers {
		payload, err := json.Marshal(o.filtered(delta))
		if err != nil {
			slog.Error("marshal broadcast frame", "error", err)
			continue
		}
		select {
		case o.send <- payload:
		default:
			// Observer is too far behind; closing send makes its
			// writePump exit and the connection drop.
			slog.Warn("dropping slow observer", "addr", o.conn.RemoteAddr())
			delete(h.observers, o)
			close(o.send)
		}
	}
}

// filtered applies the observer's subscription filter to a frame.
func (o *observer) filtered(f Frame) Frame {
	o.mu.Lock()
	filter := o.filter
	o.mu.Unlock()
	if filter == nil {
		return f
	}

	out := Frame{Time: f.Time, Paused: f.Paused, Speed: f.Speed}
	for _, u := range f.VillagerUpdates {
		if filter[u.ID] {
			out.VillagerUpdates = append(out.VillagerUpdates, u)
		}
	}
	for _, v := range f.VillagersFull {
		if filter[v.ID] {
			out.VillagersFull = append(out.VillagersFull, v)
		}
	}
	return out
}

// ServeWS upgrades an HTTP request to an observer connection. The new
// observer receives the last known full state before any delta frames.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("observer upgrade failed", "error", err)
		return
	}

	o := &observer{conn: conn, send: make(chan []byte, sendBuffer)}

	// Bootstrap with the last full frame so the observer never has to
	// reconstruct state from deltas it missed.
	h.mu.Lock()
	if h.lastFull != nil {
		if payload, err := json.Marshal(*h.lastFull); err == nil {
			o.send <- payload
		}
	}
	h.observers[o] = true
	count := len(h.observers)
	h.mu.Unlock()

	slog.Info("observer connected", "addr", conn.RemoteAddr(), "observers", count)

	go o.writePump(h)
	go o.readPump(h)
}

func (h *Hub) remove(o *observer) {
	h.mu.Lock()
	if _, ok := h.observers[o]; ok {
		delete(h.observers, o)
		close(o.send)
	}
	h.mu.Unlock()
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	for o := range h.observers {
		delete(h.observers, o)
		close(o.send)
	}
	h.mu.Unlock()
}

// readPump consumes client messages (subscription updates and pongs) and
// tears the connection down when the peer goes away.
func (o *observer) readPump(h *Hub) {
	defer func() {
		h.remove(o)
		o.conn.Close()
	}()

	o.conn.SetReadLimit(4096)
	o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := o.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("observer read error", "error", err)
			}
			return
		}

		var msg subscribeMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
			// Unknown control messages are ignored; the connection stays up.
			slog.Warn("ignoring malformed observer message", "addr", o.conn.RemoteAddr())
			continue
		}

		o.mu.Lock()
		if len(msg.Villagers) == 0 {
			o.filter = nil
		} else {
			o.filter = make(map[string]bool, len(msg.Villagers))
			for _, id := range msg.Villagers {
				o.filter[id] = true
			}
		}
		o.mu.Unlock()
	}
}

// writePump pushes frames and heartbeat pings to the client.
func (o *observer) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		o.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-o.send:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				o.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := o.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
