// Package spectate streams game snapshots to HTTP and WebSocket watchers.
package spectate

import (
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"raysnake/game"
)

const (
	// sendBuffer snapshots are queued per watcher before new ones are dropped.
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// watcher is one WebSocket connection.
type watcher struct {
	id   string
	ws   *websocket.Conn
	send chan game.Snapshot
}

func (w *watcher) writeLoop() {
	for snap := range w.send {
		w.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := w.ws.WriteJSON(snap); err != nil {
			glog.V(1).Infof("Spectator %s write failed: %v", w.id, err)
			w.ws.Close()
			for range w.send {
			}
			return
		}
	}
	w.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	w.ws.Close()
}

// Hub fans snapshots out to every watcher. Publish never blocks the caller:
// a watcher that falls behind misses snapshots.
type Hub struct {
	mu        sync.RWMutex
	watchers  map[string]*watcher
	latest    game.Snapshot
	hasLatest bool
	closed    bool
}

// NewHub returns a hub with no watchers.
func NewHub() *Hub {
	return &Hub{watchers: make(map[string]*watcher)}
}

// Publish records s as the latest snapshot and queues it for every watcher.
func (h *Hub) Publish(s game.Snapshot) {
	h.mu.Lock()
	h.latest = s
	h.hasLatest = true
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, w := range h.watchers {
		select {
		case w.send <- s:
		default:
		}
	}
}

// Latest returns the last published snapshot.
func (h *Hub) Latest() (game.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasLatest
}

// Count returns the number of connected watchers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// add registers ws and starts its writer. The latest snapshot, if any, is
// queued first.
func (h *Hub) add(ws *websocket.Conn) (*watcher, bool) {
	w := &watcher{
		id:   uuid.New().String(),
		ws:   ws,
		send: make(chan game.Snapshot, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	if h.hasLatest {
		w.send <- h.latest
	}
	h.watchers[w.id] = w
	go w.writeLoop()
	glog.V(1).Infof("Spectator %s connected from %s", w.id, ws.RemoteAddr())
	return w, true
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.watchers[id]; ok {
		delete(h.watchers, id)
		close(w.send)
		glog.V(1).Infof("Spectator %s disconnected", id)
	}
}

// Close disconnects every watcher and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, w := range h.watchers {
		delete(h.watchers, id)
		close(w.send)
	}
}
