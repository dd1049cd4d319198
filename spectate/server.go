package spectate

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var upgrader = websocket.Upgrader{
	// Watchers are read-only, so any origin may connect.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Server serves the hub's snapshots over HTTP.
type Server struct {
	hub        *Hub
	httpServer *http.Server
	listener   net.Listener
}

// NewServer prepares a server on addr. Nothing listens until Start.
func NewServer(addr string, hub *Hub) *Server {
	s := &Server{hub: hub}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler routes GET /state and GET /ws.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/state", s.handleState)
	router.Get("/ws", s.handleWebSocket)
	return router
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.hub.Latest()
	if !ok {
		http.Error(w, "no game yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		glog.Warningf("Encode state: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("Spectator upgrade failed: %v", err)
		return
	}

	watcher, ok := s.hub.add(ws)
	if !ok {
		ws.Close()
		return
	}
	defer s.hub.remove(watcher.id)

	// Incoming messages are discarded; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.httpServer.Addr)
	}
	s.listener = listener
	glog.Infof("Spectator feed listening on http://%s", listener.Addr())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			glog.Errorf("Spectator server stopped: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown disconnects watchers and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown spectator server")
	}
	return nil
}
