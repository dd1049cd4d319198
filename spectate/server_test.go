package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"raysnake/game"
)

// wireSnapshot mirrors the JSON fields the tests look at.
type wireSnapshot struct {
	UUID     string `json:"uuid"`
	Score    int    `json:"score"`
	State    string `json:"state"`
	Heading  string `json:"heading"`
	Ticks    int    `json:"ticks"`
	Segments []struct {
		Pos struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"pos"`
	} `json:"segments"`
}

func newTestGame() *game.Game {
	opts := game.DefaultOptions()
	opts.Seed = 7
	return game.NewGame(opts)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStateEndpoint(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(NewServer(":0", hub).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the first snapshot, got %d", resp.StatusCode)
	}

	g := newTestGame()
	g.Tick()
	hub.Publish(g.Snapshot())

	resp, err = http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var snap wireSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if snap.UUID != g.UUID || snap.Ticks != 1 || snap.State != "playing" || snap.Heading != "right" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if len(snap.Segments) != 3 || snap.Segments[0].Pos.X != 11 || snap.Segments[0].Pos.Y != 10 {
		t.Errorf("Unexpected segments %+v", snap.Segments)
	}
}

func TestStateFollowsPauseAndRestart(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(NewServer(":0", hub).Handler())
	defer ts.Close()

	fetch := func() wireSnapshot {
		t.Helper()
		resp, err := http.Get(ts.URL + "/state")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var snap wireSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		return snap
	}

	g := newTestGame()
	g.TogglePause()
	hub.Publish(g.Snapshot())
	if snap := fetch(); snap.State != "paused" {
		t.Errorf("Expected paused, got %s", snap.State)
	}

	old := g.UUID
	g.Restart()
	hub.Publish(g.Snapshot())
	if snap := fetch(); snap.State != "playing" || snap.UUID == old {
		t.Errorf("Expected a fresh playing game, got %s %s", snap.State, snap.UUID)
	}
}

func TestWebSocketStream(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(NewServer(":0", hub).Handler())
	defer ts.Close()

	g := newTestGame()
	hub.Publish(g.Snapshot())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snap wireSnapshot
	if err := ws.ReadJSON(&snap); err != nil {
		t.Fatalf("Read latest failed: %v", err)
	}
	if snap.Ticks != 0 {
		t.Errorf("Expected the latest snapshot on connect, got tick %d", snap.Ticks)
	}
	if hub.Count() != 1 {
		t.Errorf("Expected 1 watcher, got %d", hub.Count())
	}

	for i := 1; i <= 3; i++ {
		g.Tick()
		hub.Publish(g.Snapshot())
		if err := ws.ReadJSON(&snap); err != nil {
			t.Fatalf("Read tick %d failed: %v", i, err)
		}
		if snap.Ticks != i {
			t.Errorf("Expected tick %d, got %d", i, snap.Ticks)
		}
	}

	ws.Close()
	waitFor(t, "the watcher to leave", func() bool { return hub.Count() == 0 })
}

func TestPublishDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(NewServer(":0", hub).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()
	waitFor(t, "the watcher to register", func() bool { return hub.Count() == 1 })

	// The client never reads, so its queue fills up.
	g := newTestGame()
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*20; i++ {
			hub.Publish(g.Snapshot())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow watcher")
	}
}

func TestShutdown(t *testing.T) {
	hub := NewHub()
	srv := NewServer("127.0.0.1:0", hub)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()
	waitFor(t, "the watcher to register", func() bool { return hub.Count() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if hub.Count() != 0 {
		t.Errorf("Expected no watchers after shutdown, got %d", hub.Count())
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("Expected a normal close, got %v", err)
	}
}
