package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
	"github.com/vovakirdan/khet/internal/games/khet/levels"
)

type memStore struct {
	mu    sync.Mutex
	shots []platformcore.Shot
}

func (m *memStore) SaveShot(shot platformcore.Shot) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shots = append(m.shots, shot)
	return int64(len(m.shots)), nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shots)
}

type testEnv struct {
	hub    *Hub
	store  *memStore
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, Options{})
}

func newTestEnvWith(t *testing.T, opts Options) *testEnv {
	t.Helper()
	store := &memStore{}
	opts.Store = store
	opts.Logger = log.New(io.Discard)
	hub := NewHub(opts)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return &testEnv{hub: hub, store: store, server: server}
}

func (e *testEnv) dial(t *testing.T, board string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws/" + board
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func readEvent(t *testing.T, conn *websocket.Conn, event string, v any) Message {
	t.Helper()
	msg := readMessage(t, conn)
	if msg.Event != event {
		t.Fatalf("expected %s event, got %s: %s", event, msg.Event, msg.Data)
	}
	if v != nil {
		if err := json.Unmarshal(msg.Data, v); err != nil {
			t.Fatalf("decode %s data: %v", event, err)
		}
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	msg := Message{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		msg.Data = raw
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestBoardsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var boards []BoardInfo
	if code := getJSON(t, env.server.URL+"/boards", &boards); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(boards) != 3 {
		t.Fatalf("expected 3 built-in boards, got %v", boards)
	}
	if boards[0].ID != "classic" || boards[0].Width != 10 || boards[0].Height != 8 || !boards[0].Builtin {
		t.Errorf("unexpected classic entry %+v", boards[0])
	}
}

func TestBoardEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var snap BoardSnapshot
	if code := getJSON(t, env.server.URL+"/boards/classic", &snap); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if snap.Width != 10 || snap.Height != 8 || len(snap.Tokens) != 8 || len(snap.Tokens[0]) != 10 {
		t.Errorf("unexpected snapshot size %dx%d", snap.Width, snap.Height)
	}
	if snap.Tokens[0][5] != "h" || snap.Glyphs[0][5] != "Sh" {
		t.Errorf("expected silver pharaoh at (5,0), got %q %q", snap.Tokens[0][5], snap.Glyphs[0][5])
	}
	if len(snap.Guns) != 2 || snap.Guns[0].Dir != core.DirSouth || snap.Guns[1].Color != core.ColorRed {
		t.Errorf("unexpected guns %+v", snap.Guns)
	}

	if code := getJSON(t, env.server.URL+"/boards/nope", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown board, got %d", code)
	}
}

func TestFireEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var path core.BeamPath
	if code := postJSON(t, env.server.URL+"/boards/classic/fire/0", &path); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if path.Status != core.StatusExitedBoard || path.Len() != 12 {
		t.Errorf("unexpected path %s", path)
	}
	if env.store.count() != 1 {
		t.Errorf("expected shot to be recorded, got %d", env.store.count())
	}

	tests := []struct {
		url  string
		code int
	}{
		{"/boards/classic/fire/7", http.StatusBadRequest},
		{"/boards/classic/fire/x", http.StatusBadRequest},
		{"/boards/nope/fire/0", http.StatusNotFound},
	}
	for _, tc := range tests {
		if code := postJSON(t, env.server.URL+tc.url, nil); code != tc.code {
			t.Errorf("POST %s: expected %d, got %d", tc.url, tc.code, code)
		}
	}
}

func TestFireEndpointRejectsGet(t *testing.T) {
	env := newTestEnv(t)

	if code := getJSON(t, env.server.URL+"/boards/classic/fire/0", nil); code == http.StatusOK {
		t.Error("GET must not fire a laser")
	}
	if env.store.count() != 0 {
		t.Errorf("GET recorded %d shots", env.store.count())
	}
}

func TestWebsocketUnknownBoard(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %v", resp)
	}
}

func TestWebsocketJoinAndRequestBoard(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s-bend")

	var snap BoardSnapshot
	msg := readEvent(t, conn, EventStatusBoard, &snap)
	if msg.Board != "s-bend" || snap.ID != "s-bend" || snap.Width != 4 {
		t.Errorf("unexpected join snapshot %+v", snap)
	}

	send(t, conn, EventRequestBoard, nil)
	readEvent(t, conn, EventStatusBoard, &snap)
	if snap.ID != "s-bend" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestWebsocketFireBroadcasts(t *testing.T) {
	env := newTestEnv(t)
	a := env.dial(t, "classic")
	b := env.dial(t, "classic")
	readEvent(t, a, EventStatusBoard, nil)
	readEvent(t, b, EventStatusBoard, nil)

	if n := env.hub.ClientCount("classic"); n != 2 {
		t.Errorf("expected 2 clients, got %d", n)
	}

	send(t, a, EventFire, FireRequest{Gun: 1})
	for _, conn := range []*websocket.Conn{a, b} {
		var path core.BeamPath
		readEvent(t, conn, EventBeam, &path)
		if path.Gun != 1 || path.Status != core.StatusExitedBoard {
			t.Errorf("unexpected beam %s", path)
		}
	}
	if env.store.count() != 1 {
		t.Errorf("expected one recorded shot, got %d", env.store.count())
	}

	send(t, a, EventFire, FireRequest{Gun: 5})
	var errData ErrorData
	readEvent(t, a, EventError, &errData)
	if !strings.Contains(errData.Message, "no laser 5") {
		t.Errorf("unexpected error %q", errData.Message)
	}
}

func TestHTTPFireReachesRoom(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s-bend")
	readEvent(t, conn, EventStatusBoard, nil)

	if code := postJSON(t, env.server.URL+"/boards/s-bend/fire/0", nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var path core.BeamPath
	readEvent(t, conn, EventBeam, &path)
	if !path.Hit() || path.HitPiece.Kind != core.KindPharaoh {
		t.Errorf("expected pharaoh hit, got %s", path)
	}
}

func TestWebsocketRotate(t *testing.T) {
	env := newTestEnv(t)
	a := env.dial(t, "classic")
	b := env.dial(t, "classic")
	readEvent(t, a, EventStatusBoard, nil)
	readEvent(t, b, EventStatusBoard, nil)

	send(t, a, EventRotate, RotateRequest{X: 9, Y: 3, Clockwise: true})
	for _, conn := range []*websocket.Conn{a, b} {
		var snap BoardSnapshot
		readEvent(t, conn, EventStatusBoard, &snap)
		if snap.Glyphs[3][9] != "RL" {
			t.Errorf("expected rotated pyramid RL at (9,3), got %q", snap.Glyphs[3][9])
		}
	}

	// The live board keeps the rotation
	snap, err := env.hub.Snapshot("classic")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Glyphs[3][9] != "RL" {
		t.Errorf("expected rotation to persist, got %q", snap.Glyphs[3][9])
	}

	tests := []struct {
		name string
		msg  any
		want string
	}{
		{"empty tile", RotateRequest{X: 5, Y: 5}, "nothing to rotate"},
		{"off board", RotateRequest{X: 10, Y: 0}, "off the board"},
	}
	for _, tc := range tests {
		send(t, a, EventRotate, tc.msg)
		var errData ErrorData
		readEvent(t, a, EventError, &errData)
		if !strings.Contains(errData.Message, tc.want) {
			t.Errorf("%s: expected %q in %q", tc.name, tc.want, errData.Message)
		}
	}
}

func TestWebsocketReset(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "classic")
	readEvent(t, conn, EventStatusBoard, nil)

	send(t, conn, EventRotate, RotateRequest{X: 9, Y: 3, Clockwise: true})
	readEvent(t, conn, EventStatusBoard, nil)

	send(t, conn, EventReset, nil)
	var snap BoardSnapshot
	readEvent(t, conn, EventStatusBoard, &snap)
	if snap.Glyphs[3][9] != "RJ" {
		t.Errorf("expected pyramid back at RJ after reset, got %q", snap.Glyphs[3][9])
	}

	// Rotating again must not touch the pristine copy
	send(t, conn, EventRotate, RotateRequest{X: 9, Y: 3, Clockwise: true})
	readEvent(t, conn, EventStatusBoard, nil)
	send(t, conn, EventReset, nil)
	readEvent(t, conn, EventStatusBoard, &snap)
	if snap.Glyphs[3][9] != "RJ" {
		t.Errorf("second reset: expected RJ, got %q", snap.Glyphs[3][9])
	}
}

func TestWebsocketSave(t *testing.T) {
	dir := t.TempDir()
	env := newTestEnvWith(t, Options{Loader: levels.NewLoader(dir), SaveDir: dir})
	conn := env.dial(t, "classic")
	readEvent(t, conn, EventStatusBoard, nil)

	send(t, conn, EventRotate, RotateRequest{X: 9, Y: 3, Clockwise: true})
	readEvent(t, conn, EventStatusBoard, nil)

	send(t, conn, EventSave, SaveRequest{ID: "my-classic", Name: "My Classic"})
	var saved SavedData
	readEvent(t, conn, EventSaved, &saved)
	if saved.ID != "my-classic" || saved.Path != filepath.Join(dir, "my-classic.yaml") {
		t.Errorf("unexpected saved event %+v", saved)
	}

	var snap BoardSnapshot
	if code := getJSON(t, env.server.URL+"/boards/my-classic", &snap); code != http.StatusOK {
		t.Fatalf("expected saved board to load, got %d", code)
	}
	if snap.Name != "My Classic" || snap.Glyphs[3][9] != "RL" {
		t.Errorf("saved board lost the rotation: name %q glyph %q", snap.Name, snap.Glyphs[3][9])
	}

	tests := []struct {
		name string
		req  SaveRequest
		want string
	}{
		{"empty id", SaveRequest{}, "invalid board id"},
		{"path escape", SaveRequest{ID: "../evil"}, "invalid board id"},
		{"upper case", SaveRequest{ID: "Mine"}, "invalid board id"},
	}
	for _, tc := range tests {
		send(t, conn, EventSave, tc.req)
		var errData ErrorData
		readEvent(t, conn, EventError, &errData)
		if !strings.Contains(errData.Message, tc.want) {
			t.Errorf("%s: expected %q in %q", tc.name, tc.want, errData.Message)
		}
	}
}

func TestWebsocketSaveDisabled(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "s-bend")
	readEvent(t, conn, EventStatusBoard, nil)

	send(t, conn, EventSave, SaveRequest{ID: "copy"})
	var errData ErrorData
	readEvent(t, conn, EventError, &errData)
	if !strings.Contains(errData.Message, "saving is disabled") {
		t.Errorf("unexpected error %q", errData.Message)
	}
}

func TestWebsocketBadMessages(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "classic")
	readEvent(t, conn, EventStatusBoard, nil)

	send(t, conn, "teleport", nil)
	readEvent(t, conn, EventError, nil)

	send(t, conn, EventFire, nil)
	var errData ErrorData
	readEvent(t, conn, EventError, &errData)
	if !strings.Contains(errData.Message, "missing data") {
		t.Errorf("unexpected error %q", errData.Message)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readEvent(t, conn, EventError, nil)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(Options{Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/classic"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readEvent(t, conn, EventStatusBoard, nil)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to close after hub stop")
	}

	if _, err := hub.Fire(context.Background(), "classic", 0); err != ErrHubStopped {
		t.Errorf("expected ErrHubStopped, got %v", err)
	}
}
