// Package websocket pushes board snapshots and fired beams to browser
// clients. Each board id is a room; every client in a room sees the same
// live board and the beams fired on it.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/khet/internal/games/khet"
	"github.com/vovakirdan/khet/internal/games/khet/core"
	"github.com/vovakirdan/khet/internal/games/khet/levels"
	"github.com/vovakirdan/khet/internal/storage"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Default interval between pings. Must be less than the pong wait.
	defaultPingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Buffered outbound messages per client.
	sendBuffer = 64
)

// Event names on the wire.
const (
	EventRequestBoard = "request_board"
	EventFire         = "fire"
	EventRotate       = "rotate"
	EventReset        = "reset"
	EventSave         = "save"
	EventSaved        = "saved"
	EventStatusBoard  = "status_board"
	EventBeam         = "beam"
	EventError        = "error"
)

// boardIDPattern limits saved board ids to names that are safe file names.
var boardIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ErrHubStopped is returned when the hub's Run loop has exited.
var ErrHubStopped = errors.New("websocket: hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Event string          `json:"event"`
	Board string          `json:"board,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// FireRequest is the data of a fire event.
type FireRequest struct {
	Gun int `json:"gun"`
}

// RotateRequest is the data of a rotate event.
type RotateRequest struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Clockwise bool `json:"clockwise"`
}

// SaveRequest is the data of a save event.
type SaveRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// SavedData is the data of a saved event.
type SavedData struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// ErrorData is the data of an error event.
type ErrorData struct {
	Message string `json:"message"`
}

// GunInfo describes one laser in a snapshot.
type GunInfo struct {
	Index int        `json:"index"`
	Pos   core.Coord `json:"pos"`
	Dir   core.Dir   `json:"dir"`
	Color core.Color `json:"color"`
}

// BoardSnapshot is the data of a status_board event.
type BoardSnapshot struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Tokens [][]string `json:"tokens"` // Piece kinds, see core.RenderTokens
	Glyphs [][]string `json:"glyphs"` // Color, kind and facing, see core.PieceGlyph
	Guns   []GunInfo  `json:"guns"`
}

// Client is one websocket connection bound to a board room.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	boardID string
}

// room is the live board shared by the clients watching it.
type room struct {
	level   levels.Level
	board   *core.Board
	initial *core.Board // As loaded; reset restores it
	clients map[*Client]bool
}

type inbound struct {
	client *Client
	msg    Message
}

type outbound struct {
	boardID string
	data    []byte
}

// Options configures a Hub.
type Options struct {
	Loader     *levels.Loader    // Board source; nil means built-in boards only
	Store      storage.ShotSaver // Optional shot history
	Logger     *log.Logger       // Defaults to a stderr logger
	PingPeriod time.Duration     // Defaults to 54s
	SaveDir    string            // Where save events write boards; empty disables saving
}

// Hub owns the rooms and routes messages between clients.
// Room membership and board mutation happen on the Run goroutine; HTTP
// handlers read boards under the read lock.
type Hub struct {
	loader     *levels.Loader
	store      storage.ShotSaver
	logger     *log.Logger
	pingPeriod time.Duration
	saveDir    string

	mu    sync.RWMutex
	rooms map[string]*room

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	broadcast  chan outbound
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(opts Options) *Hub {
	if opts.Loader == nil {
		opts.Loader = levels.NewLoader("")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "khet-ws",
		})
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = defaultPingPeriod
	}

	return &Hub{
		loader:     opts.Loader,
		store:      opts.Store,
		logger:     opts.Logger,
		pingPeriod: opts.PingPeriod,
		saveDir:    opts.SaveDir,
		rooms:      make(map[string]*room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		broadcast:  make(chan outbound),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.mu.Lock()
			h.unregisterClient(client)
			h.mu.Unlock()

		case in := <-h.inbound:
			h.handle(in.client, in.msg)

		case out := <-h.broadcast:
			h.mu.Lock()
			h.deliver(out.boardID, out.data)
			h.mu.Unlock()
		}
	}
}

// openRoom returns the room for id, loading its board on first use.
// Callers hold the write lock.
func (h *Hub) openRoom(id string) (*room, error) {
	if r, ok := h.rooms[id]; ok {
		return r, nil
	}

	level, err := h.loader.LoadByID(id)
	if err != nil {
		return nil, err
	}
	board, err := level.ToBoard()
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", id, err)
	}

	r := &room{level: level, board: board, initial: board.Clone(), clients: make(map[*Client]bool)}
	h.rooms[id] = r
	return r, nil
}

// withRoom runs fn on the room for id under the read lock, opening the
// room first if needed.
func (h *Hub) withRoom(id string, fn func(r *room)) error {
	h.mu.RLock()
	if r, ok := h.rooms[id]; ok {
		fn(r)
		h.mu.RUnlock()
		return nil
	}
	h.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.openRoom(id)
	if err != nil {
		return err
	}
	fn(r)
	return nil
}

// Snapshot returns the current state of a board.
func (h *Hub) Snapshot(id string) (BoardSnapshot, error) {
	var snap BoardSnapshot
	err := h.withRoom(id, func(r *room) {
		snap = r.snapshot()
	})
	return snap, err
}

// Fire traces a beam on the live board, records it and pushes it to the
// room's clients.
func (h *Hub) Fire(ctx context.Context, id string, gun int) (core.BeamPath, error) {
	var (
		path   core.BeamPath
		gunErr error
	)
	err := h.withRoom(id, func(r *room) {
		if gun < 0 || gun >= r.board.GunCount() {
			gunErr = fmt.Errorf("board %s has no laser %d", id, gun)
			return
		}
		path = r.board.FireLaser(gun)
		h.saveShot(id, r.board, path)
	})
	if err != nil {
		return core.BeamPath{}, err
	}
	if gunErr != nil {
		return core.BeamPath{}, gunErr
	}

	data, err := encode(EventBeam, id, path)
	if err != nil {
		return path, err
	}
	select {
	case h.broadcast <- outbound{boardID: id, data: data}:
	case <-h.done:
		return path, ErrHubStopped
	case <-ctx.Done():
		return path, ctx.Err()
	}
	return path, nil
}

// ClientCount returns the number of clients watching a board.
func (h *Hub) ClientCount(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[id]; ok {
		return len(r.clients)
	}
	return 0
}

// ServeWS upgrades the request and joins the client to the board's room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, boardID string) {
	if _, err := h.Snapshot(boardID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		boardID: boardID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// registerClient adds a client to its room and sends it the board.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, err := h.openRoom(client.boardID)
	if err != nil {
		// The room was checked before the upgrade; only a board file
		// removed in between ends up here.
		close(client.send)
		return
	}
	r.clients[client] = true

	h.logger.Info("client joined", "board", client.boardID, "clients", len(r.clients))
	h.sendTo(client, EventStatusBoard, r.snapshot())
}

// unregisterClient removes a client from its room. Callers hold the
// write lock.
func (h *Hub) unregisterClient(client *Client) {
	r, ok := h.rooms[client.boardID]
	if !ok {
		return
	}
	if _, ok := r.clients[client]; !ok {
		return
	}
	delete(r.clients, client)
	close(client.send)

	h.logger.Info("client left", "board", client.boardID, "clients", len(r.clients))
}

// handle applies one client event on the Run goroutine.
func (h *Hub) handle(client *Client, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[client.boardID]
	if !ok || !r.clients[client] {
		return
	}

	switch msg.Event {
	case EventRequestBoard:
		h.sendTo(client, EventStatusBoard, r.snapshot())

	case EventFire:
		var req FireRequest
		if err := decodeData(msg.Data, &req); err != nil {
			h.sendError(client, err)
			return
		}
		if req.Gun < 0 || req.Gun >= r.board.GunCount() {
			h.sendError(client, fmt.Errorf("no laser %d on this board", req.Gun))
			return
		}
		path := r.board.FireLaser(req.Gun)
		h.saveShot(client.boardID, r.board, path)
		h.broadcastLocked(client.boardID, EventBeam, path)

	case EventRotate:
		var req RotateRequest
		if err := decodeData(msg.Data, &req); err != nil {
			h.sendError(client, err)
			return
		}
		at := core.C(req.X, req.Y)
		if !r.board.InBounds(at) {
			h.sendError(client, fmt.Errorf("%s is off the board", at))
			return
		}
		if !r.board.Rotate(at, req.Clockwise) {
			h.sendError(client, fmt.Errorf("nothing to rotate at %s", at))
			return
		}
		h.broadcastLocked(client.boardID, EventStatusBoard, r.snapshot())

	case EventReset:
		r.board = r.initial.Clone()
		h.broadcastLocked(client.boardID, EventStatusBoard, r.snapshot())

	case EventSave:
		var req SaveRequest
		if err := decodeData(msg.Data, &req); err != nil {
			h.sendError(client, err)
			return
		}
		path, err := h.saveBoard(r, req)
		if err != nil {
			h.sendError(client, err)
			return
		}
		h.logger.Info("board saved", "room", client.boardID, "id", req.ID, "path", path)
		h.sendTo(client, EventSaved, SavedData{ID: req.ID, Path: path})

	default:
		h.sendError(client, fmt.Errorf("unknown event %q", msg.Event))
	}
}

// saveBoard writes the live board of r as a YAML board file named after
// req.ID. A file with the same id replaces the previous one.
func (h *Hub) saveBoard(r *room, req SaveRequest) (string, error) {
	if h.saveDir == "" {
		return "", errors.New("saving is disabled: no boards directory configured")
	}
	if !boardIDPattern.MatchString(req.ID) {
		return "", fmt.Errorf("invalid board id %q", req.ID)
	}
	name := req.Name
	if name == "" {
		name = req.ID
	}

	data, err := levels.Encode(levels.FromBoard(req.ID, name, r.board))
	if err != nil {
		return "", fmt.Errorf("encoding board: %w", err)
	}
	if err := os.MkdirAll(h.saveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating boards directory: %w", err)
	}
	path := filepath.Join(h.saveDir, req.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing board: %w", err)
	}
	return path, nil
}

func (h *Hub) saveShot(boardID string, b *core.Board, path core.BeamPath) {
	if h.store == nil {
		return
	}
	if _, err := h.store.SaveShot(khet.ShotFromPath(boardID, b, path)); err != nil {
		h.logger.Warn("could not save shot", "board", boardID, "error", err)
	}
}

// broadcastLocked encodes and delivers an event to a room. Callers hold
// the write lock.
func (h *Hub) broadcastLocked(boardID, event string, data any) {
	payload, err := encode(event, boardID, data)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	h.deliver(boardID, payload)
}

// deliver queues data on every client of a room, dropping clients whose
// buffer is full. Callers hold the write lock.
func (h *Hub) deliver(boardID string, data []byte) {
	r, ok := h.rooms[boardID]
	if !ok {
		return
	}
	for client := range r.clients {
		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) sendTo(client *Client, event string, data any) {
	payload, err := encode(event, client.boardID, data)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	select {
	case client.send <- payload:
	default:
		h.unregisterClient(client)
	}
}

func (h *Hub) sendError(client *Client, err error) {
	h.sendTo(client, EventError, ErrorData{Message: err.Error()})
}

// closeAll disconnects every client. Called once when Run exits.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.rooms {
		for client := range r.clients {
			delete(r.clients, client)
			close(client.send)
		}
	}
}

func (r *room) snapshot() BoardSnapshot {
	name := r.level.Name
	if name == "" {
		name = r.level.ID
	}
	guns := r.board.Guns()
	info := make([]GunInfo, len(guns))
	for i, g := range guns {
		info[i] = GunInfo{Index: i, Pos: g.Pos, Dir: g.Dir, Color: g.Color}
	}
	glyphs := make([][]string, r.board.H)
	for y := range glyphs {
		glyphs[y] = make([]string, r.board.W)
	}
	for _, cell := range r.board.Cells() {
		glyphs[cell.Coord.Y][cell.Coord.X] = core.PieceGlyph(cell.Piece)
	}
	return BoardSnapshot{
		ID:     r.level.ID,
		Name:   name,
		Width:  r.board.W,
		Height: r.board.H,
		Tokens: core.RenderTokens(r.board),
		Glyphs: glyphs,
		Guns:   info,
	}
}

func encode(event, boardID string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Event: event, Board: boardID, Data: raw})
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing data")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("bad data: %w", err)
	}
	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	pongWait := c.hub.pingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "board", c.boardID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = Message{Event: "invalid"}
		}

		select {
		case c.hub.inbound <- inbound{client: c, msg: msg}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
// Each event is written as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
