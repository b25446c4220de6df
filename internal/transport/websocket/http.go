package websocket

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/matryer/way"
)

// BoardInfo is one entry of the board listing.
type BoardInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Builtin bool   `json:"builtin"`
}

// Handler returns the HTTP routes served alongside the websocket:
//
//	GET  /boards               list boards
//	GET  /boards/:id           board snapshot
//	POST /boards/:id/fire/:gun fire a laser and return its path
//	GET  /ws/:id               websocket for a board room
func (h *Hub) Handler() http.Handler {
	router := way.NewRouter()
	router.HandleFunc(http.MethodGet, "/boards", h.handleBoards)
	router.HandleFunc(http.MethodGet, "/boards/:id", h.handleBoard)
	router.HandleFunc(http.MethodPost, "/boards/:id/fire/:gun", h.handleFire)
	router.HandleFunc(http.MethodGet, "/ws/:id", func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, way.Param(r.Context(), "id"))
	})
	return h.logRequests(router)
}

func (h *Hub) handleBoards(w http.ResponseWriter, r *http.Request) {
	lvls, err := h.loader.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	boards := make([]BoardInfo, len(lvls))
	for i, l := range lvls {
		boards[i] = BoardInfo{ID: l.ID, Name: l.Name, Width: l.Width, Height: l.Height, Builtin: l.Builtin()}
	}
	writeJSON(w, http.StatusOK, boards)
}

func (h *Hub) handleBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Snapshot(way.Param(r.Context(), "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Hub) handleFire(w http.ResponseWriter, r *http.Request) {
	id := way.Param(r.Context(), "id")
	gun, err := strconv.Atoi(way.Param(r.Context(), "gun"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("gun must be an integer"))
		return
	}
	if _, err := h.Snapshot(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	path, err := h.Fire(r.Context(), id, gun)
	switch {
	case errors.Is(err, ErrHubStopped):
		writeError(w, http.StatusServiceUnavailable, err)
	case err != nil && path.Len() == 0:
		writeError(w, http.StatusBadRequest, err)
	default:
		writeJSON(w, http.StatusOK, path)
	}
}

// logRequests logs each request with its status and duration.
func (h *Hub) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to the websocket upgrader.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Client may have gone away
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorData{Message: err.Error()})
}
