// Package ws streams per-viewer game action responses to websocket
// observers.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gorilla/websocket"

	"skirmish/internal/domain/board"
)

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// ErrSlowObserver means at least one connection had no room for a payload
// and was dropped.
var ErrSlowObserver = errors.New("observer send buffer full")

type subscriber struct {
	gameID string
	viewer board.PlayerID
	send   chan []byte
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub implements ports.ObserverHub. One connection watches one game as one
// viewer; viewer 0 is a spectator.
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: map[string]map[*subscriber]struct{}{},
	}
}

func (h *Hub) Viewers(gameID string) []board.PlayerID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []board.PlayerID
	for s := range h.subs[gameID] {
		if !slices.Contains(out, s.viewer) {
			out = append(out, s.viewer)
		}
	}
	slices.Sort(out)
	return out
}

func (h *Hub) Publish(_ context.Context, gameID string, viewer board.PlayerID, payload []byte) error {
	h.mu.RLock()
	var slow []*subscriber
	for s := range h.subs[gameID] {
		if s.viewer != viewer {
			continue
		}
		select {
		case s.send <- payload:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.remove(s)
	}
	if len(slow) > 0 {
		return fmt.Errorf("%w: game=%s viewer=%d dropped=%d", ErrSlowObserver, gameID, viewer, len(slow))
	}
	return nil
}

// ServeHTTP upgrades /v1/observe?game=<id>&viewer=<player> and streams
// until either side closes.
func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(rw, "missing game", http.StatusBadRequest)
		return
	}
	viewer := board.Neutral
	if raw := r.URL.Query().Get("viewer"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 {
			http.Error(rw, "invalid viewer", http.StatusBadRequest)
			return
		}
		viewer = board.PlayerID(id)
	}

	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := &subscriber{gameID: gameID, viewer: viewer, send: make(chan []byte, sendBuffer)}
	h.add(sub)
	defer h.remove(sub)
	hlog.Debugf("ws: observer joined game=%s viewer=%d", gameID, viewer)

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- writeLoop(conn, sub.send)
	}()

	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(sub)
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	hlog.Debugf("ws: observer left game=%s viewer=%d", gameID, viewer)
}

func writeLoop(conn *websocket.Conn, send <-chan []byte) error {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case b, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return err
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.gameID]
	if !ok {
		set = map[*subscriber]struct{}{}
		h.subs[s.gameID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.gameID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.gameID)
		}
	}
	s.close()
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		for s := range set {
			s.close()
		}
		delete(h.subs, id)
	}
}
