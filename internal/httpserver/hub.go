package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/campuskeep/lostfound/internal/domain"
)

const clientSendBuffer = 16

// Hub streams match lifecycle events to connected websocket clients. It
// subscribes to the matcher's observer registry like any other observer; a
// slow or stuck client is dropped rather than blocking publishes.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan matchEventMessage
}

type matchEventMessage struct {
	Event          string  `json:"event"`
	MatchID        int64   `json:"matchId"`
	LostPostingID  int64   `json:"lostPostingId"`
	FoundPostingID int64   `json:"foundPostingId"`
	Score          float64 `json:"score"`
	Status         string  `json:"status"`
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket and streams events until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &hubClient{
		conn: conn,
		send: make(chan matchEventMessage, clientSendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("websocket client connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(client)
	h.readLoop(client)
}

// readLoop consumes (and discards) client messages so pings and close frames
// are processed; it returns when the connection dies.
func (h *Hub) readLoop(client *hubClient) {
	defer h.drop(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(client *hubClient) {
	for msg := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.conn.WriteJSON(msg); err != nil {
			h.drop(client)
			return
		}
	}
}

func (h *Hub) drop(client *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	if ok {
		client.conn.Close()
	}
}

func (h *Hub) broadcast(event string, m *domain.Match) {
	msg := matchEventMessage{
		Event:          event,
		MatchID:        m.ID,
		LostPostingID:  m.LostPostingID,
		FoundPostingID: m.FoundPostingID,
		Score:          m.MatchWeight,
		Status:         string(m.Status),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Client not keeping up; skip this event for it.
			h.logger.Warn("websocket client lagging, dropping event", "event", event)
		}
	}
}

// OnMatchFound implements domain.MatchObserver.
func (h *Hub) OnMatchFound(_ context.Context, m *domain.Match) error {
	h.broadcast("match.found", m)
	return nil
}

// OnMatchUpdated implements domain.MatchObserver.
func (h *Hub) OnMatchUpdated(_ context.Context, m *domain.Match) error {
	h.broadcast("match.updated", m)
	return nil
}

// OnMatchCancelled implements domain.MatchObserver.
func (h *Hub) OnMatchCancelled(_ context.Context, m *domain.Match) error {
	h.broadcast("match.cancelled", m)
	return nil
}
