package services

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsSendBuffer = 16
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 25 * time.Second
)

// WSClient is one websocket subscriber. MealID 0 subscribes to every meal.
// Only the hub's write loop writes to Conn.
type WSClient struct {
	MealID uint
	Conn   *websocket.Conn

	send   chan []byte
	closed bool // guarded by RealtimeHub.mu
}

func NewWSClient(mealID uint, conn *websocket.Conn) *WSClient {
	return &WSClient{MealID: mealID, Conn: conn, send: make(chan []byte, wsSendBuffer)}
}

type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[uint]map[*WSClient]struct{})}
}

// Register subscribes c and starts its write loop.
func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.MealID] == nil {
		h.clients[c.MealID] = make(map[*WSClient]struct{})
	}
	h.clients[c.MealID][c] = struct{}{}
	h.mu.Unlock()
	go h.writeLoop(c)
}

// Unregister drops c; its write loop sends a close frame and closes the
// connection. Safe to call more than once.
func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if set := h.clients[c.MealID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.MealID)
		}
	}
	close(c.send)
}

// Subscribers returns how many clients would receive an event for mealID.
func (h *RealtimeHub) Subscribers(mealID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.clients[0])
	if mealID != 0 {
		n += len(h.clients[mealID])
	}
	return n
}

// Broadcast queues e for the meal's subscribers and the all-meals feed.
// It never blocks on a connection: a client whose queue is full is dropped.
func (h *RealtimeHub) Broadcast(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		slog.Error("marshal realtime event", "kind", e.Kind, "err", err)
		return
	}

	var slow []*WSClient
	deliver := func(set map[*WSClient]struct{}) {
		for c := range set {
			select {
			case c.send <- msg:
			default:
				slow = append(slow, c)
			}
		}
	}

	h.mu.RLock()
	deliver(h.clients[0])
	if e.MealID != 0 {
		deliver(h.clients[e.MealID])
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow websocket client", "mealId", c.MealID)
		h.Unregister(c)
	}
}

func (h *RealtimeHub) writeLoop(c *WSClient) {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		h.Unregister(c)
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
