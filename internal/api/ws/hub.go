package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/id"
)

const (
	// historySize events are replayed to new subscribers, so a dashboard
	// opened mid-pairing still sees where pairing stands.
	historySize = 16
	sendBuffer  = 32
	writeWait   = 10 * time.Second
	pingPeriod  = 30 * time.Second
	pongWait    = pingPeriod + 10*time.Second
)

// upgrader keeps the library's same-origin check, so other sites cannot
// subscribe through a visitor's browser.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is the wire frame sent to subscribers.
type Message struct {
	Type  string     `json:"type"`
	Event chat.Event `json:"event"`
}

type subscriber struct {
	id   id.SubscriberID
	send chan Message
}

// Hub fans lifecycle events out to websocket subscribers. Slow subscribers
// are disconnected rather than allowed to hold up the bridge.
type Hub struct {
	log     *zap.Logger
	metrics *monitoring.Metrics

	mu      sync.Mutex
	subs    map[id.SubscriberID]*subscriber
	history []chat.Event
	closed  bool
}

// NewHub creates a hub.
func NewHub(log *zap.Logger, metrics *monitoring.Metrics) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:     log,
		metrics: metrics,
		subs:    make(map[id.SubscriberID]*subscriber),
	}
}

// Publish delivers e to every subscriber without blocking.
func (h *Hub) Publish(e chat.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.history = append(h.history, e)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}

	msg := Message{Type: "lifecycle", Event: e}
	for sid, sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			h.log.Warn("Dropping slow event subscriber", zap.String("subscriber", sid.String()))
			h.removeLocked(sid)
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sid := range h.subs {
		h.removeLocked(sid)
	}
}

func (h *Hub) subscribe() (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	sub := &subscriber{
		id:   id.NewSubscriberID(),
		send: make(chan Message, sendBuffer+historySize),
	}
	for _, e := range h.history {
		sub.send <- Message{Type: "replay", Event: e}
	}
	h.subs[sub.id] = sub
	h.metrics.IncWSConnections()
	return sub, true
}

func (h *Hub) remove(sid id.SubscriberID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sid)
}

func (h *Hub) removeLocked(sid id.SubscriberID) {
	sub, ok := h.subs[sid]
	if !ok {
		return
	}
	delete(h.subs, sid)
	close(sub.send)
	h.metrics.DecWSConnections()
}

// HandleConnection upgrades the request and streams events until the
// client goes away or the hub closes.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub, ok := h.subscribe()
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		return
	}
	log := h.log.With(zap.String("subscriber", sub.id.String()))
	log.Debug("Event subscriber connected")
	defer log.Debug("Event subscriber disconnected")

	// The stream is one-way; reading only services pongs and close frames.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer h.remove(sub.id)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			data, err := sonic.Marshal(msg)
			if err != nil {
				h.log.Warn("Failed to encode event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
