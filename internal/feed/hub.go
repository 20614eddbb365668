package feed

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeTimeout   = 5 * time.Second
	subscriberBuff = 2
)

// Hub fans encoded frames out to every connected websocket subscriber.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	subs    map[string]*subscriber
	closing chan struct{}
	closed  bool

	dropLog rate.Sometimes
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
}

// NewHub creates an empty hub. Any origin may subscribe: the feed is a local
// development tool.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		subs:    make(map[string]*subscriber),
		closing: make(chan struct{}),
		dropLog: rate.Sometimes{Interval: 5 * time.Second},
	}
}

// ServeHTTP upgrades the request and streams frames until the subscriber
// goes away or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	sub := &subscriber{
		id:   newID(),
		conn: conn,
		out:  make(chan []byte, subscriberBuff),
		done: make(chan struct{}),
	}
	if !h.add(sub) {
		closeConn(conn, websocket.CloseGoingAway)
		return
	}
	defer h.remove(sub.id)

	logger := h.logger.With("subscriber", sub.id, "remote", r.RemoteAddr)
	logger.Info("subscriber connected")

	go sub.readLoop()

	for {
		select {
		case data := <-sub.out:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Info("subscriber write failed", "error", err)
				return
			}
		case <-sub.done:
			logger.Info("subscriber disconnected")
			return
		case <-h.closing:
			closeConn(conn, websocket.CloseGoingAway)
			return
		}
	}
}

// Broadcast queues data for every subscriber. Subscribers whose queue is full
// miss this frame.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub.out <- data:
		default:
			h.dropLog.Do(func() {
				h.logger.Warn("slow subscriber, dropping frames", "subscriber", sub.id)
			})
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber with a going-away close frame and
// refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.closing)
}

func (h *Hub) add(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[sub.id] = sub
	return true
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// readLoop discards inbound frames; it exists to notice the peer closing.
func (s *subscriber) readLoop() {
	defer close(s.done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func closeConn(conn *websocket.Conn, code int) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""),
		time.Now().Add(time.Second),
	)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
