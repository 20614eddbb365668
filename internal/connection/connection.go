// Package connection keeps a websocket connection to the pixel feed open and
// forwards inbound text frames to a handler.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	DefaultURL              = "ws://127.0.0.1:8008/socket"
	DefaultReconnectDelay   = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
)

var (
	// ErrClosed is returned by Connect after Close.
	ErrClosed = errors.New("connection manager closed")
	// ErrAlreadyConnected is returned by Connect while a connection is open
	// or a reconnect is pending.
	ErrAlreadyConnected = errors.New("connection manager already connected")
)

// Handler callbacks for connection transitions. All callbacks for one
// connection run on its read goroutine.
type Handler struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func(code int)
	OnError   func(err error)
}

// Config configures a Manager.
type Config struct {
	URL              string
	Reconnect        bool          // redial after an abnormal closure
	ReconnectDelay   time.Duration // wait before the single redial attempt
	HandshakeTimeout time.Duration
}

// Manager owns one websocket connection at a time and redials after abnormal
// closures.
type Manager struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger
	dialer  websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	conn     *websocket.Conn
	timer    *time.Timer
	closed   bool
	attempts int
}

// NewManager creates a connection manager. Nothing is dialed until Connect.
func NewManager(cfg Config, handler Handler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &Manager{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		dialer:  websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
	}
}

// Connect makes the first connection attempt. It returns ErrAlreadyConnected
// while a connection is open or a reconnect is pending. A failed dial is reported as an
// abnormal closure, so with reconnection enabled a retry is already scheduled
// when the error is returned.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.conn != nil || m.timer != nil {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	if m.ctx == nil {
		m.ctx, m.cancel = context.WithCancel(ctx)
	}
	m.mu.Unlock()

	return m.dial()
}

// Close stops any pending reconnection, closes the live connection with a
// normal closure and waits for its read goroutine to exit.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	var err error
	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = conn.Close()
	}
	m.wg.Wait()
	m.logger.Info("connection manager closed")
	return err
}

// Connected reports whether a connection is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Attempts returns the number of dials made so far.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// ReconnectPending reports whether a redial timer is armed.
func (m *Manager) ReconnectPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

func (m *Manager) dial() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.attempts++
	ctx := m.ctx
	m.mu.Unlock()

	logger := m.logger.With("attempt_id", uuid.NewString(), "url", m.cfg.URL)
	logger.Debug("dialing websocket")

	conn, _, err := m.dialer.DialContext(ctx, m.cfg.URL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("websocket dial: %w", ctx.Err())
		}
		err = fmt.Errorf("websocket dial: %w", err)
		m.reportError(logger, err)
		m.closedWith(logger, websocket.CloseAbnormalClosure)
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	m.conn = conn
	m.wg.Add(1)
	m.mu.Unlock()

	logger.Info("websocket connection opened")
	if m.handler.OnOpen != nil {
		m.handler.OnOpen()
	}

	go m.readLoop(conn, logger)
	return nil
}

func (m *Manager) readLoop(conn *websocket.Conn, logger *slog.Logger) {
	defer m.wg.Done()
	defer conn.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if m.isCurrent(conn) {
				m.handleReadError(conn, logger, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			logger.Debug("ignoring non-text frame", "type", msgType, "bytes", len(data))
			continue
		}
		if m.handler.OnMessage != nil {
			m.handler.OnMessage(data)
		}
	}
}

func (m *Manager) handleReadError(conn *websocket.Conn, logger *slog.Logger, err error) {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		m.reportError(logger, fmt.Errorf("websocket read: %w", err))
	}

	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()

	m.closedWith(logger, CloseCode(err))
}

func (m *Manager) reportError(logger *slog.Logger, err error) {
	logger.Warn("websocket error", "error", err)
	if m.handler.OnError != nil {
		m.handler.OnError(err)
	}
}

func (m *Manager) closedWith(logger *slog.Logger, code int) {
	logger.Info("websocket connection closed", "code", code)
	if m.handler.OnClose != nil {
		m.handler.OnClose(code)
	}
	if code == websocket.CloseNormalClosure || !m.cfg.Reconnect {
		return
	}
	m.scheduleReconnect(logger)
}

func (m *Manager) scheduleReconnect(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.timer != nil || m.conn != nil {
		return
	}
	logger.Info("scheduling reconnect", "delay", m.cfg.ReconnectDelay)
	m.timer = time.AfterFunc(m.cfg.ReconnectDelay, m.redial)
}

func (m *Manager) redial() {
	m.mu.Lock()
	m.timer = nil
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}
	// Errors are already logged and a further retry scheduled by dial.
	_ = m.dial()
}

func (m *Manager) isCurrent(conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && m.conn == conn
}

// CloseCode maps a read or dial error to a websocket close code. Errors that
// did not carry a close frame count as abnormal closure (1006).
func CloseCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return websocket.CloseAbnormalClosure
}
