package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/haptics/internal/core/observability/log"
)

const (
	// HubPath is where the hub is mounted by Serve.
	HubPath = "/telemetry"

	clientQueue  = 256
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts samples to WebSocket clients. Slow clients lose samples
// rather than stall the broadcaster.
type Hub struct {
	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool

	logger log.Log
}

func NewHub(logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		clients: make(map[*hubClient]struct{}),
		logger:  logger.With(log.String("sink", "websocket")),
	}
}

// ServeHTTP upgrades the request and streams samples until the client goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, clientQueue)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("Telemetry client connected", log.String("remote_addr", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client frames and detects disconnects.
func (h *Hub) readLoop(c *hubClient) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("Telemetry write failed", log.Error(err))
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Info("Telemetry client disconnected", log.String("remote_addr", c.conn.RemoteAddr().String()))
	}
}

// Send queues msg for every connected client.
func (h *Hub) Send(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	out := append([]byte(nil), msg...)
	for c := range h.clients {
		select {
		case c.send <- out:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}

// Serve exposes the hub on addr until ctx ends.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(HubPath, h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("Telemetry hub listening", log.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "telemetry hub on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = h.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "telemetry hub shutdown")
	}
	return nil
}
