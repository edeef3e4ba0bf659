package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/logging"
	"github.com/muurk/rokuctl/internal/remote"
)

const (
	// DefaultAddr is the listen address used by "rokuctl serve"
	DefaultAddr = ":8061"

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound messages queued per client before updates are dropped
	sendBuffer = 16

	shutdownTimeout = 5 * time.Second
)

// Remote is the part of remote.Controller the bridge drives
type Remote interface {
	Snapshot() remote.Snapshot
	OnChange(fn func(remote.Snapshot))
	Go(fn func())
	SetAddress(ctx context.Context, input string) bool
	DiscoverAndAdopt(ctx context.Context, timeout time.Duration) <-chan struct{}
	SendKey(ctx context.Context, key string) bool
	KeyDown(ctx context.Context, key string) bool
	KeyUp(ctx context.Context, key string) bool
	LaunchApp(ctx context.Context, displayName, fallbackID string) bool
	RefreshCatalog(ctx context.Context) bool
	TypeText(ctx context.Context, text string) int
	DeviceInfo(ctx context.Context) *ecp.DeviceInfo
}

// Config holds the bridge settings
type Config struct {
	// Addr is the TCP listen address (default ":8061")
	Addr string

	// DiscoverTimeout is used when a discover request names no timeout
	DiscoverTimeout time.Duration
}

// Request is a client operation
type Request struct {
	Op      string  `json:"op"`
	Key     string  `json:"key,omitempty"`
	Name    string  `json:"name,omitempty"`
	ID      string  `json:"id,omitempty"`
	Text    string  `json:"text,omitempty"`
	Address string  `json:"address,omitempty"`
	Timeout float64 `json:"timeout,omitempty"`
}

// Message is pushed to clients
type Message struct {
	Type  string           `json:"type"`
	State *remote.Snapshot `json:"state,omitempty"`
	Info  *ecp.DeviceInfo  `json:"info,omitempty"`
	Error string           `json:"error,omitempty"`
}

// Server serves the HTTP and WebSocket endpoints
type Server struct {
	remote   Remote
	config   Config
	upgrader websocket.Upgrader

	// ctx scopes operations started by clients
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	clients map[*client]struct{}

	httpServer *http.Server
}

type client struct {
	conn       *websocket.Conn
	send       chan Message
	remoteAddr string
}

// New creates a bridge for r and subscribes to its state changes
func New(r Remote, config Config) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.DiscoverTimeout <= 0 {
		config.DiscoverTimeout = 3 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		remote: r,
		config: config,
		upgrader: websocket.Upgrader{
			// LAN tool: the page may be served from anywhere
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*client]struct{}),
	}

	r.OnChange(func(snap remote.Snapshot) {
		s.broadcast(Message{Type: "state", State: &snap})
	})
	return s
}

// Handler returns the HTTP handler for all endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Start listens on the configured address and blocks until ctx is done or
// SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is like Start but uses an existing listener
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Bridge listening", zap.String("addr", listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping bridge...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting connections, closes WebSocket clients and
// cancels operations they started.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for c := range s.clients {
		logging.Info("Closing active connection", zap.String("remote_addr", c.remoteAddr))
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down bridge: %w", err)
	}
	return nil
}

// ActiveConnections returns the number of connected WebSocket clients
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.remote.Snapshot()); err != nil {
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &client{
		conn:       conn,
		send:       make(chan Message, sendBuffer),
		remoteAddr: r.RemoteAddr,
	}
	// The buffer is empty until register, so the initial state never blocks
	// and always precedes broadcasts.
	snap := s.remote.Snapshot()
	c.send <- Message{Type: "state", State: &snap}

	s.register(c)
	logging.Info("WebSocket client connected", zap.String("remote_addr", c.remoteAddr))

	go s.writePump(c)
	s.readPump(c)
}

// readPump decodes requests until the connection closes
func (s *Server) readPump(c *client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
		logging.Info("WebSocket client disconnected", zap.String("remote_addr", c.remoteAddr))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.enqueue(c, Message{Type: "error", Error: "invalid request: " + err.Error()})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("WebSocket read error", zap.String("remote_addr", c.remoteAddr), zap.Error(err))
			}
			return
		}

		if err := s.dispatch(c, req); err != nil {
			s.enqueue(c, Message{Type: "error", Error: err.Error()})
		}
	}
}

// writePump is the only writer on the connection
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logging.Debug("WebSocket write failed", zap.String("remote_addr", c.remoteAddr), zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch starts the requested operation on its own goroutine
func (s *Server) dispatch(c *client, req Request) error {
	ctx := s.ctx
	logging.Debug("Bridge request", zap.String("remote_addr", c.remoteAddr), zap.String("op", req.Op))

	switch req.Op {
	case "key", "keydown", "keyup":
		if req.Key == "" {
			return fmt.Errorf("%s: missing key", req.Op)
		}
		send := map[string]func(context.Context, string) bool{
			"key":     s.remote.SendKey,
			"keydown": s.remote.KeyDown,
			"keyup":   s.remote.KeyUp,
		}[req.Op]
		s.remote.Go(func() { send(ctx, req.Key) })

	case "launch":
		if req.Name == "" && req.ID == "" {
			return fmt.Errorf("launch: missing name or id")
		}
		s.remote.Go(func() { s.remote.LaunchApp(ctx, req.Name, req.ID) })

	case "type":
		s.remote.Go(func() { s.remote.TypeText(ctx, req.Text) })

	case "refresh":
		s.remote.Go(func() { s.remote.RefreshCatalog(ctx) })

	case "discover":
		timeout := s.config.DiscoverTimeout
		if req.Timeout > 0 {
			timeout = time.Duration(req.Timeout * float64(time.Second))
		}
		s.remote.DiscoverAndAdopt(ctx, timeout)

	case "address":
		s.remote.Go(func() { s.remote.SetAddress(ctx, req.Address) })

	case "info":
		s.remote.Go(func() {
			if info := s.remote.DeviceInfo(ctx); info != nil {
				s.enqueue(c, Message{Type: "info", Info: info})
			}
		})

	default:
		return fmt.Errorf("unknown op %q", req.Op)
	}
	return nil
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.enqueueLocked(c, msg)
	}
}

func (s *Server) enqueue(c *client, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		s.enqueueLocked(c, msg)
	}
}

func (s *Server) enqueueLocked(c *client, msg Message) {
	select {
	case c.send <- msg:
	default:
		logging.Warn("Dropping update for slow client", zap.String("remote_addr", c.remoteAddr), zap.String("type", msg.Type))
	}
}
