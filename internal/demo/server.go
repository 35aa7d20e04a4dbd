package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 50 * time.Second
	sendBufferSize = 16
)

// Config configures the demo server.
type Config struct {
	// Addr is the listen address, e.g. ":8090".
	Addr string

	// Label is the initial counter label.
	Label string

	// CheckOrigin overrides the WebSocket origin check. Nil means
	// same-origin only.
	CheckOrigin func(r *http.Request) bool

	// Registerer receives the demo metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Server hosts the demo over HTTP: the page, the WebSocket endpoint,
// and the metrics endpoint.
type Server struct {
	cfg      Config
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
	http     *http.Server
}

// NewServer builds the server and its hub. Call Run to start serving.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.Label == "" {
		cfg.Label = "shared counter"
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}

	s := &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.Label, cfg.Registerer),
		logger: slog.Default().With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	return s
}

// Handler returns the HTTP routes. Exposed separately so tests can
// drive the server through httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// Run starts the hub and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.hub.Run(hubCtx)

	s.http = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

// StartHub runs the hub without the HTTP listener, for tests that
// mount Handler on httptest.
func (s *Server) StartHub(ctx context.Context) {
	go s.hub.Run(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &client{send: make(chan []byte, sendBufferSize)}
	s.hub.register <- c

	go s.writePump(conn, c)
	go s.readPump(conn, c)
}

// readPump parses client commands and forwards them to the hub. It
// owns connection teardown.
func (s *Server) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		s.hub.unregister <- c
		conn.Close()
	}()

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.logger.Warn("bad command", "error", err)
			continue
		}
		if !s.hub.Submit(cmd) {
			s.logger.Warn("hub saturated, command dropped", "op", cmd.Op)
		}
	}
}

// writePump pushes hub snapshots and pings to the client.
func (s *Server) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>vstate demo</title></head>
<body>
  <h1 id="label">connecting…</h1>
  <p>count: <strong id="count">–</strong> (writes: <span id="writes">0</span>)</p>
  <button onclick="send('increment')">+1</button>
  <button onclick="send('decrement')">−1</button>
  <script>
    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
    ws.onmessage = (e) => {
      const view = JSON.parse(e.data);
      document.getElementById('label').textContent = view.label;
      document.getElementById('count').textContent = view.count;
      document.getElementById('writes').textContent = view.writes;
    };
    function send(op) { ws.send(JSON.stringify({op})); }
  </script>
</body>
</html>
`
