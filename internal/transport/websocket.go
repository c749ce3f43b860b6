package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketServer answers requests arriving as text frames. Replies are
// written in request order on the same connection.
type WebSocketServer struct {
	addr     string
	path     string
	server   RequestHandler
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewWebSocketServer(addr, path string, server RequestHandler) *WebSocketServer {
	return &WebSocketServer{
		addr:   addr,
		path:   path,
		server: server,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: map[*websocket.Conn]struct{}{},
	}
}

// Start serves HTTP on addr until ctx is done.
func (s *WebSocketServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.path, s)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "websocket listener started", "addr", s.addr, "path", s.path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("websocket listener: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	s.closeAll()

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}

func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.track(conn)
	defer s.untrack(conn)

	for {
		_, request, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.DebugContext(r.Context(), "websocket read ended", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		reply := s.server.HandleRequest(r.Context(), request)
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			slog.WarnContext(r.Context(), "websocket write failed", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

func (s *WebSocketServer) track(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *WebSocketServer) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *WebSocketServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

// WebSocket is the client side of WebSocketServer. Requests on one
// connection are sent one at a time.
type WebSocket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

var _ Handler = (*WebSocket)(nil)

// DialWebSocket connects to a ws:// or wss:// url.
func DialWebSocket(ctx context.Context, url string) (*WebSocket, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &WebSocket{conn: conn}, nil
}

func (w *WebSocket) Send(ctx context.Context, request []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := w.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	// Unblock the read if ctx is cancelled before the reply arrives.
	stop := context.AfterFunc(ctx, func() {
		_ = w.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := w.conn.WriteMessage(websocket.TextMessage, request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	_, reply, err := w.conn.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	return reply, nil
}

func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return w.conn.Close()
}
