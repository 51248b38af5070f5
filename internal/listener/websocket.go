package listener

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// WebsocketListener serves the line protocol over websockets. Each text
// message from the client is one request line and each response is sent as
// one text message.
type WebsocketListener struct {
	host     string
	port     uint16
	cm       *ConnectionManager
	upgrader websocket.Upgrader
	connCtx  context.Context
}

func NewWebsocketListener(host string, port uint16, cm *ConnectionManager) *WebsocketListener {
	return &WebsocketListener{
		host: host,
		port: port,
		cm:   cm,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		connCtx: context.Background(),
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	addr := net.JoinHostPort(l.host, fmt.Sprint(l.port))

	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()
	l.connCtx = connCtx

	srv := &http.Server{
		Addr:              addr,
		Handler:           l,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		cancelConns()
		srv.Close()
	}()

	slog.InfoContext(ctx, "listening for websocket", "addr", addr)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on %s: %w", addr, err)
	}
	return nil
}

func (l *WebsocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	// Hijacked connections are not closed by the http server.
	stop := context.AfterFunc(l.connCtx, func() { conn.Close() })
	defer stop()

	conn.SetReadLimit(maxMessageSize)

	slog.InfoContext(l.connCtx, "websocket connection established", "remote", r.RemoteAddr)
	l.cm.AcceptConnection(l.connCtx, &websocketReadWriter{conn: conn})
}

// websocketReadWriter adapts a message oriented websocket to a line
// oriented stream.
type websocketReadWriter struct {
	conn    *websocket.Conn
	pending []byte
}

func (w *websocketReadWriter) Read(p []byte) (int, error) {
	for len(w.pending) == 0 {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			data = append(data, '\n')
		}
		w.pending = data
	}

	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *websocketReadWriter) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.TextMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
