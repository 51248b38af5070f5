package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"syscall"
)

// TcpListener serves the line protocol over plain TCP.
type TcpListener struct {
	host string
	port uint16
	cm   *ConnectionManager
}

func NewTcpListener(host string, port uint16, cm *ConnectionManager) *TcpListener {
	return &TcpListener{
		host: host,
		port: port,
		cm:   cm,
	}
}

func (l *TcpListener) Start(ctx context.Context) error {
	addr := net.JoinHostPort(l.host, fmt.Sprint(l.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use (another server running?)", addr)
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	return l.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled. Each
// connection gets its own goroutine; there is no connection limit. Open
// connections are closed, not drained, on shutdown.
func (l *TcpListener) Serve(ctx context.Context, listener net.Listener) error {
	slog.InfoContext(ctx, "listening for tcp", "addr", listener.Addr().String())

	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accepting tcp connection: %w", err)
			}
			slog.ErrorContext(ctx, "accepting tcp connection", "error", err)
			continue
		}

		go l.handleConnection(connCtx, conn)
	}
}

func (l *TcpListener) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	// Unblock the session's read when the server shuts down.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	slog.InfoContext(ctx, "tcp connection established", "remote", conn.RemoteAddr().String())
	l.cm.AcceptConnection(ctx, conn)
	slog.InfoContext(ctx, "tcp connection closed", "remote", conn.RemoteAddr().String())
}
