package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves the line protocol to telnet clients. Line endings are
// normalized so the session sees the same input as it does over raw TCP.
type TelnetListener struct {
	host string
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(host string, port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		host: host,
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	sessions := newTelnetSessions(l.cm.AcceptConnection)

	addr := net.JoinHostPort(l.host, fmt.Sprint(l.port))
	svr := telnet.NewServer(addr, sessions)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			// Release blocked sessions first so stopping the server does not
			// wait on them.
			sessions.cancel()
			svr.Stop()
			sessions.wg.Wait()
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "addr", addr)

	err := svr.ListenAndServe()
	if ctx.Err() != nil {
		// Stopping the server is the normal way out.
		return nil
	}
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use (another server running?)", addr)
		}
		return fmt.Errorf("serving telnet on %s: %w", addr, err)
	}

	return nil
}

// telnetSessions adapts the telnet server's callback to the connection
// manager and tracks live connections so shutdown can close them.
type telnetSessions struct {
	accept func(context.Context, io.ReadWriter)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTelnetSessions(accept func(context.Context, io.ReadWriter)) *telnetSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &telnetSessions{
		accept: accept,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (t *telnetSessions) HandleTelnet(conn *telnet.Connection) {
	t.wg.Add(1)
	defer t.wg.Done()

	closeConn := func() {
		if err := conn.Close(); err != nil {
			slog.Debug("closing telnet connection", "error", err)
		}
	}
	defer closeConn()

	stop := context.AfterFunc(t.ctx, closeConn)
	defer stop()

	slog.InfoContext(t.ctx, "telnet connection established")
	t.accept(t.ctx, newCRLFReadWriter(conn))
	slog.InfoContext(t.ctx, "telnet connection closed")
}
