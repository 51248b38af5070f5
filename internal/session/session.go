package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pixil98/go-tamo/internal/commands"
	"github.com/pixil98/go-tamo/internal/game"
)

var ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// Session serves one client connection. Each line read is answered with
// exactly one response line: the quoted status after a recognized command,
// or a quoted empty string otherwise.
type Session struct {
	id      string
	conn    io.ReadWriter
	habitat *game.Habitat
}

func NewSession(conn io.ReadWriter, h *game.Habitat) *Session {
	return &Session{
		id:      uuid.New().String(),
		conn:    conn,
		habitat: h,
	}
}

// Id returns the session's unique identifier.
func (s *Session) Id() string {
	return s.id
}

// Run serves the connection until the peer closes it (nil) or an I/O or
// persistence error occurs. There is no idle timeout.
func (s *Session) Run(ctx context.Context) error {
	r := bufio.NewReader(s.conn)
	w := bufio.NewWriter(s.conn)

	for {
		line, readErr := r.ReadString('\n')
		if len(line) == 0 {
			if readErr == nil || errors.Is(readErr, io.EOF) {
				slog.DebugContext(ctx, "connection closed by peer", "session", s.id)
				return nil
			}
			return fmt.Errorf("reading: %w", readErr)
		}
		if !utf8.ValidString(line) {
			return fmt.Errorf("reading: %w", ErrInvalidUTF8)
		}

		slog.DebugContext(ctx, "received", "session", s.id, "line", strings.TrimSpace(line))

		status, err := s.dispatch(ctx, line)
		if err != nil {
			return err
		}

		err = s.respond(w, status)
		if err != nil {
			return err
		}

		// A final line without a newline is still answered before closing.
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading: %w", readErr)
		}
	}
}

func (s *Session) dispatch(ctx context.Context, line string) (string, error) {
	cmd := commands.Parse(line)
	if cmd == commands.Unknown {
		return "", nil
	}

	status, err := s.habitat.Apply(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("applying %s: %w", cmd, err)
	}

	slog.InfoContext(ctx, "creature updated", "session", s.id, "command", cmd.String(), "status", status)
	return status, nil
}

func (s *Session) respond(w *bufio.Writer, status string) error {
	_, err := w.WriteString(strconv.Quote(status) + "\n")
	if err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	err = w.Flush()
	if err != nil {
		return fmt.Errorf("flushing response: %w", err)
	}
	return nil
}
