package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/pixil98/go-tamo/internal/game"
	"github.com/pixil98/go-tamo/internal/session"
)

// ConnectionManager starts a session for every accepted connection. All
// sessions share one habitat.
type ConnectionManager struct {
	habitat *game.Habitat
}

func NewConnectionManager(h *game.Habitat) *ConnectionManager {
	return &ConnectionManager{
		habitat: h,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	s := session.NewSession(conn, m.habitat)
	if err := s.Run(ctx); err != nil {
		slog.WarnContext(ctx, "client session", "session", s.Id(), "error", err)
	}
}
