package auth_tools

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/server"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	cfg := config.New("https://cloud.example.com")
	sc, err := server.NewServerContextWithStore(context.Background(), cfg, storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterAuthTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	sc := newTestServerContext(t)

	err := RegisterAuthTools(s, sc)
	require.NoError(t, err)
}
