package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	sc, err := NewServerContextWithStore(context.Background(),
		config.New("https://cloud.example.com"), storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext(t *testing.T) {
	sc := newTestServerContext(t)

	assert.NotNil(t, sc.Config())
	assert.NotNil(t, sc.Store())
	assert.NotNil(t, sc.TokenManager())
	assert.NotNil(t, sc.FlowController())
	assert.NotNil(t, sc.NextcloudClient())
	assert.NotNil(t, sc.Sessions())
	assert.Nil(t, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())
}

func TestNewServerContextRequiresConfig(t *testing.T) {
	_, err := NewServerContextWithStore(context.Background(), nil, storage.NewMemoryStore(), nil)
	assert.Error(t, err)
}

func TestServerContextShutdown(t *testing.T) {
	sc := newTestServerContext(t)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	select {
	case <-sc.Context().Done():
	default:
		t.Fatal("context should be cancelled after shutdown")
	}

	// repeated shutdown is a no-op
	assert.NoError(t, sc.Shutdown())
}
