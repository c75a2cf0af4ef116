package talk_tools

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
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

func TestRegisterTalkTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	sc := newTestServerContext(t)

	require.NoError(t, RegisterTalkTools(s, sc, false))
}

func TestRegisterTalkToolsReadOnly(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	sc := newTestServerContext(t)

	require.NoError(t, RegisterTalkTools(s, sc, true))
}

func TestAttendeeViews(t *testing.T) {
	enriched := []attendee.Enriched{
		{
			Attendee: attendee.Attendee{Email: "alice@example.com", Name: "Alice", Type: "required"},
			Settings: attendee.SecuritySettings{
				AuthLevel:    attendee.AuthLoA3,
				PersonalID:   "19800101-1234",
				Notification: attendee.NotifyEmail,
			},
		},
		{
			Attendee: attendee.Attendee{Email: "bob@example.com", Type: "optional"},
			Settings: attendee.DefaultSettings(),
		},
	}

	views := attendeeViews(enriched)
	require.Len(t, views, 2)

	assert.True(t, views[0].PersonalIDEditable)
	assert.False(t, views[0].SMSNumberEditable)
	assert.Equal(t, "required", views[0].Type)

	assert.False(t, views[1].PersonalIDEditable)
	assert.False(t, views[1].SMSNumberEditable)
}

func TestResolveSessionCreatesWhenMissing(t *testing.T) {
	sc := newTestServerContext(t)

	id, session, errResult := resolveSession(sc, map[string]interface{}{}, true)
	require.Nil(t, errResult)
	require.NotNil(t, session)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, sc.Sessions().Len())

	// A second call with the returned id resolves the same session.
	id2, session2, errResult := resolveSession(sc, map[string]interface{}{"sessionId": id}, true)
	require.Nil(t, errResult)
	assert.Equal(t, id, id2)
	assert.Same(t, session, session2)
}

func TestResolveSessionRequiresIDWhenNotCreating(t *testing.T) {
	sc := newTestServerContext(t)

	_, _, errResult := resolveSession(sc, map[string]interface{}{}, false)
	require.NotNil(t, errResult)

	_, _, errResult = resolveSession(sc, map[string]interface{}{"sessionId": "nope"}, false)
	require.NotNil(t, errResult)
}
