package nextcloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
)

type staticAuth struct {
	err error
}

func (a *staticAuth) AuthHeaders(context.Context) (http.Header, error) {
	if a.err != nil {
		return nil, a.err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer test-token")
	h.Set("OCS-APIRequest", "true")
	h.Set("Content-Type", "application/json")
	return h, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.New(srv.URL), &staticAuth{}, nil)
}

func TestCreateRoom(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, config.TalkRoomPath, r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "true", r.Header.Get("OCS-APIRequest"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Weekly Sync", body["roomName"])
			assert.Equal(t, float64(3), body["roomType"])

			_, _ = io.WriteString(w, `{"ocs":{"data":{"token":"abc123","name":"Weekly Sync","id":42}}}`)
		})

		room, err := c.CreateRoom(context.Background(), "Weekly Sync", 3)
		require.NoError(t, err)
		assert.Equal(t, "abc123", room.Token)
		assert.Equal(t, "Weekly Sync", room.Name)
		assert.Equal(t, int64(42), room.RoomID)
		assert.Equal(t, c.cfg.ServerURL+"/call/abc123", room.URL)
	})

	t.Run("display name fallback", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"ocs":{"data":{"token":"abc123","displayName":"Weekly Sync","id":42}}}`)
		})

		room, err := c.CreateRoom(context.Background(), "Weekly Sync", 0)
		require.NoError(t, err)
		assert.Equal(t, "Weekly Sync", room.Name)
	})

	t.Run("server rejection", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		})

		_, err := c.CreateRoom(context.Background(), "Weekly Sync", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http 403")
	})

	t.Run("auth failure propagates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request may be sent without headers")
		}))
		t.Cleanup(srv.Close)

		authErr := errors.New("authentication required")
		c := NewClient(config.New(srv.URL), &staticAuth{err: authErr}, nil)

		_, err := c.CreateRoom(context.Background(), "Weekly Sync", 3)
		assert.ErrorIs(t, err, authErr)
	})
}

func TestPutEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/remote.php/dav/calendars/jane/personal/ev-1.ics", r.URL.Path)
			assert.Equal(t, "text/calendar", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "BEGIN:VCALENDAR")

			w.WriteHeader(http.StatusCreated)
		})

		err := c.PutEvent(context.Background(), "jane", "personal", "ev-1", "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
		assert.NoError(t, err)
	})

	t.Run("missing username", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		err := c.PutEvent(context.Background(), "", "personal", "ev-1", "ics")
		assert.Error(t, err)
	})

	t.Run("server rejection", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "calendar not found", http.StatusNotFound)
		})

		err := c.PutEvent(context.Background(), "jane", "missing", "ev-1", "ics")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http 404")
	})
}

func TestFetchProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, config.UserProfilePath, r.URL.Path)
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			_, _ = io.WriteString(w, `{"ocs":{"data":{"id":"jane","displayname":"Jane Doe","email":"jane@example.com"}}}`)
		})

		p, err := c.FetchProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "jane", p.ID)
		assert.Equal(t, "Jane Doe", p.DisplayName)
		assert.Equal(t, "jane@example.com", p.Email)
	})

	t.Run("hyphenated display name key", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"ocs":{"data":{"id":"jane","display-name":"Jane Doe"}}}`)
		})

		p, err := c.FetchProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", p.DisplayName)
	})

	t.Run("rejection", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})

		_, err := c.FetchProfile(context.Background())
		assert.Error(t, err)
	})
}

func TestStatus(t *testing.T) {
	t.Run("installed server", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/status.php", r.URL.Path)
			// status.php is public: no Authorization header expected
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"installed":true,"version":"29.0.1.1","edition":""}`)
		})

		ok, err := c.TestConnection(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("maintenance server", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"installed":false}`)
		})

		ok, err := c.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unreachable", func(t *testing.T) {
		c := NewClient(config.New("http://127.0.0.1:1"), &staticAuth{}, nil)
		_, err := c.TestConnection(context.Background())
		assert.Error(t, err)
	})
}

func TestCapabilities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ocs":{"data":{"capabilities":{"spreed":{"features":["audio","video"]}}}}}`)
	})

	caps, err := c.Capabilities(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(caps), "spreed")
}
