package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

// fakeTransport resolves immediately with a canned result or open error.
type fakeTransport struct {
	kind    TransportKind
	result  LoginResult
	openErr error
	opened  bool
}

func (f *fakeTransport) Kind() TransportKind { return f.kind }

func (f *fakeTransport) Open(_ context.Context, _ string, _ *Session) (LoginResult, error) {
	f.opened = true
	if f.openErr != nil {
		return LoginResult{}, f.openErr
	}
	return f.result, nil
}

type fakeProfiles struct {
	profile Profile
	err     error
}

func (f *fakeProfiles) FetchProfile(context.Context) (Profile, error) {
	return f.profile, f.err
}

func exchangeEndpoint(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != config.TokenPath {
			http.NotFound(w, r)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "exchanged-access",
			"refresh_token": "exchanged-refresh",
			"expires_in":    3600,
			"token_type":    "Bearer",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFlow(t *testing.T, serverURL string, profiles ProfileFetcher, transports ...Transport) (*FlowController, *Manager, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	cfg := config.New(serverURL)
	tokens := NewManager(cfg, store, nil)
	return NewFlowController(cfg, tokens, store, profiles, nil, transports...), tokens, store
}

func TestAuthURL(t *testing.T) {
	flow, _, _ := newTestFlow(t, "https://cloud.example.com", nil)

	u := flow.AuthURL("nonce-1")
	assert.Contains(t, u, "https://cloud.example.com/apps/oauth2/authorize?")
	assert.Contains(t, u, "client_id="+config.DefaultClientID)
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "state=nonce-1")
	assert.Contains(t, u, "scope=openid+profile+email")
}

func TestLoginFallsBackWhenDialogCannotOpen(t *testing.T) {
	srv := exchangeEndpoint(t, http.StatusOK)

	dialog := &fakeTransport{kind: TransportDialog, openErr: ErrTransportUnavailable}
	external := &fakeTransport{kind: TransportExternal, result: LoginResult{Status: StatusAuthenticated}}
	flow, _, _ := newTestFlow(t, srv.URL, nil, dialog, external)

	res, err := flow.Login(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.True(t, dialog.opened)
	assert.True(t, external.opened, "fallback transport must be tried")
}

func TestLoginCancelledIsNotAFallback(t *testing.T) {
	dialog := &fakeTransport{kind: TransportDialog, result: LoginResult{Status: StatusCancelled, Err: ErrLoginCancelled}}
	external := &fakeTransport{kind: TransportExternal}
	flow, _, _ := newTestFlow(t, "https://cloud.example.com", nil, dialog, external)

	res, err := flow.Login(context.Background(), "https://cloud.example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.ErrorIs(t, res.Err, ErrLoginCancelled)
	assert.False(t, external.opened, "cancellation must not trigger fallback")
}

func TestLoginExchangesReturnedCode(t *testing.T) {
	srv := exchangeEndpoint(t, http.StatusOK)

	dialog := &fakeTransport{kind: TransportDialog, result: LoginResult{Status: StatusAuthenticated, Code: "code-1"}}
	flow, tokens, store := newTestFlow(t, srv.URL, nil, dialog)

	res, err := flow.Login(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.Empty(t, res.Code, "code must not leak past the exchange")

	ts, err := tokens.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "exchanged-access", ts.AccessToken)
	assert.Equal(t, "exchanged-refresh", ts.RefreshToken)
	assert.True(t, ts.Expiry.After(time.Now()))

	v, ok, err := store.Get(config.KeyServerURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, srv.URL, v)
}

func TestLoginPersistsProfile(t *testing.T) {
	srv := exchangeEndpoint(t, http.StatusOK)

	profiles := &fakeProfiles{profile: Profile{ID: "jane", DisplayName: "Jane", Email: "jane@example.com"}}
	dialog := &fakeTransport{kind: TransportDialog, result: LoginResult{Status: StatusAuthenticated, Code: "code-1"}}
	flow, tokens, _ := newTestFlow(t, srv.URL, profiles, dialog)

	_, err := flow.Login(context.Background(), srv.URL)
	require.NoError(t, err)

	p, ok, err := tokens.Profile()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jane", p.ID)
}

func TestProfileFailureKeepsTokens(t *testing.T) {
	srv := exchangeEndpoint(t, http.StatusOK)

	profiles := &fakeProfiles{err: errors.New("profile endpoint down")}
	flow, tokens, _ := newTestFlow(t, srv.URL, profiles)

	err := flow.ExchangeCode(context.Background(), "code-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile fetch failed")

	// the user is authenticated even if profile display degrades
	ts, loadErr := tokens.LoadTokens()
	require.NoError(t, loadErr)
	assert.Equal(t, "exchanged-access", ts.AccessToken)
}

func TestExchangeRejected(t *testing.T) {
	srv := exchangeEndpoint(t, http.StatusBadRequest)
	flow, _, _ := newTestFlow(t, srv.URL, nil)

	err := flow.ExchangeCode(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrExchangeFailed)
}

func TestHandleCallback(t *testing.T) {
	srv := exchangeEndpoint(t, http.StatusOK)

	t.Run("no login in flight", func(t *testing.T) {
		flow, _, _ := newTestFlow(t, srv.URL, nil)
		err := flow.HandleCallback(context.Background(), "any", "code-1")
		assert.ErrorIs(t, err, ErrNoLoginInFlight)
	})

	t.Run("state mismatch rejected before exchange", func(t *testing.T) {
		rejected := exchangeEndpoint(t, http.StatusOK)
		blocking := &callbackProbeTransport{ready: make(chan struct{}), release: make(chan struct{})}
		flow, tokens, _ := newTestFlow(t, rejected.URL, nil, blocking)

		go func() { _, _ = flow.Login(context.Background(), rejected.URL) }()
		<-blocking.ready

		err := flow.HandleCallback(context.Background(), "wrong-state", "code-1")
		assert.ErrorIs(t, err, ErrStateMismatch)

		ts, loadErr := tokens.LoadTokens()
		require.NoError(t, loadErr)
		assert.True(t, ts.IsZero(), "mismatched state must not reach the exchange")

		close(blocking.release)
	})

	t.Run("matching state exchanges", func(t *testing.T) {
		blocking := &callbackProbeTransport{ready: make(chan struct{}), release: make(chan struct{})}
		flow, tokens, _ := newTestFlow(t, srv.URL, nil, blocking)

		go func() { _, _ = flow.Login(context.Background(), srv.URL) }()
		<-blocking.ready

		session, ok := flow.Session()
		require.True(t, ok)

		err := flow.HandleCallback(context.Background(), session.State, "code-1")
		require.NoError(t, err)

		ts, loadErr := tokens.LoadTokens()
		require.NoError(t, loadErr)
		assert.Equal(t, "exchanged-access", ts.AccessToken)

		close(blocking.release)
	})
}

// callbackProbeTransport keeps a login attempt open so callbacks can be
// exercised against its session.
type callbackProbeTransport struct {
	ready   chan struct{}
	release chan struct{}
}

func (c *callbackProbeTransport) Kind() TransportKind { return TransportExternal }

func (c *callbackProbeTransport) Open(ctx context.Context, _ string, _ *Session) (LoginResult, error) {
	close(c.ready)
	select {
	case <-c.release:
	case <-ctx.Done():
	}
	return LoginResult{Status: StatusAuthenticated}, nil
}

func TestGenerateState(t *testing.T) {
	s1, err := GenerateState()
	require.NoError(t, err)
	s2, err := GenerateState()
	require.NoError(t, err)

	assert.Len(t, s1, 43) // 32 bytes base64url without padding
	assert.NotEqual(t, s1, s2)
}
