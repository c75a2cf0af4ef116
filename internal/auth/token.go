package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

// DefaultTokenLifetime applies when the server omits expires_in.
const DefaultTokenLifetime = 3600 * time.Second

// TokenSet is the stored OAuth token material. A TokenSet without an access
// token is treated as absent.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// IsZero reports whether the TokenSet is absent.
func (t TokenSet) IsZero() bool {
	return t.AccessToken == ""
}

// Profile is the authenticated user's identity on the server, cached after
// login for display and for CalDAV paths.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// tokenResponse is the JSON body of the token endpoint for both grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Manager owns the token lifecycle: deciding whether a cached token is
// usable, refreshing it, and building authenticated request headers.
// TokenSets are exclusively owned by the Manager; the store only persists
// the serialized form.
type Manager struct {
	cfg    *config.Config
	store  storage.Store
	client *http.Client
	logger logging.Logger

	// Concurrent callers racing to refresh an expired token are coalesced
	// into one round trip.
	group singleflight.Group

	now func() time.Time
}

// NewManager returns a Manager persisting through store and talking to the
// token endpoint of cfg's server.
func NewManager(cfg *config.Config, store storage.Store, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
		now:    time.Now,
	}
}

// IsUsable reports whether ts exists and has not expired.
func (m *Manager) IsUsable(ts TokenSet) bool {
	return !ts.IsZero() && m.now().Before(ts.Expiry)
}

// CurrentAccessToken returns the stored access token only if it is usable.
func (m *Manager) CurrentAccessToken() (string, bool) {
	ts, err := m.LoadTokens()
	if err != nil || !m.IsUsable(ts) {
		return "", false
	}
	return ts.AccessToken, true
}

// AuthHeaders returns the headers for an authenticated API request. If no
// usable token exists it attempts exactly one refresh; if that fails the
// caller must re-authenticate. This single-refresh-then-fail policy bounds
// retries to one network round trip per request.
func (m *Manager) AuthHeaders(ctx context.Context) (http.Header, error) {
	token, ok := m.CurrentAccessToken()
	if !ok {
		ts, err := m.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationRequired, err)
		}
		token = ts.AccessToken
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("OCS-APIRequest", "true")
	h.Set("Content-Type", "application/json")
	return h, nil
}

// Refresh performs a refresh_token grant against the server. A rejected
// refresh purges all stored tokens: the session is unrecoverable and the
// user must log in from scratch. On success the new refresh token is kept if
// the server rotated it, otherwise the previous one is retained.
func (m *Manager) Refresh(ctx context.Context) (TokenSet, error) {
	v, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return TokenSet{}, err
	}
	return v.(TokenSet), nil
}

func (m *Manager) refresh(ctx context.Context) (TokenSet, error) {
	prev, err := m.LoadTokens()
	if err != nil {
		return TokenSet{}, err
	}
	if prev.RefreshToken == "" {
		return TokenSet{}, ErrNoRefreshToken
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {prev.RefreshToken},
		"client_id":     {m.cfg.ClientID},
	}

	resp, err := m.postForm(ctx, m.cfg.TokenURL(), form)
	if err != nil {
		return TokenSet{}, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Hard logout, not a retry.
		if purgeErr := m.PurgeTokens(); purgeErr != nil {
			m.logger.Warn("failed to purge tokens after rejected refresh",
				logging.KeyError, purgeErr.Error())
		}
		m.logger.Info("token refresh rejected, session terminated",
			logging.KeyStatus, fmt.Sprintf("http %d", resp.StatusCode))
		return TokenSet{}, fmt.Errorf("%w: http %d", ErrRefreshFailed, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tr); err != nil {
		return TokenSet{}, fmt.Errorf("invalid token response: %w", err)
	}

	ts := m.tokenSetFromResponse(tr, prev.RefreshToken)
	if err := m.SaveTokens(ts); err != nil {
		return TokenSet{}, err
	}

	m.logger.Debug("access token refreshed",
		"token", logging.SanitizeToken(ts.AccessToken),
		"expiry", ts.Expiry.Format(time.RFC3339))
	return ts, nil
}

// tokenSetFromResponse builds a TokenSet with an absolute expiry. Servers
// are not required to rotate refresh tokens, so an omitted refresh token
// retains the previous one.
func (m *Manager) tokenSetFromResponse(tr tokenResponse, prevRefresh string) TokenSet {
	lifetime := DefaultTokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = prevRefresh
	}
	return TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: refresh,
		Expiry:       m.now().Add(lifetime),
	}
}

func (m *Manager) postForm(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return m.client.Do(req)
}

// LoadTokens reads the persisted TokenSet. An absent or partially absent set
// comes back zero-valued, not as an error.
func (m *Manager) LoadTokens() (TokenSet, error) {
	access, _, err := m.store.Get(config.KeyAccessToken)
	if err != nil {
		return TokenSet{}, err
	}
	refresh, _, err := m.store.Get(config.KeyRefreshToken)
	if err != nil {
		return TokenSet{}, err
	}
	expiryRaw, ok, err := m.store.Get(config.KeyTokenExpiry)
	if err != nil {
		return TokenSet{}, err
	}

	ts := TokenSet{AccessToken: access, RefreshToken: refresh}
	if ok && expiryRaw != "" {
		expiry, err := time.Parse(time.RFC3339, expiryRaw)
		if err != nil {
			return TokenSet{}, fmt.Errorf("corrupt token expiry %q: %w", expiryRaw, err)
		}
		ts.Expiry = expiry
	}
	return ts, nil
}

// SaveTokens persists a TokenSet wholesale.
func (m *Manager) SaveTokens(ts TokenSet) error {
	if err := m.store.Set(config.KeyAccessToken, ts.AccessToken); err != nil {
		return err
	}
	if err := m.store.Set(config.KeyRefreshToken, ts.RefreshToken); err != nil {
		return err
	}
	return m.store.Set(config.KeyTokenExpiry, ts.Expiry.Format(time.RFC3339))
}

// PurgeTokens removes all token material, leaving the server URL and cached
// profile untouched.
func (m *Manager) PurgeTokens() error {
	for _, key := range []string{config.KeyAccessToken, config.KeyRefreshToken, config.KeyTokenExpiry} {
		if err := m.store.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// Logout removes tokens and the cached profile.
func (m *Manager) Logout() error {
	if err := m.PurgeTokens(); err != nil {
		return err
	}
	return m.store.Remove(config.KeyUserProfile)
}

// SaveProfile caches the authenticated user's profile.
func (m *Manager) SaveProfile(p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return m.store.Set(config.KeyUserProfile, string(raw))
}

// Profile returns the cached profile, if any.
func (m *Manager) Profile() (Profile, bool, error) {
	raw, ok, err := m.store.Get(config.KeyUserProfile)
	if err != nil || !ok || raw == "" {
		return Profile{}, false, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, false, fmt.Errorf("corrupt cached profile: %w", err)
	}
	return p, true, nil
}
