package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

// TransportKind names a login transport.
type TransportKind string

const (
	TransportDialog   TransportKind = "dialog"
	TransportExternal TransportKind = "external"
)

// Session is the ephemeral state of one login attempt. Created when the
// attempt starts, dropped when it resolves.
type Session struct {
	State     string
	ServerURL string
	Transport TransportKind
}

// LoginStatus is the unified outcome of a login attempt.
type LoginStatus string

const (
	StatusAuthenticated LoginStatus = "authenticated"
	StatusCancelled     LoginStatus = "cancelled"
	StatusFailed        LoginStatus = "failed"
)

// LoginResult reports how a login attempt resolved. Code is set by
// transports that hand back an authorization code still to be exchanged.
type LoginResult struct {
	Status LoginStatus
	Code   string
	Err    error
}

// Transport is one way of putting the authorization page in front of the
// user. Open blocks until the attempt resolves. An ErrTransportUnavailable
// return means the transport could not open at all and the controller should
// fall back to the next one; it is distinct from a user cancellation.
type Transport interface {
	Kind() TransportKind
	Open(ctx context.Context, authURL string, session *Session) (LoginResult, error)
}

// ProfileFetcher retrieves the authenticated user's profile after login.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (Profile, error)
}

// FlowController drives the authorization-code flow: building the
// authorization URL, running a transport, checking the CSRF state on the
// redirect path, and exchanging the code for tokens.
type FlowController struct {
	cfg      *config.Config
	tokens   *Manager
	store    storage.Store
	profiles ProfileFetcher
	logger   logging.Logger

	transports []Transport

	mu      sync.Mutex
	session *Session
}

// NewFlowController wires a controller. Transports are tried in order;
// profiles may be nil when no profile fetch is wanted (tests).
func NewFlowController(cfg *config.Config, tokens *Manager, store storage.Store,
	profiles ProfileFetcher, logger logging.Logger, transports ...Transport) *FlowController {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &FlowController{
		cfg:        cfg,
		tokens:     tokens,
		store:      store,
		profiles:   profiles,
		logger:     logger,
		transports: transports,
	}
}

func (f *FlowController) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    f.cfg.ClientID,
		RedirectURL: f.cfg.RedirectURI,
		Scopes:      strings.Fields(f.cfg.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.cfg.AuthorizeURL(),
			TokenURL:  f.cfg.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthURL returns the authorization URL for the given state nonce.
func (f *FlowController) AuthURL(state string) string {
	return f.oauthConfig().AuthCodeURL(state)
}

// SetTransports replaces the transport list used by subsequent login
// attempts. Callers that bring their own redirect listener wire it up here
// after the listener is bound.
func (f *FlowController) SetTransports(transports ...Transport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transports = transports
}

// Session returns the in-flight login session, if any.
func (f *FlowController) Session() (Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return Session{}, false
	}
	return *f.session, true
}

// Login runs one login attempt against serverURL. The server URL is
// persisted first so the redirect target and later sessions can find it.
// The first transport that manages to open owns the attempt; a transport
// that cannot open at all is skipped silently in favor of the next.
func (f *FlowController) Login(ctx context.Context, serverURL string) (LoginResult, error) {
	f.cfg.ServerURL = serverURL
	f.cfg.Normalize()
	if err := f.cfg.Validate(); err != nil {
		return LoginResult{Status: StatusFailed, Err: err}, err
	}
	if err := f.store.Set(config.KeyServerURL, f.cfg.ServerURL); err != nil {
		return LoginResult{Status: StatusFailed, Err: err}, err
	}

	state, err := GenerateState()
	if err != nil {
		return LoginResult{Status: StatusFailed, Err: err}, err
	}

	session := &Session{State: state, ServerURL: f.cfg.ServerURL}
	f.mu.Lock()
	f.session = session
	transports := f.transports
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.session = nil
		f.mu.Unlock()
	}()

	authURL := f.AuthURL(state)

	for _, t := range transports {
		session.Transport = t.Kind()
		f.logger.Debug("opening login transport",
			logging.KeyTransport, string(t.Kind()),
			logging.KeyServer, logging.ServerHost(f.cfg.ServerURL))

		res, err := t.Open(ctx, authURL, session)
		if errors.Is(err, ErrTransportUnavailable) {
			f.logger.Info("login transport unavailable, falling back",
				logging.KeyTransport, string(t.Kind()))
			continue
		}
		if err != nil {
			return LoginResult{Status: StatusFailed, Err: err}, err
		}

		if res.Status == StatusAuthenticated && res.Code != "" {
			if err := f.ExchangeCode(ctx, res.Code); err != nil {
				return LoginResult{Status: StatusFailed, Err: err}, err
			}
			res.Code = ""
		}
		return res, nil
	}

	err = fmt.Errorf("%w: no transport could open", ErrLoginIncomplete)
	return LoginResult{Status: StatusFailed, Err: err}, err
}

// HandleCallback is the redirect-callback entry point. The state nonce must
// match the in-flight session or the callback is rejected as a potential
// CSRF attempt; the dialog message path does not pass through here since it
// is transport-secured by the host itself.
func (f *FlowController) HandleCallback(ctx context.Context, state, code string) error {
	f.mu.Lock()
	session := f.session
	f.mu.Unlock()

	if session == nil {
		return ErrNoLoginInFlight
	}
	if state == "" || state != session.State {
		f.logger.Warn("rejected callback with mismatched state",
			logging.KeyServer, logging.ServerHost(session.ServerURL))
		return ErrStateMismatch
	}
	return f.ExchangeCode(ctx, code)
}

// ExchangeCode exchanges an authorization code for tokens and persists them,
// then fetches and caches the user profile. A profile-fetch failure is
// returned but does not roll back the saved tokens: the user is
// authenticated even if profile display degrades.
func (f *FlowController) ExchangeCode(ctx context.Context, code string) error {
	tok, err := f.oauthConfig().Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: http %d", ErrExchangeFailed, retrieveErr.Response.StatusCode)
		}
		return fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	ts := TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if ts.Expiry.IsZero() {
		ts.Expiry = time.Now().Add(DefaultTokenLifetime)
	}
	if err := f.tokens.SaveTokens(ts); err != nil {
		return err
	}

	f.logger.Info("authenticated",
		logging.KeyServer, logging.ServerHost(f.cfg.ServerURL),
		"token", logging.SanitizeToken(ts.AccessToken))

	if f.profiles == nil {
		return nil
	}
	profile, err := f.profiles.FetchProfile(ctx)
	if err != nil {
		return fmt.Errorf("authenticated, but profile fetch failed: %w", err)
	}
	if err := f.tokens.SaveProfile(profile); err != nil {
		return fmt.Errorf("authenticated, but profile caching failed: %w", err)
	}
	return nil
}
