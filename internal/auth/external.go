package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

// Window is an external login window. Closed is polled since no message
// channel exists across the browser boundary.
type Window interface {
	Closed() bool
}

// WindowOpener opens the authorization URL in an external browser context.
// A failed Open means the popup was blocked.
type WindowOpener interface {
	Open(url string) (Window, error)
}

// ExternalTransport is the fallback login transport for hosts that cannot
// render the native dialog. It opens the authorization URL in an external
// window and polls for the window's closed state.
//
// Success is inferred from a usable token appearing in storage by the time
// the window closes: the redirect target completes the exchange and writes
// the token before closing. This is a best-effort heuristic with no verified
// linkage to the specific login attempt, a known limitation of the external
// path.
type ExternalTransport struct {
	opener  WindowOpener
	tokens  *Manager
	logger  logging.Logger
	poll    time.Duration
	timeout time.Duration
}

// NewExternalTransport returns an external-window transport. The timeout
// bounds attempts where the user abandons the window without closing it.
func NewExternalTransport(opener WindowOpener, tokens *Manager, logger logging.Logger) *ExternalTransport {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &ExternalTransport{
		opener:  opener,
		tokens:  tokens,
		logger:  logger,
		poll:    config.LoginPollInterval,
		timeout: config.DefaultLoginTimeout,
	}
}

// Kind implements Transport.
func (t *ExternalTransport) Kind() TransportKind { return TransportExternal }

// Open implements Transport.
func (t *ExternalTransport) Open(ctx context.Context, authURL string, _ *Session) (LoginResult, error) {
	win, err := t.opener.Open(authURL)
	if err != nil {
		return LoginResult{
			Status: StatusFailed,
			Err:    fmt.Errorf("%w: %w", ErrPopupBlocked, err),
		}, nil
	}

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()
	deadline := time.NewTimer(t.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return LoginResult{Status: StatusFailed, Err: ctx.Err()}, nil

		case <-deadline.C:
			t.logger.Info("login window timed out",
				logging.KeyTransport, string(TransportExternal))
			return LoginResult{Status: StatusFailed, Err: ErrLoginIncomplete}, nil

		case <-ticker.C:
			if !win.Closed() {
				continue
			}
			if _, ok := t.tokens.CurrentAccessToken(); ok {
				return LoginResult{Status: StatusAuthenticated}, nil
			}
			return LoginResult{Status: StatusFailed, Err: ErrLoginIncomplete}, nil
		}
	}
}
