package auth

import (
	"context"
	"fmt"

	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

// DismissalUserClosed is the host dismissal code meaning the user closed the
// login dialog. All other dismissal codes are ignored since the host may
// emit spurious ones.
const DismissalUserClosed = 12006

// DialogMessage is a message event delivered by the host dialog: either an
// error reported by the redirect page, or the authorization code.
type DialogMessage struct {
	Code  string
	Error string
}

// DialogEvents are the event channels of an open host dialog. The host
// closes both channels when the dialog is torn down.
type DialogEvents struct {
	Messages   <-chan DialogMessage
	Dismissals <-chan int
}

// DialogHost is the host-native modal dialog surface. OpenDialog returns an
// error when the dialog itself cannot open, which triggers fallback to the
// external-window transport.
type DialogHost interface {
	OpenDialog(ctx context.Context, url string) (*DialogEvents, error)
}

// DialogTransport drives a login through the host-native modal dialog. The
// dialog's message channel is the sole source of truth for the attempt once
// it opens.
type DialogTransport struct {
	host   DialogHost
	logger logging.Logger
}

// NewDialogTransport returns a dialog transport over host.
func NewDialogTransport(host DialogHost, logger logging.Logger) *DialogTransport {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &DialogTransport{host: host, logger: logger}
}

// Kind implements Transport.
func (t *DialogTransport) Kind() TransportKind { return TransportDialog }

// Open implements Transport. It blocks until the host delivers a code, an
// error, or a user-closed dismissal.
func (t *DialogTransport) Open(ctx context.Context, authURL string, _ *Session) (LoginResult, error) {
	events, err := t.host.OpenDialog(ctx, authURL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}

	for {
		select {
		case <-ctx.Done():
			return LoginResult{Status: StatusFailed, Err: ctx.Err()}, nil

		case msg, ok := <-events.Messages:
			if !ok {
				return LoginResult{Status: StatusFailed, Err: ErrLoginIncomplete}, nil
			}
			if msg.Error != "" {
				return LoginResult{
					Status: StatusFailed,
					Err:    fmt.Errorf("login dialog reported: %s", msg.Error),
				}, nil
			}
			if msg.Code != "" {
				return LoginResult{Status: StatusAuthenticated, Code: msg.Code}, nil
			}

		case code, ok := <-events.Dismissals:
			if !ok {
				return LoginResult{Status: StatusFailed, Err: ErrLoginIncomplete}, nil
			}
			if code == DismissalUserClosed {
				return LoginResult{Status: StatusCancelled, Err: ErrLoginCancelled}, nil
			}
			t.logger.Debug("ignoring dialog dismissal", "code", code)
		}
	}
}
