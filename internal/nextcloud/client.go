package nextcloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

// Authenticator supplies the headers for authenticated API requests. The
// auth.Manager satisfies this, including its single-refresh-then-fail
// policy.
type Authenticator interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
}

// Client talks to a Nextcloud server: Talk rooms, CalDAV calendars, the
// user profile, and the public status endpoint.
type Client struct {
	cfg    *config.Config
	auth   Authenticator
	client *http.Client
	logger logging.Logger
}

// NewClient returns a Client for cfg's server.
func NewClient(cfg *config.Config, auth Authenticator, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Client{
		cfg:    cfg,
		auth:   auth,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// request builds an authenticated request with the given body.
func (c *Client) request(ctx context.Context, method, url, body string) (*http.Request, error) {
	headers, err := c.auth.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = headers
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// drainBody reads a bounded amount of an error response for diagnostics.
func drainBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(b)
}

func httpError(op string, resp *http.Response) error {
	return fmt.Errorf("%s: http %d: %s", op, resp.StatusCode, strings.TrimSpace(drainBody(resp.Body)))
}
