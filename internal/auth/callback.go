package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

const callbackPath = "/callback"

// RedirectServer is a loopback HTTP server acting as the OAuth redirect
// target when logging in through an external browser. It hands the state and
// code from the redirect to the flow controller, which verifies the nonce
// and performs the exchange before the response is written, so the token is
// in storage by the time the browser window closes.
type RedirectServer struct {
	flow   *FlowController
	logger logging.Logger

	server   *http.Server
	listener net.Listener
	result   chan error
	done     atomic.Bool
}

// NewRedirectServer returns an unstarted redirect server.
func NewRedirectServer(flow *FlowController, logger logging.Logger) *RedirectServer {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &RedirectServer{
		flow:   flow,
		logger: logger,
		result: make(chan error, 1),
	}
}

// Start listens on a random loopback port and begins serving the callback.
// The redirect URI becomes available through URL after Start returns.
func (s *RedirectServer) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, s.handleCallback)
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("callback server failed", logging.KeyError, err.Error())
		}
	}()

	s.logger.Debug("callback server listening", "addr", ln.Addr().String())
	return nil
}

// URL returns the redirect URI to register with the authorization request.
func (s *RedirectServer) URL() string {
	return "http://" + s.listener.Addr().String() + callbackPath
}

// Completed reports whether a callback has been fully handled, successfully
// or not. The external-window transport polls this as its window-closed
// signal.
func (s *RedirectServer) Completed() bool {
	return s.done.Load()
}

// Wait blocks until a callback has been handled or ctx expires.
func (s *RedirectServer) Wait(ctx context.Context) error {
	select {
	case err := <-s.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the server.
func (s *RedirectServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *RedirectServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var err error
	switch {
	case q.Get("error") != "":
		err = fmt.Errorf("authorization denied: %s", q.Get("error"))
	case q.Get("code") == "":
		err = fmt.Errorf("callback missing authorization code")
	default:
		err = s.flow.HandleCallback(r.Context(), q.Get("state"), q.Get("code"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "<html><body><h1>Sign-in failed</h1><p>You can close this window and try again.</p></body></html>")
	} else {
		fmt.Fprint(w, "<html><body><h1>Signed in</h1><p>You can close this window now.</p></body></html>")
	}

	s.done.Store(true)
	select {
	case s.result <- err:
	default:
	}
}
