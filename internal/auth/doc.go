// Package auth implements the OAuth2 token lifecycle and the interactive
// login flow against a Nextcloud server.
//
// The Manager owns stored tokens: usability checks, the refresh grant with
// its purge-on-rejection policy, and authenticated request headers with a
// single-refresh-then-fail retry bound.
//
// The FlowController drives the authorization-code flow over one of two
// transports: the host-native modal dialog, or an external browser window as
// fallback when the dialog cannot open. The external path infers success
// from a token appearing in storage when the window closes; the loopback
// RedirectServer is the redirect target that makes that heuristic hold.
package auth
