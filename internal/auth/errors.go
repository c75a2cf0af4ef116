package auth

import "errors"

// Sentinel errors for the token lifecycle and the login flow. Callers match
// with errors.Is; wrapped variants carry the underlying cause.
var (
	// ErrNoRefreshToken indicates a refresh was requested without a stored
	// refresh token. No network call is made.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrRefreshFailed indicates the server rejected the refresh grant. All
	// stored tokens were purged; the user must log in again.
	ErrRefreshFailed = errors.New("token refresh rejected by server")

	// ErrAuthenticationRequired indicates no usable token exists and the
	// single refresh attempt failed.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrLoginCancelled indicates the user closed the login dialog.
	ErrLoginCancelled = errors.New("login cancelled by user")

	// ErrPopupBlocked indicates the browser refused to open the login window.
	ErrPopupBlocked = errors.New("login window blocked by browser")

	// ErrLoginIncomplete indicates the login window closed (or the attempt
	// timed out) without a token appearing in storage.
	ErrLoginIncomplete = errors.New("login window closed before sign-in completed")

	// ErrExchangeFailed indicates the authorization-code exchange was
	// rejected by the server.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrStateMismatch indicates the state parameter on the redirect
	// callback did not match the in-flight login attempt.
	ErrStateMismatch = errors.New("state parameter mismatch")

	// ErrTransportUnavailable indicates a login transport could not open at
	// all. The flow controller falls back to the next transport; this error
	// is never surfaced to the caller directly.
	ErrTransportUnavailable = errors.New("login transport unavailable")

	// ErrNoLoginInFlight indicates a redirect callback arrived without a
	// matching login attempt.
	ErrNoLoginInFlight = errors.New("no login attempt in flight")
)
