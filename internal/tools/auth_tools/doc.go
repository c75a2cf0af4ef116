// Package auth_tools provides MCP (Model Context Protocol) tools for managing
// the Nextcloud sign-in lifecycle.
//
// Tools:
//   - nextcloud_login: Run the OAuth2 authorization-code flow through the
//     system browser and persist the resulting tokens and user profile
//   - nextcloud_logout: Remove the stored tokens and profile
//   - nextcloud_status: Report server reachability and authentication state
//
// The login tool starts a loopback redirect listener, opens the authorization
// URL in the system browser, and blocks until the redirect completes or the
// attempt times out. Tokens are stored through the server context's token
// store and picked up automatically by every other tool.
package auth_tools
