// Package cmd implements the command-line interface for talkbridge.
//
// This package provides the following commands:
//   - login: Sign in to a Nextcloud server via the OAuth2 authorization-code flow
//   - logout: Sign out and remove stored tokens
//   - status: Show server reachability and authentication state
//   - attach: Attach a Talk meeting to an appointment stored as a JSON file
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
