// Package resources provides MCP resources for exposing user and server data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the authenticated user's profile and the active provisioning configuration.
package resources
