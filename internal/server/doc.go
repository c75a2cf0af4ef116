// Package server provides the MCP server context, provisioning session
// management, and the HTTP transport for the talkbridge application.
//
// # Key Components
//
// ServerContext wires the shared dependencies every tool needs: the
// Nextcloud configuration, the token store, the token lifecycle manager,
// the authentication flow controller and the Nextcloud API client. Tools
// receive the context at registration time instead of building their own
// clients.
//
// ProvisionSessionManager hands out provisioning sessions keyed by opaque
// ids. A client loads the attendees of an appointment into a session, edits
// per-attendee security settings over several tool calls, and provisions
// the meeting against the same session. Idle sessions expire after an hour.
//
// HTTPServer serves the MCP protocol over the streamable HTTP transport
// with health check endpoints for Kubernetes probes and optional request
// metrics. MetricsServer exposes Prometheus metrics on a dedicated port so
// operational data never shares a listener with application traffic.
package server
