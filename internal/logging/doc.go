// Package logging provides structured logging utilities for the talkbridge
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (attendee email anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "talk.create_room")
//	logger.Info("room created",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("attendee enriched",
//	    logging.UserHash(email))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - Attendee emails are hashed to prevent PII leakage while allowing correlation
//   - OAuth tokens are never logged directly
//   - Server URLs are reduced to their host, since callback URLs can carry
//     authorization codes
package logging
