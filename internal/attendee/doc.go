// Package attendee models per-attendee security settings and their
// field-dependency rules. It is pure data and validation; no I/O.
package attendee
