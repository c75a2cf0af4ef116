// Package talk_tools provides MCP (Model Context Protocol) tools for
// Nextcloud Talk rooms and meeting provisioning.
//
// Room Management:
//   - talk_create_room: Create Talk rooms, one name or a batch of names
//
// Meeting Provisioning:
//   - meeting_load_attendees: Load an appointment's attendee list into an
//     editing session with default security settings
//   - meeting_set_security: Set per-attendee security settings (required
//     authentication level, secure email, personal number, SMS number,
//     notification channels) within a session
//   - meeting_provision: Run the provisioning pipeline for an appointment,
//     validate, create the Talk room, write the calendar event, update the
//     appointment body and location
//   - meeting_clear_session: Discard an editing session
//
// The appointment under composition is passed inline as a JSON snapshot with
// each call; the editing session carries only the per-attendee security
// settings between calls. Provisioning never rolls back completed steps: the
// result names the steps that succeeded so the caller can see exactly how far
// it got.
//
// Write tools (talk_create_room, meeting_provision) are not registered when
// the server runs in read-only mode.
package talk_tools
