// Package ics serializes a calendar event with per-attendee security
// directives into a single iCalendar VEVENT for CalDAV upload.
package ics
