package ics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
)

const prodID = "-//Nextcloud Talk Bridge//EN"

// Event is the data serialized into a single VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	// TalkURL is the room join URL, emitted as LOCATION and X-NC-TALK-URL.
	TalkURL   string
	Attendees []attendee.Enriched
}

// NewUID returns a globally unique event UID.
func NewUID() string {
	return uuid.NewString() + "@talkbridge"
}

// Encode serializes the event as an iCalendar document with CRLF line
// endings, ready for a CalDAV PUT.
//
// Attendee security directives are emitted as non-standard properties whose
// names embed the attendee email, e.g. X-NC-ATTENDEE-AUTH-alice@example.com.
// The consuming server expects exactly this shape, so no general-purpose
// iCalendar library can produce it: '@' and '.' are not valid in an RFC 5545
// property name.
func Encode(e Event) string {
	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("BEGIN:VEVENT")
	line("UID:" + e.UID)
	line("DTSTAMP:" + FormatDateTime(time.Now()))
	line("DTSTART:" + FormatDateTime(e.Start))
	line("DTEND:" + FormatDateTime(e.End))
	line("SUMMARY:" + EscapeText(e.Summary))

	if e.Description != "" {
		line("DESCRIPTION:" + EscapeText(e.Description))
	}

	if e.TalkURL != "" {
		line("LOCATION:" + EscapeText(e.TalkURL))
		line("X-NC-TALK-URL:" + e.TalkURL)
	}

	for _, a := range e.Attendees {
		cn := a.Name
		if cn == "" {
			cn = a.Email
		}
		line("ATTENDEE;CN=" + EscapeText(cn) + ";RSVP=TRUE:mailto:" + a.Email)

		s := a.Settings
		if s.AuthLevel != attendee.AuthNone {
			line("X-NC-ATTENDEE-AUTH-" + a.Email + ":" + string(s.AuthLevel))
		}
		if s.SecureEmail {
			line("X-NC-ATTENDEE-SECURE-EMAIL-" + a.Email + ":true")
		}
		if s.PersonalID != "" {
			line("X-NC-ATTENDEE-PERSONNUMMER-" + a.Email + ":" + s.PersonalID)
		}
		if s.SMSNumber != "" {
			line("X-NC-ATTENDEE-SMS-" + a.Email + ":" + s.SMSNumber)
		}
		if s.Notification != "" && s.Notification != attendee.NotifyEmail {
			line("X-NC-ATTENDEE-NOTIFICATION-" + a.Email + ":" + string(s.Notification))
		}
	}

	line("END:VEVENT")
	line("END:VCALENDAR")

	return b.String()
}

// FormatDateTime renders t in the iCalendar UTC form, YYYYMMDDTHHMMSSZ.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// EscapeText escapes a text value per RFC 5545 section 3.3.11:
// backslash, semicolon, comma, and newline.
func EscapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}
