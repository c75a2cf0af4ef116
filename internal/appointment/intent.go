package appointment

import (
	"strings"
	"time"

	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
)

// Validation messages, one per rule.
const (
	msgSubjectRequired = "meeting subject is required"
	msgStartRequired   = "meeting start time is required"
	msgEndRequired     = "meeting end time is required"
	msgEndAfterStart   = "meeting end time must be after start time"
)

// ValidationError carries every violated rule of an appointment, not just
// the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid appointment: " + strings.Join(e.Violations, "; ")
}

// MeetingIntent is the validated snapshot of the appointment, immutable once
// captured for a single provisioning run.
type MeetingIntent struct {
	Subject   string
	Start     time.Time
	End       time.Time
	Attendees []attendee.Attendee
}

// Validate checks the snapshot against all rules and returns the captured
// intent. All violations are collected into one ValidationError.
func Validate(s *Snapshot) (*MeetingIntent, error) {
	var violations []string

	if strings.TrimSpace(s.Subject) == "" {
		violations = append(violations, msgSubjectRequired)
	}
	if s.Start.IsZero() {
		violations = append(violations, msgStartRequired)
	}
	if s.End.IsZero() {
		violations = append(violations, msgEndRequired)
	}
	if !s.Start.IsZero() && !s.End.IsZero() && !s.Start.Before(s.End) {
		violations = append(violations, msgEndAfterStart)
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &MeetingIntent{
		Subject:   s.Subject,
		Start:     s.Start,
		End:       s.End,
		Attendees: s.Attendees(),
	}, nil
}
