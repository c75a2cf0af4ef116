package appointment

import (
	"context"
	"time"

	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
)

// Snapshot is a read of the appointment being composed in the host calendar
// application.
type Snapshot struct {
	Subject  string              `json:"subject"`
	Start    time.Time           `json:"start"`
	End      time.Time           `json:"end"`
	Location string              `json:"location"`
	Body     string              `json:"body"`
	Required []attendee.Attendee `json:"requiredAttendees"`
	Optional []attendee.Attendee `json:"optionalAttendees"`
}

// Attendees returns required and optional attendees in order, with their
// type set.
func (s *Snapshot) Attendees() []attendee.Attendee {
	out := make([]attendee.Attendee, 0, len(s.Required)+len(s.Optional))
	for _, a := range s.Required {
		if a.Type == "" {
			a.Type = "required"
		}
		out = append(out, a)
	}
	for _, a := range s.Optional {
		if a.Type == "" {
			a.Type = "optional"
		}
		out = append(out, a)
	}
	return out
}

// Host is the host calendar application: reads and writes of the appointment
// under composition, plus transient notification banners keyed by a
// caller-chosen id.
type Host interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	SetBody(ctx context.Context, body string) error
	SetLocation(ctx context.Context, location string) error

	ShowProgress(ctx context.Context, id, message string) error
	ShowNotification(ctx context.Context, id, message string) error
	ShowError(ctx context.Context, id, message string) error
	ClearNotification(ctx context.Context, id string) error
}
