package provision

import (
	"context"
	"sync"

	"github.com/FredrikJonassonItsb/talkbridge/internal/appointment"
	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
)

// Session holds the mutable editing state for one appointment: the attendee
// list as last loaded and the per-attendee security settings. Created when
// the appointment is loaded, discarded when the triggering action completes
// or the panel closes; settings never outlive the session.
type Session struct {
	mu        sync.Mutex
	attendees []attendee.Attendee
	settings  map[string]attendee.SecuritySettings
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{settings: make(map[string]attendee.SecuritySettings)}
}

// LoadAttendees re-reads the attendee list from the host. New attendees get
// default settings; settings of removed attendees are dropped.
func (s *Session) LoadAttendees(ctx context.Context, host appointment.Host) ([]attendee.Attendee, error) {
	snapshot, err := host.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	attendees := snapshot.Attendees()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]attendee.SecuritySettings, len(attendees))
	for _, a := range attendees {
		if existing, ok := s.settings[a.Email]; ok {
			next[a.Email] = existing
		} else {
			next[a.Email] = attendee.DefaultSettings()
		}
	}
	s.settings = next
	s.attendees = attendees

	return attendees, nil
}

// Attendees returns a copy of the attendee list as last loaded.
func (s *Session) Attendees() []attendee.Attendee {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]attendee.Attendee, len(s.attendees))
	copy(out, s.attendees)
	return out
}

// SetSettings stores the settings for one attendee, normalized so disabled
// fields cannot carry stale values.
func (s *Session) SetSettings(email string, v attendee.SecuritySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[email] = v.Normalize()
}

// SettingsFor returns the settings for one attendee, defaulted when absent.
func (s *Session) SettingsFor(email string) attendee.SecuritySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.settings[email]; ok {
		return v
	}
	return attendee.DefaultSettings()
}

// Settings returns a copy of all per-attendee settings.
func (s *Session) Settings() map[string]attendee.SecuritySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]attendee.SecuritySettings, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}
