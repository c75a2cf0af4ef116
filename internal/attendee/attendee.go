package attendee

// AuthLevel is the authentication strength required of an attendee before
// they may join the meeting.
type AuthLevel string

const (
	AuthNone AuthLevel = "none"
	AuthSMS  AuthLevel = "sms"
	AuthLoA3 AuthLevel = "loa3"
)

// Notification selects the channels the attendee is notified on.
type Notification string

const (
	NotifyEmail    Notification = "email"
	NotifyEmailSMS Notification = "email+sms"
)

// Attendee is one participant of the appointment as read from the host
// calendar application.
type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// SecuritySettings carries the per-attendee security directives configured by
// the organizer. The zero-equivalent defaults are returned by
// DefaultSettings.
type SecuritySettings struct {
	AuthLevel    AuthLevel    `json:"authLevel"`
	SecureEmail  bool         `json:"secureEmail"`
	PersonalID   string       `json:"personalId"`
	SMSNumber    string       `json:"smsNumber"`
	Notification Notification `json:"notification"`
}

// DefaultSettings returns the settings assigned to every attendee when the
// attendee list is loaded: no extra authentication, email-only notification.
func DefaultSettings() SecuritySettings {
	return SecuritySettings{
		AuthLevel:    AuthNone,
		SecureEmail:  false,
		PersonalID:   "",
		SMSNumber:    "",
		Notification: NotifyEmail,
	}
}

// IsDefault reports whether s equals the defaults, meaning no security
// directives need to be emitted for the attendee.
func (s SecuritySettings) IsDefault() bool {
	return s == DefaultSettings()
}

// PersonalIDEditable reports whether the personal-ID field applies. The field
// is meaningful only for LoA3 authentication or secure-email delivery, where
// the attendee identity must be pinned to a national personal number.
// This is derived state: recompute whenever AuthLevel or SecureEmail changes.
func (s SecuritySettings) PersonalIDEditable() bool {
	return s.AuthLevel == AuthLoA3 || s.SecureEmail
}

// SMSNumberEditable reports whether the SMS-number field applies: only for
// SMS authentication or a notification channel that includes SMS.
func (s SecuritySettings) SMSNumberEditable() bool {
	return s.AuthLevel == AuthSMS || s.Notification == NotifyEmailSMS
}

// Normalize clears fields whose driving inputs no longer allow them, so a
// stale personal ID or SMS number from an earlier selection never leaks into
// the provisioning request.
func (s SecuritySettings) Normalize() SecuritySettings {
	if !s.PersonalIDEditable() {
		s.PersonalID = ""
	}
	if !s.SMSNumberEditable() {
		s.SMSNumber = ""
	}
	if s.Notification == "" {
		s.Notification = NotifyEmail
	}
	if s.AuthLevel == "" {
		s.AuthLevel = AuthNone
	}
	return s
}

// Enriched is an attendee merged with its security settings, the record
// consumed by calendar-event serialization.
type Enriched struct {
	Attendee
	Settings SecuritySettings
}

// Merge combines a base attendee with its settings. Attendees without
// explicit settings get the defaults.
func Merge(a Attendee, settings map[string]SecuritySettings) Enriched {
	s, ok := settings[a.Email]
	if !ok {
		s = DefaultSettings()
	}
	return Enriched{Attendee: a, Settings: s.Normalize()}
}

// MergeAll merges every attendee in order.
func MergeAll(attendees []Attendee, settings map[string]SecuritySettings) []Enriched {
	out := make([]Enriched, 0, len(attendees))
	for _, a := range attendees {
		out = append(out, Merge(a, settings))
	}
	return out
}
