package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// OAuth client registration on the Nextcloud server. The client id must match
// the id registered under Settings > Security > OAuth 2.0 clients.
const (
	DefaultClientID = "outlook-nextcloud-addin"
	DefaultScope    = "openid profile email"
)

// Server-relative endpoint paths. All paths are appended to the configured
// server URL.
const (
	AuthorizePath   = "/apps/oauth2/authorize"
	TokenPath       = "/apps/oauth2/api/v1/token"
	TalkRoomPath    = "/ocs/v2.php/apps/spreed/api/v4/room"
	UserProfilePath = "/ocs/v2.php/cloud/user"
	CalendarBase    = "/remote.php/dav/calendars"
	StatusPath      = "/status.php"
	CallPath        = "/call"
)

// Defaults for provisioning.
const (
	// DefaultRoomType is a public Talk room, joinable via link by guests.
	DefaultRoomType = 3
	// DefaultCalendar is the calendar every Nextcloud account starts with.
	DefaultCalendar = "personal"
)

// Timeouts.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultLoginTimeout   = 5 * time.Minute
	// LoginPollInterval is how often the external-window transport checks
	// whether the login window was closed.
	LoginPollInterval = 500 * time.Millisecond
)

// Storage keys used with the persistent key/value store.
const (
	KeyAccessToken  = "nc_access_token"
	KeyRefreshToken = "nc_refresh_token"
	KeyTokenExpiry  = "nc_token_expiry"
	KeyServerURL    = "nc_server_url"
	KeyUserProfile  = "nc_user_profile"
)

// Config carries the runtime configuration of the client. Zero values are
// replaced by the package defaults in Normalize.
type Config struct {
	// ServerURL is the base URL of the Nextcloud server, without trailing slash.
	ServerURL string

	// ClientID identifies the OAuth client registration on the server.
	ClientID string

	// RedirectURI receives the authorization code after user consent.
	RedirectURI string

	// Scope requested during authorization.
	Scope string

	// Calendar is the calendar name events are written to.
	Calendar string

	// RoomType passed to the Talk room-creation endpoint.
	RoomType int

	// RequestTimeout bounds individual HTTP requests.
	RequestTimeout time.Duration

	// LoginTimeout bounds a whole interactive login attempt.
	LoginTimeout time.Duration
}

// New returns a Config populated with defaults for the given server URL.
func New(serverURL string) *Config {
	cfg := &Config{ServerURL: serverURL}
	cfg.Normalize()
	return cfg
}

// FromEnv builds a Config from TALKBRIDGE_* environment variables, applying
// defaults for anything unset.
//
// Recognized variables:
//
//	TALKBRIDGE_SERVER        base server URL
//	TALKBRIDGE_CLIENT_ID     OAuth client id
//	TALKBRIDGE_REDIRECT_URI  OAuth redirect URI
//	TALKBRIDGE_CALENDAR      target calendar name
//	TALKBRIDGE_ROOM_TYPE     Talk room type (integer)
func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerURL:   os.Getenv("TALKBRIDGE_SERVER"),
		ClientID:    os.Getenv("TALKBRIDGE_CLIENT_ID"),
		RedirectURI: os.Getenv("TALKBRIDGE_REDIRECT_URI"),
		Calendar:    os.Getenv("TALKBRIDGE_CALENDAR"),
	}
	if v := os.Getenv("TALKBRIDGE_ROOM_TYPE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TALKBRIDGE_ROOM_TYPE %q: %w", v, err)
		}
		cfg.RoomType = n
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize trims the server URL and fills unset fields with defaults.
func (c *Config) Normalize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	if c.Calendar == "" {
		c.Calendar = DefaultCalendar
	}
	if c.RoomType == 0 {
		c.RoomType = DefaultRoomType
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.LoginTimeout == 0 {
		c.LoginTimeout = DefaultLoginTimeout
	}
}

// Validate reports whether the configuration is complete enough to talk to a
// server.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server URL %q must start with http:// or https://", c.ServerURL)
	}
	return nil
}

// AuthorizeURL returns the absolute authorization endpoint.
func (c *Config) AuthorizeURL() string { return c.ServerURL + AuthorizePath }

// TokenURL returns the absolute token endpoint.
func (c *Config) TokenURL() string { return c.ServerURL + TokenPath }

// TalkRoomURL returns the absolute Talk room-creation endpoint.
func (c *Config) TalkRoomURL() string { return c.ServerURL + TalkRoomPath }

// UserProfileURL returns the absolute profile endpoint.
func (c *Config) UserProfileURL() string { return c.ServerURL + UserProfilePath }

// StatusURL returns the absolute server-status endpoint.
func (c *Config) StatusURL() string { return c.ServerURL + StatusPath }

// CallURL returns the join URL for a Talk room token.
func (c *Config) CallURL(roomToken string) string {
	return c.ServerURL + CallPath + "/" + roomToken
}

// CalendarObjectURL returns the CalDAV path for an event UID under the given
// user and calendar.
func (c *Config) CalendarObjectURL(username, calendar, uid string) string {
	return fmt.Sprintf("%s%s/%s/%s/%s.ics", c.ServerURL, CalendarBase, username, calendar, uid)
}
