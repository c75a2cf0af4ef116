// Package nextcloud is the HTTP client for the Nextcloud server: Talk room
// creation over the OCS API, calendar-event writes over CalDAV, the user
// profile, and the public status endpoint.
package nextcloud
