// Package provision orchestrates attaching a Talk room to an appointment as
// a four-step saga: validate, create room, write calendar event, mutate
// appointment. Partial completion is reported, never rolled back.
package provision
