// Package appointment models the appointment under composition in the host
// calendar application: the Host collaborator interface, snapshot validation
// into a MeetingIntent, and the body rewriting that swaps competing meeting
// blocks for the Talk one.
package appointment
