package provision

import "errors"

var (
	// ErrRoomCreationFailed indicates the Talk room could not be created;
	// nothing was provisioned.
	ErrRoomCreationFailed = errors.New("talk room creation failed")

	// ErrCalendarWriteFailed indicates the calendar event could not be
	// written. The room already exists and is left in place; orphaned rooms
	// are acceptable collateral.
	ErrCalendarWriteFailed = errors.New("calendar event write failed")

	// ErrAppointmentUpdateFailed indicates the appointment body or location
	// could not be updated. Room and calendar event are left in place.
	ErrAppointmentUpdateFailed = errors.New("appointment update failed")

	// ErrProvisioningInProgress rejects a second run while one is in flight
	// for the same session, preventing double submission.
	ErrProvisioningInProgress = errors.New("provisioning already in progress")
)
