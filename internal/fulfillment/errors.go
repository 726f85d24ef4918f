package fulfillment

import "errors"

var (
	// ErrDoctorNotFound is reported when a candidate name resolves to no catalog entry.
	ErrDoctorNotFound = errors.New("fulfillment: doctor not found")
	// ErrNoBookingLocation is reported when a resolved doctor lists no hospital.
	ErrNoBookingLocation = errors.New("fulfillment: doctor has no booking location")
)
