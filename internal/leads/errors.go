package leads

import "errors"

var (
	// ErrMissingFields is returned when name, email or message is empty
	ErrMissingFields = errors.New("leads: missing required fields")

	// ErrInvalidEmail is returned when the email does not look like local@domain.tld
	ErrInvalidEmail = errors.New("leads: invalid email address")

	// ErrStore wraps every failure reported by the lead store
	ErrStore = errors.New("leads: store failure")
)
