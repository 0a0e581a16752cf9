package model

import "github.com/google/uuid"

// Confirmation is the outcome of a trip confirmation request.
type Confirmation struct {
	TripID      uuid.UUID `json:"trip_id"`
	RedirectURL string    `json:"redirect_url"`

	// AlreadyConfirmed is set when this request did not perform the transition,
	// either because the trip was confirmed before or a concurrent request won.
	AlreadyConfirmed bool           `json:"already_confirmed"`
	Report           DispatchReport `json:"report"`
}

// DispatchReport summarizes the invitation fan-out of a confirmation.
type DispatchReport struct {
	Attempted int      `json:"attempted"`
	Sent      int      `json:"sent"`
	Failed    []string `json:"failed,omitempty"`
}
