package model

import (
	"github.com/google/uuid"
	"time"
)

type Trip struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	IsConfirmed bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTrip is the input of the trip creation workflow.
type NewTrip struct {
	Destination    string    `json:"destination"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	OwnerName      string    `json:"owner_name"`
	OwnerEmail     string    `json:"owner_email"`
	EmailsToInvite []string  `json:"emails_to_invite"`
}

type TripDetails struct {
	Trip         *Trip          `json:"trip"`
	Participants []*Participant `json:"participants"`
}
