package model

import "github.com/google/uuid"

type Participant struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Name        *string   `json:"name"`
	Email       string    `json:"email"`
	IsOwner     bool      `json:"is_owner"`
	IsConfirmed bool      `json:"is_confirmed"`
}
