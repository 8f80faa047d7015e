// Package domain contains the core data types for the seat-inventory and
// booking subsystem. This package has no dependencies beyond the uuid type
// and is imported by every other internal package (repo, service, notify,
// handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a driver-published offer of seats between an origin and a
// destination at a fixed departure time. The trip is the top-level aggregate;
// booking requests claim seats from it.
//
// SeatsAvailable is the live inventory counter. It never goes below zero:
// the repo enforces this with an atomic conditional decrement and the schema
// backs it with a CHECK constraint.
type Trip struct {
	ID             uuid.UUID `json:"id"`
	DriverID       uuid.UUID `json:"driver_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureAt    time.Time `json:"departure_at"` // stored and compared in UTC
	SeatsAvailable int       `json:"seats_available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Departed reports whether the trip's departure time has passed.
// Passengers may only request or cancel seats before departure.
func (t Trip) Departed(now time.Time) bool {
	return !t.DepartureAt.After(now)
}
