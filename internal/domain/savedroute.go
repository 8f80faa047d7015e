package domain

import (
	"time"

	"github.com/google/uuid"
)

// SavedRoute is a passenger's standing interest in an origin/destination
// pair, used to trigger a notification when a matching trip is published.
// PreferredDate nil means "notify for any date".
//
// Saved routes are created and deleted by the passenger; the booking core
// only ever reads them.
type SavedRoute struct {
	ID             uuid.UUID  `json:"id"`
	PassengerID    uuid.UUID  `json:"passenger_id"`
	PassengerEmail string     `json:"passenger_email"`
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	PreferredDate  *time.Time `json:"preferred_date,omitempty"` // calendar date, midnight UTC
	CreatedAt      time.Time  `json:"created_at"`
}

// Criteria returns the route's matching criteria for use with the shared
// trip-matching predicate.
func (r SavedRoute) Criteria() RouteCriteria {
	return RouteCriteria{
		Origin:        r.Origin,
		Destination:   r.Destination,
		PreferredDate: r.PreferredDate,
	}
}
