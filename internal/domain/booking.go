package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking request.
// The three cancelled states record who (or what) caused the cancellation;
// passengers see them as distinct outcomes in their history.
type BookingStatus string

const (
	StatusPending              BookingStatus = "pending"
	StatusConfirmed            BookingStatus = "confirmed"
	StatusRejected             BookingStatus = "rejected"
	StatusCancelledByPassenger BookingStatus = "cancelled_by_passenger"
	StatusCancelledByDriver    BookingStatus = "cancelled_by_driver"
	StatusCancelledTripEdited  BookingStatus = "cancelled_trip_modified"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected,
		StatusCancelledByPassenger, StatusCancelledByDriver, StatusCancelledTripEdited:
		return true
	}
	return false
}

// Active reports whether the request still holds a claim on the trip:
// pending (waiting for the driver) or confirmed (seat reserved).
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether the status permits no further transitions.
// Everything except pending and confirmed is terminal.
func (s BookingStatus) Terminal() bool {
	return s.Valid() && !s.Active()
}

// CanTransition reports whether the state machine permits moving from s to
// next. Seat effects are not modeled here; they are applied atomically by the
// repo alongside the status flip.
//
//	pending   → confirmed | rejected | cancelled_*
//	confirmed → rejected | cancelled_*
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	if !s.Active() || !next.Valid() {
		return false
	}
	switch next {
	case StatusConfirmed:
		return s == StatusPending
	case StatusRejected, StatusCancelledByPassenger, StatusCancelledByDriver, StatusCancelledTripEdited:
		return true
	}
	return false
}

// Decision is the driver's verdict on a booking request.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionReject  Decision = "reject"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionConfirm || d == DecisionReject
}

// BookingRequest is a passenger's claim on exactly one seat of a trip.
// Its lifecycle is independent of the trip's: a trip can be edited or deleted
// while its requests survive (soft-cancelled) as passenger history.
type BookingRequest struct {
	ID          uuid.UUID     `json:"id"`
	TripID      uuid.UUID     `json:"trip_id"`
	PassengerID uuid.UUID     `json:"passenger_id"`
	Status      BookingStatus `json:"status"`
	RequestedAt time.Time     `json:"requested_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
