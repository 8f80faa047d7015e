package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/repo"
)

// BookingService implements the passenger-request lifecycle and the
// seat-reservation invariant. It holds both repos because deciding a request
// requires verifying trip ownership, and requesting a seat requires the trip
// to exist and not have departed.
type BookingService struct {
	trips    repo.TripRepo
	bookings repo.BookingRepo
	now      func() time.Time
}

// NewBookingService constructs a BookingService backed by the provided repos.
func NewBookingService(trips repo.TripRepo, bookings repo.BookingRepo) *BookingService {
	return &BookingService{trips: trips, bookings: bookings, now: time.Now}
}

// RequestSeat creates a pending request for one seat of the trip.
// No seat check happens at this stage — availability is only enforced at
// confirm time, so a trip can accumulate more pending requests than seats.
//
// Returns domain.ErrConflict if the passenger already has an active request
// for this trip, domain.ErrValidation if the trip has departed or belongs to
// the requesting passenger.
func (s *BookingService) RequestSeat(ctx context.Context, tripID, passengerID uuid.UUID) (domain.BookingRequest, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.RequestSeat: %w", err)
	}
	if trip.DriverID == passengerID {
		return domain.BookingRequest{}, fmt.Errorf("%w: cannot request a seat on your own trip", domain.ErrValidation)
	}
	if trip.Departed(s.now()) {
		return domain.BookingRequest{}, fmt.Errorf("%w: trip has already departed", domain.ErrValidation)
	}

	result, err := s.bookings.Create(ctx, domain.BookingRequest{TripID: tripID, PassengerID: passengerID})
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.RequestSeat: %w", err)
	}
	return result, nil
}

// Decide applies the driver's confirm/reject verdict to a request.
//
// Confirm performs the atomic check-and-decrement: it succeeds only while the
// trip has seats left, and two concurrent confirms on a one-seat trip can
// never both succeed. On a full trip the request stays pending and
// domain.ErrConflict is returned. Rejecting a confirmed request releases its
// seat.
//
// Returns domain.ErrUnauthorized if driverID does not own the trip,
// domain.ErrConflict if the request is already in a terminal state.
func (s *BookingService) Decide(ctx context.Context, requestID, driverID uuid.UUID, decision domain.Decision) (domain.BookingRequest, error) {
	if !decision.Valid() {
		return domain.BookingRequest{}, fmt.Errorf("%w: decision must be %q or %q", domain.ErrValidation, domain.DecisionConfirm, domain.DecisionReject)
	}

	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.Decide: %w", err)
	}

	trip, err := s.trips.GetByID(ctx, req.TripID)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.Decide: %w", err)
	}
	if trip.DriverID != driverID {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.Decide: not the trip's driver: %w", domain.ErrUnauthorized)
	}

	to := domain.StatusRejected
	if decision == domain.DecisionConfirm {
		to = domain.StatusConfirmed
	}

	result, err := s.bookings.Transition(ctx, requestID, to)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.Decide: %w", err)
	}
	return result, nil
}

// CancelOwn lets a passenger withdraw their own request while the trip has
// not yet departed. A confirmed request releases its seat.
//
// Returns domain.ErrUnauthorized if passengerID is not the requester,
// domain.ErrValidation if the trip has departed, domain.ErrConflict if the
// request is already in a terminal state.
func (s *BookingService) CancelOwn(ctx context.Context, requestID, passengerID uuid.UUID) (domain.BookingRequest, error) {
	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.CancelOwn: %w", err)
	}
	if req.PassengerID != passengerID {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.CancelOwn: not the request's passenger: %w", domain.ErrUnauthorized)
	}

	trip, err := s.trips.GetByID(ctx, req.TripID)
	switch {
	case err == nil:
		if trip.Departed(s.now()) {
			return domain.BookingRequest{}, fmt.Errorf("%w: trip has already departed", domain.ErrValidation)
		}
	case errors.Is(err, domain.ErrNotFound):
		// Trip already deleted: the cascade has put the request in a
		// terminal state, so Transition below reports the conflict.
	default:
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.CancelOwn: %w", err)
	}

	result, err := s.bookings.Transition(ctx, requestID, domain.StatusCancelledByPassenger)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("service.BookingService.CancelOwn: %w", err)
	}
	return result, nil
}

// ListByPassenger returns the passenger's full request history, including
// soft-cancelled requests for trips that no longer exist.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookingService) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error) {
	reqs, err := s.bookings.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByPassenger: %w", err)
	}
	if reqs == nil {
		return []domain.BookingRequest{}, nil
	}
	return reqs, nil
}

// ListByTrip returns all requests for a trip, for the owning driver's review.
// Returns domain.ErrUnauthorized if driverID does not own the trip.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookingService) ListByTrip(ctx context.Context, tripID, driverID uuid.UUID) ([]domain.BookingRequest, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByTrip: %w", err)
	}
	if trip.DriverID != driverID {
		return nil, fmt.Errorf("service.BookingService.ListByTrip: not the trip's driver: %w", domain.ErrUnauthorized)
	}

	reqs, err := s.bookings.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByTrip: %w", err)
	}
	if reqs == nil {
		return []domain.BookingRequest{}, nil
	}
	return reqs, nil
}
