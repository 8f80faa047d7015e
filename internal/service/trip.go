// Package service contains the business logic for the booking backend.
// Services validate inputs, enforce authorization and the booking state
// machine, and orchestrate repo calls. No SQL lives here — services depend on
// repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/repo"
)

// TripService implements the trip registry: create/update/delete of trips and
// the cancellation cascades those mutations trigger on active requests.
type TripService struct {
	trips    repo.TripRepo
	bookings repo.BookingRepo
	maxSeats int
	now      func() time.Time
}

// NewTripService constructs a TripService. maxSeats caps the seat count a
// driver may offer on a single trip.
func NewTripService(trips repo.TripRepo, bookings repo.BookingRepo, maxSeats int) *TripService {
	return &TripService{trips: trips, bookings: bookings, maxSeats: maxSeats, now: time.Now}
}

// Create validates and persists a new trip. The caller is the driver; the
// match/notify pipeline runs after this returns, against the committed row.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := s.validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip.DepartureAt = trip.DepartureAt.UTC()

	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListByDriver returns all trips published by the given driver.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.trips.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByDriver: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Update applies the driver's edit to a trip. Every active request for the
// trip is transitioned to cancelled_trip_modified first, because the edit
// invalidates what those passengers agreed to. The new seat count is the
// driver's submitted value verbatim: with all requests cancelled there are no
// confirmed seats left to reconcile.
//
// Returns domain.ErrUnauthorized if actorID does not own the trip, and the
// number of requests cancelled by the cascade alongside the updated trip.
func (s *TripService) Update(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, int, error) {
	existing, err := s.trips.GetByID(ctx, trip.ID)
	if err != nil {
		return domain.Trip{}, 0, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if existing.DriverID != actorID {
		return domain.Trip{}, 0, fmt.Errorf("service.TripService.Update: not the trip's driver: %w", domain.ErrUnauthorized)
	}
	if err := s.validateTrip(trip); err != nil {
		return domain.Trip{}, 0, err
	}
	trip.DepartureAt = trip.DepartureAt.UTC()

	cancelled, err := s.bookings.CancelActiveByTrip(ctx, trip.ID, domain.StatusCancelledTripEdited)
	if err != nil {
		return domain.Trip{}, 0, fmt.Errorf("service.TripService.Update: cascade: %w", err)
	}

	result, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, 0, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, cancelled, nil
}

// Delete removes a trip on the driver's request. Active requests become
// cancelled_by_driver (soft, so passengers keep visible history), then the
// trip row itself is hard-deleted.
//
// Returns domain.ErrUnauthorized if actorID does not own the trip, and the
// number of requests cancelled by the cascade.
func (s *TripService) Delete(ctx context.Context, id, actorID uuid.UUID) (int, error) {
	existing, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if existing.DriverID != actorID {
		return 0, fmt.Errorf("service.TripService.Delete: not the trip's driver: %w", domain.ErrUnauthorized)
	}

	cancelled, err := s.bookings.CancelActiveByTrip(ctx, id, domain.StatusCancelledByDriver)
	if err != nil {
		return 0, fmt.Errorf("service.TripService.Delete: cascade: %w", err)
	}

	if err := s.trips.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return cancelled, nil
}

// validateTrip enforces business rules common to Create and Update.
//   - Origin and destination must be non-empty after trimming.
//   - Departure must be in the future.
//   - Seats must be between 1 and the configured maximum.
func (s *TripService) validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Origin) == "" {
		return fmt.Errorf("%w: origin is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if trip.Departed(s.now()) {
		return fmt.Errorf("%w: departure must be in the future", domain.ErrValidation)
	}
	if trip.SeatsAvailable < 1 {
		return fmt.Errorf("%w: at least one seat must be offered", domain.ErrValidation)
	}
	if trip.SeatsAvailable > s.maxSeats {
		return fmt.Errorf("%w: at most %d seats may be offered", domain.ErrValidation, s.maxSeats)
	}
	return nil
}
