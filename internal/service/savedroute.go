package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/repo"
)

// SavedRouteService implements passenger self-service for saved routes.
// The match engine reads the same rows through its own repo handle.
type SavedRouteService struct {
	routes repo.SavedRouteRepo
}

// NewSavedRouteService constructs a SavedRouteService backed by the provided repo.
func NewSavedRouteService(routes repo.SavedRouteRepo) *SavedRouteService {
	return &SavedRouteService{routes: routes}
}

// Create validates and persists a new saved route for the passenger.
// Origin, destination, and a contact email are required; without an email the
// route could never be notified.
func (s *SavedRouteService) Create(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error) {
	if strings.TrimSpace(route.Origin) == "" {
		return domain.SavedRoute{}, fmt.Errorf("%w: origin is required", domain.ErrValidation)
	}
	if strings.TrimSpace(route.Destination) == "" {
		return domain.SavedRoute{}, fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	email := strings.TrimSpace(route.PassengerEmail)
	if email == "" || !strings.Contains(email, "@") {
		return domain.SavedRoute{}, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	route.PassengerEmail = email

	result, err := s.routes.Create(ctx, route)
	if err != nil {
		return domain.SavedRoute{}, fmt.Errorf("service.SavedRouteService.Create: %w", err)
	}
	return result, nil
}

// ListByPassenger returns the passenger's saved routes.
// Always returns a non-nil slice so callers can safely range over it.
func (s *SavedRouteService) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error) {
	routes, err := s.routes.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("service.SavedRouteService.ListByPassenger: %w", err)
	}
	if routes == nil {
		return []domain.SavedRoute{}, nil
	}
	return routes, nil
}

// Delete removes a saved route owned by the passenger.
// Returns domain.ErrNotFound if the route does not exist or belongs to
// someone else — the two cases are indistinguishable on purpose.
func (s *SavedRouteService) Delete(ctx context.Context, id, passengerID uuid.UUID) error {
	if err := s.routes.Delete(ctx, id, passengerID); err != nil {
		return fmt.Errorf("service.SavedRouteService.Delete: %w", err)
	}
	return nil
}
