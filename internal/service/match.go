package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/repo"
)

// MatchService is the route match engine. The same normalized-equality
// predicate (domain.RouteCriteria.Matches) serves both directions: saved
// routes matched against a newly published trip, and a passenger's ad-hoc
// search matched against all open trips.
type MatchService struct {
	trips  repo.TripRepo
	routes repo.SavedRouteRepo
	log    *slog.Logger
	now    func() time.Time
}

// NewMatchService constructs a MatchService backed by the provided repos.
func NewMatchService(trips repo.TripRepo, routes repo.SavedRouteRepo, log *slog.Logger) *MatchService {
	return &MatchService{trips: trips, routes: routes, log: log, now: time.Now}
}

// MatchTrip finds every saved route whose criteria the trip satisfies.
// Routes without a passenger email are excluded with a logged skip — there is
// no notification target for them. Matches are per saved-route id, so the
// result carries no duplicates and no significant order.
func (s *MatchService) MatchTrip(ctx context.Context, trip domain.Trip) ([]domain.SavedRoute, error) {
	routes, err := s.routes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.MatchService.MatchTrip: %w", err)
	}

	matches := []domain.SavedRoute{}
	for _, route := range routes {
		if !route.Criteria().Matches(trip) {
			continue
		}
		if route.PassengerEmail == "" {
			s.log.WarnContext(ctx, "matched route has no passenger email, skipping",
				"saved_route_id", route.ID, "trip_id", trip.ID)
			continue
		}
		matches = append(matches, route)
	}
	return matches, nil
}

// Search is the passenger-facing read path: future trips with seats left,
// filtered by the same predicate with all-optional criteria, paginated.
// Always returns a non-nil slice so callers can safely range over it.
func (s *MatchService) Search(ctx context.Context, criteria domain.RouteCriteria, page domain.PaginationParams) ([]domain.Trip, int, error) {
	open, err := s.trips.ListOpen(ctx, s.now())
	if err != nil {
		return nil, 0, fmt.Errorf("service.MatchService.Search: %w", err)
	}

	matched := []domain.Trip{}
	for _, trip := range open {
		if criteria.Matches(trip) {
			matched = append(matched, trip)
		}
	}

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}
