package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/repo"
	"github.com/smontoya/cupo/backend/internal/service"
)

// mockSavedRouteRepo is a hand-written test double for repo.SavedRouteRepo.
type mockSavedRouteRepo struct {
	create          func(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error)
	listAll         func(ctx context.Context) ([]domain.SavedRoute, error)
	listByPassenger func(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error)
	delete          func(ctx context.Context, id, passengerID uuid.UUID) error
}

func (m *mockSavedRouteRepo) Create(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error) {
	return m.create(ctx, route)
}
func (m *mockSavedRouteRepo) ListAll(ctx context.Context) ([]domain.SavedRoute, error) {
	return m.listAll(ctx)
}
func (m *mockSavedRouteRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error) {
	return m.listByPassenger(ctx, passengerID)
}
func (m *mockSavedRouteRepo) Delete(ctx context.Context, id, passengerID uuid.UUID) error {
	return m.delete(ctx, id, passengerID)
}

// compile-time check: mockSavedRouteRepo must satisfy repo.SavedRouteRepo.
var _ repo.SavedRouteRepo = (*mockSavedRouteRepo)(nil)

func savedRoute(origin, destination, email string) domain.SavedRoute {
	return domain.SavedRoute{
		ID:             uuid.New(),
		PassengerID:    uuid.New(),
		PassengerEmail: email,
		Origin:         origin,
		Destination:    destination,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

// ---- MatchTrip tests -------------------------------------------------------

func TestMatchService_MatchTrip_FiltersByCriteria(t *testing.T) {
	trip := validFutureTrip(uuid.New()) // Bogotá -> Medellín

	routes := &mockSavedRouteRepo{
		listAll: func(_ context.Context) ([]domain.SavedRoute, error) {
			return []domain.SavedRoute{
				savedRoute("bogotá", "medellín", "ana@example.com"),
				savedRoute("cali", "medellín", "luis@example.com"),
				savedRoute("BOGOTÁ", "MEDELLÍN", "rosa@example.com"),
			}, nil
		},
	}
	svc := service.NewMatchService(&mockTripRepo{}, routes, discardLogger())

	got, err := svc.MatchTrip(context.Background(), trip)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ana@example.com", got[0].PassengerEmail)
	assert.Equal(t, "rosa@example.com", got[1].PassengerEmail)
}

func TestMatchService_MatchTrip_SkipsRoutesWithoutEmail(t *testing.T) {
	trip := validFutureTrip(uuid.New())
	noEmail := savedRoute("bogotá", "medellín", "")

	routes := &mockSavedRouteRepo{
		listAll: func(_ context.Context) ([]domain.SavedRoute, error) {
			return []domain.SavedRoute{noEmail, savedRoute("bogotá", "medellín", "ana@example.com")}, nil
		},
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := service.NewMatchService(&mockTripRepo{}, routes, log)

	got, err := svc.MatchTrip(context.Background(), trip)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ana@example.com", got[0].PassengerEmail)

	// The skip must be visible in the logs, tagged with the route id.
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, noEmail.ID.String(), entry["saved_route_id"])
}

func TestMatchService_MatchTrip_NoRoutes(t *testing.T) {
	routes := &mockSavedRouteRepo{
		listAll: func(_ context.Context) ([]domain.SavedRoute, error) { return nil, nil },
	}
	svc := service.NewMatchService(&mockTripRepo{}, routes, discardLogger())

	got, err := svc.MatchTrip(context.Background(), validFutureTrip(uuid.New()))

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- Search tests ----------------------------------------------------------

func searchTrips() []domain.Trip {
	base := time.Now().Add(24 * time.Hour)
	trips := make([]domain.Trip, 0, 5)
	for i, dest := range []string{"Medellín", "Medellín", "Cali", "Medellín", "Pereira"} {
		trips = append(trips, domain.Trip{
			ID:             uuid.New(),
			DriverID:       uuid.New(),
			Origin:         "Bogotá",
			Destination:    dest,
			DepartureAt:    base.Add(time.Duration(i) * time.Hour),
			SeatsAvailable: 2,
		})
	}
	return trips
}

func TestMatchService_Search_FiltersAndCounts(t *testing.T) {
	trips := &mockTripRepo{
		listOpen: func(_ context.Context, _ time.Time) ([]domain.Trip, error) { return searchTrips(), nil },
	}
	svc := service.NewMatchService(trips, &mockSavedRouteRepo{}, discardLogger())

	got, total, err := svc.Search(context.Background(),
		domain.RouteCriteria{Destination: "medellín"}, domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 3)
}

func TestMatchService_Search_Paginates(t *testing.T) {
	trips := &mockTripRepo{
		listOpen: func(_ context.Context, _ time.Time) ([]domain.Trip, error) { return searchTrips(), nil },
	}
	svc := service.NewMatchService(trips, &mockSavedRouteRepo{}, discardLogger())

	page1, total, err := svc.Search(context.Background(), domain.RouteCriteria{}, domain.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page1, 2)

	page3, total, err := svc.Search(context.Background(), domain.RouteCriteria{}, domain.PaginationParams{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page3, 1)

	// Page past the end returns an empty slice, not an error.
	page4, total, err := svc.Search(context.Background(), domain.RouteCriteria{}, domain.PaginationParams{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.NotNil(t, page4)
	assert.Empty(t, page4)
}

func TestMatchService_Search_EmptyCriteriaMatchesAllOpen(t *testing.T) {
	trips := &mockTripRepo{
		listOpen: func(_ context.Context, _ time.Time) ([]domain.Trip, error) { return searchTrips(), nil },
	}
	svc := service.NewMatchService(trips, &mockSavedRouteRepo{}, discardLogger())

	got, total, err := svc.Search(context.Background(), domain.RouteCriteria{}, domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, got, 5)
}
