package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/handler"
)

// Hand-written test doubles for the servicer interfaces. Each method is a
// function field — set only the ones your test needs.

type mockTripServicer struct {
	create       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByDriver func(ctx context.Context, driverID uuid.UUID) ([]domain.Trip, error)
	update       func(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, int, error)
	delete       func(ctx context.Context, id, actorID uuid.UUID) (int, error)
}

func (m *mockTripServicer) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.Trip, error) {
	return m.listByDriver(ctx, driverID)
}
func (m *mockTripServicer) Update(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, int, error) {
	return m.update(ctx, trip, actorID)
}
func (m *mockTripServicer) Delete(ctx context.Context, id, actorID uuid.UUID) (int, error) {
	return m.delete(ctx, id, actorID)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockBookingServicer struct {
	requestSeat     func(ctx context.Context, tripID, passengerID uuid.UUID) (domain.BookingRequest, error)
	decide          func(ctx context.Context, requestID, driverID uuid.UUID, decision domain.Decision) (domain.BookingRequest, error)
	cancelOwn       func(ctx context.Context, requestID, passengerID uuid.UUID) (domain.BookingRequest, error)
	listByPassenger func(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error)
	listByTrip      func(ctx context.Context, tripID, driverID uuid.UUID) ([]domain.BookingRequest, error)
}

func (m *mockBookingServicer) RequestSeat(ctx context.Context, tripID, passengerID uuid.UUID) (domain.BookingRequest, error) {
	return m.requestSeat(ctx, tripID, passengerID)
}
func (m *mockBookingServicer) Decide(ctx context.Context, requestID, driverID uuid.UUID, decision domain.Decision) (domain.BookingRequest, error) {
	return m.decide(ctx, requestID, driverID, decision)
}
func (m *mockBookingServicer) CancelOwn(ctx context.Context, requestID, passengerID uuid.UUID) (domain.BookingRequest, error) {
	return m.cancelOwn(ctx, requestID, passengerID)
}
func (m *mockBookingServicer) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error) {
	return m.listByPassenger(ctx, passengerID)
}
func (m *mockBookingServicer) ListByTrip(ctx context.Context, tripID, driverID uuid.UUID) ([]domain.BookingRequest, error) {
	return m.listByTrip(ctx, tripID, driverID)
}

var _ handler.BookingServicer = (*mockBookingServicer)(nil)

type mockMatchServicer struct {
	matchTrip func(ctx context.Context, trip domain.Trip) ([]domain.SavedRoute, error)
	search    func(ctx context.Context, criteria domain.RouteCriteria, page domain.PaginationParams) ([]domain.Trip, int, error)
}

func (m *mockMatchServicer) MatchTrip(ctx context.Context, trip domain.Trip) ([]domain.SavedRoute, error) {
	return m.matchTrip(ctx, trip)
}
func (m *mockMatchServicer) Search(ctx context.Context, criteria domain.RouteCriteria, page domain.PaginationParams) ([]domain.Trip, int, error) {
	return m.search(ctx, criteria, page)
}

var _ handler.MatchServicer = (*mockMatchServicer)(nil)

type mockSavedRouteServicer struct {
	create          func(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error)
	listByPassenger func(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error)
	delete          func(ctx context.Context, id, passengerID uuid.UUID) error
}

func (m *mockSavedRouteServicer) Create(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error) {
	return m.create(ctx, route)
}
func (m *mockSavedRouteServicer) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error) {
	return m.listByPassenger(ctx, passengerID)
}
func (m *mockSavedRouteServicer) Delete(ctx context.Context, id, passengerID uuid.UUID) error {
	return m.delete(ctx, id, passengerID)
}

var _ handler.SavedRouteServicer = (*mockSavedRouteServicer)(nil)

type mockDispatcher struct {
	dispatch func(ctx context.Context, trip domain.Trip, routes []domain.SavedRoute) domain.DispatchSummary
}

func (m *mockDispatcher) Dispatch(ctx context.Context, trip domain.Trip, routes []domain.SavedRoute) domain.DispatchSummary {
	return m.dispatch(ctx, trip, routes)
}

var _ handler.Dispatcher = (*mockDispatcher)(nil)

// ---- helpers ---------------------------------------------------------------

// serverMocks bundles one mock per dependency, pre-wired with benign defaults
// so tests only override what they exercise.
type serverMocks struct {
	trips       *mockTripServicer
	bookings    *mockBookingServicer
	matcher     *mockMatchServicer
	savedRoutes *mockSavedRouteServicer
	dispatcher  *mockDispatcher
}

func newServerMocks() *serverMocks {
	return &serverMocks{
		trips:    &mockTripServicer{},
		bookings: &mockBookingServicer{},
		matcher: &mockMatchServicer{
			matchTrip: func(_ context.Context, _ domain.Trip) ([]domain.SavedRoute, error) {
				return nil, nil
			},
		},
		savedRoutes: &mockSavedRouteServicer{},
		dispatcher: &mockDispatcher{
			dispatch: func(_ context.Context, _ domain.Trip, routes []domain.SavedRoute) domain.DispatchSummary {
				return domain.Summarize(nil)
			},
		},
	}
}

func newTestServer(m *serverMocks) http.Handler {
	log := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return handler.NewServer(m.trips, m.bookings, m.matcher, m.savedRoutes, m.dispatcher, log).Routes()
}

// doRequest runs an HTTP request through the full router, including the
// actor-identity middleware. actorID zero means no X-User-ID header.
func doRequest(t *testing.T, h http.Handler, method, target string, actorID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if actorID != uuid.Nil {
		req.Header.Set("X-User-ID", actorID.String())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into out.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
