// Package handler implements the HTTP surface of the booking API.
// Handlers are methods on Server, split into resource-specific files
// (trip.go, booking.go, savedroute.go) that all share the same struct so they
// can access its dependencies. Handlers decode and validate the wire shapes,
// delegate to the service interfaces, and map domain sentinels to HTTP codes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smontoya/cupo/backend/internal/domain"
	"github.com/smontoya/cupo/backend/internal/middleware"
)

// TripServicer defines the trip-registry operations the handlers depend on.
// Defining interfaces here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, int, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) (int, error)
}

// BookingServicer defines the booking-lifecycle operations the handlers depend on.
type BookingServicer interface {
	RequestSeat(ctx context.Context, tripID, passengerID uuid.UUID) (domain.BookingRequest, error)
	Decide(ctx context.Context, requestID, driverID uuid.UUID, decision domain.Decision) (domain.BookingRequest, error)
	CancelOwn(ctx context.Context, requestID, passengerID uuid.UUID) (domain.BookingRequest, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error)
	ListByTrip(ctx context.Context, tripID, driverID uuid.UUID) ([]domain.BookingRequest, error)
}

// MatchServicer defines the route-match-engine operations the handlers depend on.
type MatchServicer interface {
	MatchTrip(ctx context.Context, trip domain.Trip) ([]domain.SavedRoute, error)
	Search(ctx context.Context, criteria domain.RouteCriteria, page domain.PaginationParams) ([]domain.Trip, int, error)
}

// SavedRouteServicer defines the saved-route operations the handlers depend on.
type SavedRouteServicer interface {
	Create(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error)
	Delete(ctx context.Context, id, passengerID uuid.UUID) error
}

// Dispatcher fans out notification attempts for a published trip's matches.
// It never returns an error: dispatch outcomes are advisory by contract.
type Dispatcher interface {
	Dispatch(ctx context.Context, trip domain.Trip, routes []domain.SavedRoute) domain.DispatchSummary
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips       TripServicer
	bookings    BookingServicer
	matcher     MatchServicer
	savedRoutes SavedRouteServicer
	dispatcher  Dispatcher
	log         *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, bookings BookingServicer, matcher MatchServicer, savedRoutes SavedRouteServicer, dispatcher Dispatcher, log *slog.Logger) *Server {
	return &Server{
		trips:       trips,
		bookings:    bookings,
		matcher:     matcher,
		savedRoutes: savedRoutes,
		dispatcher:  dispatcher,
		log:         log,
	}
}

// Routes builds the API router. Health and metrics are unauthenticated; trip
// reads are public; every mutation and passenger-scoped read requires the
// actor identity established by the auth gateway.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/trips", s.SearchTrips)
	r.Get("/trips/{id}", s.GetTrip)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor())

		r.Post("/trips", s.CreateTrip)
		r.Put("/trips/{id}", s.UpdateTrip)
		r.Delete("/trips/{id}", s.DeleteTrip)

		r.Post("/trips/{id}/requests", s.RequestSeat)
		r.Get("/trips/{id}/requests", s.ListTripRequests)
		r.Post("/requests/{id}/decision", s.DecideRequest)
		r.Post("/requests/{id}/cancel", s.CancelRequest)
		r.Get("/requests", s.ListMyRequests)

		r.Post("/saved-routes", s.CreateSavedRoute)
		r.Get("/saved-routes", s.ListSavedRoutes)
		r.Delete("/saved-routes/{id}", s.DeleteSavedRoute)
	})

	return r
}

// actor returns the authenticated user's ID from the request context.
// RequireActor guarantees presence on every route that reaches here.
func actor(r *http.Request) uuid.UUID {
	id, _ := middleware.ActorID(r.Context())
	return id
}

// pathUUID parses the {id} URL parameter.
func pathUUID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
