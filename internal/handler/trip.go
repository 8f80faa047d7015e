package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// tripRequest is the wire shape for publishing or editing a trip.
type tripRequest struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
	Seats       int       `json:"seats"`
}

// tripResponse wraps a trip mutation result with the advisory notification
// summary. Notification outcomes never affect the mutation's own status.
type tripResponse struct {
	Trip              domain.Trip            `json:"trip"`
	CancelledRequests int                    `json:"cancelled_requests,omitempty"`
	Notifications     domain.DispatchSummary `json:"notifications"`
}

// CreateTrip handles POST /trips: the publish operation. The trip is
// committed first; route matching and notification dispatch run afterwards
// against the committed row, and their outcome is advisory only.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	trip := domain.Trip{
		DriverID:       actor(r),
		Origin:         body.Origin,
		Destination:    body.Destination,
		DepartureAt:    body.DepartureAt,
		SeatsAvailable: body.Seats,
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tripResponse{
		Trip:          created,
		Notifications: s.notifyMatches(r, created),
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// SearchTrips handles GET /trips with optional origin, destination, and date
// query parameters, all filtered through the same predicate the match engine
// uses. Only future trips with seats left are returned.
func (s *Server) SearchTrips(w http.ResponseWriter, r *http.Request) {
	criteria := domain.RouteCriteria{
		Origin:      r.URL.Query().Get("origin"),
		Destination: r.URL.Query().Get("destination"),
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			writeRequestError(w, "invalid date, want YYYY-MM-DD")
			return
		}
		criteria.PreferredDate = &d
	}

	page := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	trips, total, err := s.matcher.Search(r.Context(), criteria, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": trips,
		"pagination": map[string]int{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
		},
	})
}

// UpdateTrip handles PUT /trips/{id}: the edit operation. Active requests are
// cancelled by the service cascade; the edited trip is then re-matched
// against saved routes the same way a fresh publish is.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	var body tripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	trip := domain.Trip{
		ID:             id,
		Origin:         body.Origin,
		Destination:    body.Destination,
		DepartureAt:    body.DepartureAt,
		SeatsAvailable: body.Seats,
	}

	updated, cancelled, err := s.trips.Update(r.Context(), trip, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tripResponse{
		Trip:              updated,
		CancelledRequests: cancelled,
		Notifications:     s.notifyMatches(r, updated),
	})
}

// DeleteTrip handles DELETE /trips/{id}. Active requests become
// cancelled_by_driver; the response reports how many.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	cancelled, err := s.trips.Delete(r.Context(), id, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cancelled_requests": cancelled})
}

// notifyMatches runs the match engine and dispatcher for a committed trip.
// Failures here are logged and reported as an empty summary — by contract
// they never fail the mutation that triggered them.
func (s *Server) notifyMatches(r *http.Request, trip domain.Trip) domain.DispatchSummary {
	matches, err := s.matcher.MatchTrip(r.Context(), trip)
	if err != nil {
		s.log.ErrorContext(r.Context(), "route matching failed", "trip_id", trip.ID, "error", err)
		return domain.DispatchSummary{}
	}
	if len(matches) == 0 {
		return domain.DispatchSummary{}
	}
	return s.dispatcher.Dispatch(r.Context(), trip, matches)
}

// queryInt parses an optional integer query parameter, nil when absent or bad.
func queryInt(r *http.Request, key string) *int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
