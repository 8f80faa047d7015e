package handler

import (
	"encoding/json"
	"net/http"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// RequestSeat handles POST /trips/{id}/requests. The acting user becomes the
// requesting passenger; the request starts pending with no seat check.
func (s *Server) RequestSeat(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	req, err := s.bookings.RequestSeat(r.Context(), tripID, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// decisionRequest is the wire shape for the driver's verdict.
type decisionRequest struct {
	Decision domain.Decision `json:"decision"`
}

// DecideRequest handles POST /requests/{id}/decision. Confirm is the atomic
// seat check-and-decrement; on a full trip it answers 409 and the request
// stays pending.
func (s *Server) DecideRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid request id")
		return
	}

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	req, err := s.bookings.Decide(r.Context(), requestID, actor(r), body.Decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// CancelRequest handles POST /requests/{id}/cancel: a passenger withdrawing
// their own request before departure.
func (s *Server) CancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid request id")
		return
	}

	req, err := s.bookings.CancelOwn(r.Context(), requestID, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListMyRequests handles GET /requests: the acting passenger's full history.
func (s *Server) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.bookings.ListByPassenger(r.Context(), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": reqs})
}

// ListTripRequests handles GET /trips/{id}/requests: the owning driver's view
// of all requests for one trip.
func (s *Server) ListTripRequests(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	reqs, err := s.bookings.ListByTrip(r.Context(), tripID, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": reqs})
}
