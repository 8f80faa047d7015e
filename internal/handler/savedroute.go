package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// savedRouteRequest is the wire shape for registering a standing interest.
// PreferredDate is an optional "YYYY-MM-DD" string; absent means any date.
type savedRouteRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Email         string `json:"email"`
	PreferredDate string `json:"preferred_date,omitempty"`
}

// CreateSavedRoute handles POST /saved-routes.
func (s *Server) CreateSavedRoute(w http.ResponseWriter, r *http.Request) {
	var body savedRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	route := domain.SavedRoute{
		PassengerID:    actor(r),
		PassengerEmail: body.Email,
		Origin:         body.Origin,
		Destination:    body.Destination,
	}
	if body.PreferredDate != "" {
		d, err := time.ParseInLocation("2006-01-02", body.PreferredDate, time.UTC)
		if err != nil {
			writeRequestError(w, "invalid preferred_date, want YYYY-MM-DD")
			return
		}
		route.PreferredDate = &d
	}

	created, err := s.savedRoutes.Create(r.Context(), route)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListSavedRoutes handles GET /saved-routes for the acting passenger.
func (s *Server) ListSavedRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.savedRoutes.ListByPassenger(r.Context(), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": routes})
}

// DeleteSavedRoute handles DELETE /saved-routes/{id}.
func (s *Server) DeleteSavedRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, "invalid saved route id")
		return
	}

	if err := s.savedRoutes.Delete(r.Context(), id, actor(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
