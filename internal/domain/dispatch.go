package domain

import (
	"time"

	"github.com/google/uuid"
)

// FactSheet is the typed input handed to the text-generation collaborator
// for one matched saved route. It is a tagged variant: TripFound marks
// whether the trip-side fields are populated.
type FactSheet struct {
	PassengerEmail string
	// The passenger's standing interest, verbatim from the saved route.
	WantedOrigin      string
	WantedDestination string
	WantedDate        *time.Time

	// TripFound tags the variant. When false the trip-side fields are zero
	// and the generator is expected to report found=false.
	TripFound bool

	TripOrigin      string
	TripDestination string
	TripDeparture   time.Time
	DriverName      string
	SeatsAvailable  int
}

// DispatchOutcome classifies the result of a single notification attempt.
type DispatchOutcome string

const (
	// OutcomeDelivered: content generated and the mail collaborator accepted it.
	OutcomeDelivered DispatchOutcome = "delivered"
	// OutcomeSkippedNoTarget: the saved route carries no passenger email.
	OutcomeSkippedNoTarget DispatchOutcome = "skipped_no_target"
	// OutcomeSkippedNoContent: the generator found no content to send.
	OutcomeSkippedNoContent DispatchOutcome = "skipped_no_content"
	// OutcomeFailed: a collaborator errored; the attempt was recovered locally.
	OutcomeFailed DispatchOutcome = "failed"
)

// DispatchResult is the structured per-attempt record produced by the
// notification dispatcher, one per matched saved route.
type DispatchResult struct {
	SavedRouteID uuid.UUID       `json:"saved_route_id"`
	Email        string          `json:"email,omitempty"`
	Outcome      DispatchOutcome `json:"outcome"`
	ErrClass     string          `json:"err_class,omitempty"` // e.g. "textgen", "mail"
}

// DispatchSummary aggregates the per-attempt results of one publish event.
// Matched may exceed Notified without the publish being a failure.
type DispatchSummary struct {
	Matched  int              `json:"matched"`
	Notified int              `json:"notified"`
	Results  []DispatchResult `json:"results,omitempty"`
}

// Summarize builds a DispatchSummary from per-attempt results.
func Summarize(results []DispatchResult) DispatchSummary {
	s := DispatchSummary{Matched: len(results), Results: results}
	for _, r := range results {
		if r.Outcome == OutcomeDelivered {
			s.Notified++
		}
	}
	return s
}
