package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// Dispatcher fans out one notification attempt per matched saved route.
// Attempts run in parallel, each under its own timeout; one failing attempt
// never aborts or delays its siblings, and no outcome ever propagates as a
// failure of the trip mutation that triggered the dispatch.
type Dispatcher struct {
	gen     TextGenerator
	mailer  Mailer
	timeout time.Duration
	log     *slog.Logger
}

// NewDispatcher constructs a Dispatcher. timeout bounds each individual
// attempt (generation plus delivery); zero or negative falls back to 5s.
func NewDispatcher(gen TextGenerator, mailer Mailer, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{gen: gen, mailer: mailer, timeout: timeout, log: log}
}

// Dispatch notifies every matched saved route about the published trip and
// returns the aggregate summary. The trip is already committed when this is
// called; results are advisory only.
func (d *Dispatcher) Dispatch(ctx context.Context, trip domain.Trip, routes []domain.SavedRoute) domain.DispatchSummary {
	results := make([]domain.DispatchResult, len(routes))

	// The publish is committed; a client disconnect on the triggering
	// request must not abort in-flight deliveries.
	base := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, route := range routes {
		wg.Add(1)
		go func(i int, route domain.SavedRoute) {
			defer wg.Done()
			results[i] = d.attempt(base, trip, route)
		}(i, route)
	}
	wg.Wait()

	summary := domain.Summarize(results)
	d.log.InfoContext(ctx, "dispatch complete",
		"trip_id", trip.ID,
		"matched", summary.Matched,
		"notified", summary.Notified,
	)
	return summary
}

// attempt runs the full pipeline for one saved route: fact sheet → content
// generation → subject cleaning → delivery. Every failure is recovered into
// a structured result record.
func (d *Dispatcher) attempt(ctx context.Context, trip domain.Trip, route domain.SavedRoute) domain.DispatchResult {
	dispatchAttempts.Inc()
	result := domain.DispatchResult{SavedRouteID: route.ID, Email: route.PassengerEmail}

	if route.PassengerEmail == "" {
		// No notification target; excluded with a logged skip.
		d.log.WarnContext(ctx, "saved route has no email, skipping",
			"saved_route_id", route.ID, "trip_id", trip.ID)
		dispatchSkipped.Inc()
		result.Outcome = domain.OutcomeSkippedNoTarget
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	fs := factSheet(trip, route)

	content, err := d.gen.Generate(ctx, fs)
	if err != nil {
		d.log.ErrorContext(ctx, "text generation failed",
			"saved_route_id", route.ID, "trip_id", trip.ID,
			"error", fmt.Errorf("%w: %w", domain.ErrExternal, err))
		dispatchFailed.Inc()
		result.Outcome = domain.OutcomeFailed
		result.ErrClass = "textgen"
		return result
	}

	if !content.Found || content.Subject == "" || content.Body == "" {
		// Match found, no content, not sent.
		d.log.InfoContext(ctx, "no content generated, not sending",
			"saved_route_id", route.ID, "trip_id", trip.ID)
		dispatchSkipped.Inc()
		result.Outcome = domain.OutcomeSkippedNoContent
		return result
	}

	subject := CleanSubject(content.Subject)
	if subject == "" {
		subject = FallbackSubject(fs)
	}

	msg := Message{
		To:       route.PassengerEmail,
		Subject:  subject,
		HTMLBody: "<p>" + html.EscapeString(content.Body) + "</p>",
		TextBody: content.Body,
	}

	// Transient provider hiccups get a couple of quick retries before the
	// attempt is declared failed.
	backoff := retry.WithMaxRetries(2, retry.NewConstant(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := d.mailer.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.log.ErrorContext(ctx, "mail delivery failed",
			"saved_route_id", route.ID, "trip_id", trip.ID,
			"error", fmt.Errorf("%w: %w", domain.ErrExternal, err))
		dispatchFailed.Inc()
		result.Outcome = domain.OutcomeFailed
		result.ErrClass = "mail"
		return result
	}

	dispatchDelivered.Inc()
	result.Outcome = domain.OutcomeDelivered
	return result
}

// factSheet assembles the typed input for the text-generation collaborator.
func factSheet(trip domain.Trip, route domain.SavedRoute) domain.FactSheet {
	return domain.FactSheet{
		PassengerEmail:    route.PassengerEmail,
		WantedOrigin:      route.Origin,
		WantedDestination: route.Destination,
		WantedDate:        route.PreferredDate,
		TripFound:         true,
		TripOrigin:        trip.Origin,
		TripDestination:   trip.Destination,
		TripDeparture:     trip.DepartureAt,
		SeatsAvailable:    trip.SeatsAvailable,
	}
}
