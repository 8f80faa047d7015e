// Package notify implements the route-match notification pipeline: fact-sheet
// assembly, delegation to the text-generation and mail-delivery collaborators,
// and best-effort per-match dispatch with structured result records.
package notify

import (
	"context"
	"fmt"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// Content is the text-generation collaborator's answer for one fact sheet.
// Found false (or empty subject/body) means there is nothing worth sending;
// the dispatcher records the match without attempting delivery.
type Content struct {
	Found   bool
	Subject string
	Body    string
}

// TextGenerator turns a fact sheet into mail content. Implementations wrap
// the external wording engine; errors mean the collaborator is unavailable
// and are recovered per dispatch attempt.
type TextGenerator interface {
	Generate(ctx context.Context, fs domain.FactSheet) (Content, error)
}

// StaticGenerator produces deterministic template content without calling any
// external service. It is the default generator for development and tests.
type StaticGenerator struct{}

// Generate renders a fixed-wording subject and body from the fact sheet.
func (StaticGenerator) Generate(_ context.Context, fs domain.FactSheet) (Content, error) {
	if !fs.TripFound {
		return Content{Found: false}, nil
	}
	subject := fmt.Sprintf("Seat available: %s to %s", fs.TripOrigin, fs.TripDestination)
	body := fmt.Sprintf(
		"A trip from %s to %s departing %s has %d seat(s) available. Request yours before they run out.",
		fs.TripOrigin, fs.TripDestination,
		fs.TripDeparture.UTC().Format("Mon, 2 Jan 2006 15:04 MST"),
		fs.SeatsAvailable,
	)
	return Content{Found: true, Subject: subject, Body: body}, nil
}

// NullGenerator always reports no content. It is the fallback wired in when
// no wording engine is configured, keeping the dispatcher free of nil checks.
type NullGenerator struct{}

// Generate reports found=false for every fact sheet.
func (NullGenerator) Generate(context.Context, domain.FactSheet) (Content, error) {
	return Content{Found: false}, nil
}
