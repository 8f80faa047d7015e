package domain

import (
	"strings"
	"time"
)

// NormalizePlace canonicalizes an origin or destination for comparison:
// surrounding whitespace is trimmed and the string is case-folded.
// "  Bogotá " and "bogotá" normalize to the same value.
func NormalizePlace(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RouteCriteria is the single matching predicate used in both directions:
// a saved route matched against a newly published trip, and a passenger
// search matched against all open trips.
//
// Empty Origin or Destination acts as a wildcard (the search path allows
// every field to be optional; saved routes always carry both).
// PreferredDate nil matches any departure date.
type RouteCriteria struct {
	Origin        string
	Destination   string
	PreferredDate *time.Time
}

// Matches reports whether the trip satisfies the criteria.
// Origin and destination compare by normalized exact equality. The date
// condition compares calendar dates in UTC, never the viewer's local zone.
func (c RouteCriteria) Matches(t Trip) bool {
	if c.Origin != "" && NormalizePlace(c.Origin) != NormalizePlace(t.Origin) {
		return false
	}
	if c.Destination != "" && NormalizePlace(c.Destination) != NormalizePlace(t.Destination) {
		return false
	}
	if c.PreferredDate != nil && !sameUTCDate(*c.PreferredDate, t.DepartureAt) {
		return false
	}
	return true
}

// sameUTCDate reports whether a and b fall on the same calendar date when
// both are expressed in UTC.
func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
